// Package chunker splits delivery text into size-bounded, section-aware chunks.
package chunker

import (
	"context"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
)

// DefaultMaxBytes is the default chunk ceiling, below Slack's 4000 character limit.
const DefaultMaxBytes = 3800

// Ensure Processor implements the interfaces.
var (
	_ driven.PostProcessor   = (*Processor)(nil)
	_ driven.SectionSplitter = (*Processor)(nil)
)

// Processor splits text into chunks no larger than its ceiling.
// It implements the PostProcessor interface.
type Processor struct {
	maxBytes int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxBytes sets the chunk ceiling in bytes.
func WithMaxBytes(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// MaxBytes returns the chunk ceiling.
func (p *Processor) MaxBytes() int {
	return p.maxBytes
}

// Process splits each incoming chunk, or text itself when there are none yet.
// Positions are renumbered across the result.
func (p *Processor) Process(ctx context.Context, text string, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if chunks == nil {
		return Split(text, p.maxBytes), nil
	}

	var out []domain.Chunk
	for _, c := range chunks {
		for _, piece := range Split(c.Content, p.maxBytes) {
			piece.Position = len(out)
			out = append(out, piece)
		}
	}
	return out, nil
}

// SplitSources separates the trailing sources section. See SplitSources.
func (p *Processor) SplitSources(text string) (primary, sources string) {
	return SplitSources(text)
}

// LabelSources prepares the sources section for its reply. See LabelSources.
func (p *Processor) LabelSources(sources, label string) string {
	return LabelSources(sources, label)
}
