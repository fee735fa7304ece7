// Package mrkdwn converts generated markdown into Slack mrkdwn.
package mrkdwn

import (
	"context"
	"strings"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
	"github.com/custodia-labs/pulse-brief/internal/postprocessors/chunker"
)

// Rule replaces markdown horizontal rules.
const Rule = "━━━━━━━━━━━━━━━━━━━━"

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Processor formats text for Slack.
type Processor struct{}

// New creates a mrkdwn processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "mrkdwn"
}

// Process formats each chunk, or text as a single chunk when there are none yet.
func (p *Processor) Process(ctx context.Context, text string, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if chunks == nil {
		formatted := Format(text)
		if strings.TrimSpace(formatted) == "" {
			return []domain.Chunk{}, nil
		}
		return []domain.Chunk{{Position: 0, Content: formatted}}, nil
	}

	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = domain.Chunk{Position: c.Position, Content: Format(c.Content)}
	}
	return out, nil
}

// Format rewrites markdown line by line:
//
//	# x   -> *x*
//	## x  -> blank line, *x*
//	### x -> blank line, _x_
//	- x   -> • x
//	---   -> blank line, heavy rule, blank line
//	**x** -> *x*
//
// Other lines pass through unchanged.
func Format(markdown string) string {
	lines := strings.Split(markdown, "\n")
	out := make([]string, 0, len(lines))

	for _, raw := range lines {
		line := chunker.Classify(raw)

		switch {
		case line.IsMarkdownHeader() && line.Level == 1:
			out = append(out, "*"+bold(line.Body)+"*")
		case line.IsMarkdownHeader() && line.Level == 2:
			out = append(out, "\n*"+bold(line.Body)+"*")
		case line.IsMarkdownHeader():
			out = append(out, "\n_"+bold(line.Body)+"_")
		case line.Kind == chunker.Bullet && line.Marker == "-":
			out = append(out, line.Indent+"• "+bold(line.Body))
		case line.Kind == chunker.Divider && line.Marker == "---":
			out = append(out, "\n"+Rule+"\n")
		case line.Kind == chunker.Plain && line.Body == "":
			out = append(out, "")
		default:
			out = append(out, bold(raw))
		}
	}

	return strings.Join(out, "\n")
}

// bold converts markdown strong markers to Slack bold.
func bold(s string) string {
	return strings.ReplaceAll(s, "**", "*")
}
