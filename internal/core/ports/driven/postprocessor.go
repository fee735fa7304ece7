package driven

import (
	"context"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

// PostProcessor turns delivery text into postable chunks.
// PostProcessors are chained in a pipeline (e.g., formatting, then chunking).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes the source text and the chunks produced so far.
	// The first processor receives nil chunks and creates them from text.
	// Later processors receive and may rewrite or re-split the chunks.
	Process(ctx context.Context, text string, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the text through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, text string) ([]domain.Chunk, error)
}

// SectionSplitter separates a trailing sources section from primary content
// so it can be delivered as a distinct final unit.
type SectionSplitter interface {
	// SplitSources returns the trimmed primary content and sources section.
	// sources is "" when the text has no sources section.
	SplitSources(text string) (primary, sources string)

	// LabelSources turns a sources section into the text of its reply,
	// carrying label on the first line.
	LabelSources(sources, label string) string
}
