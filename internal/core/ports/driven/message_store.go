package driven

import (
	"context"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

// MessageStore lists and fetches raw messages from a mail-like source.
// Listing errors are fatal to a run; fetch errors are recoverable per item.
type MessageStore interface {
	// List returns one page of message ids matching query.
	// cursor is empty for the first page. An empty next cursor ends pagination.
	List(ctx context.Context, query, cursor string) (ids []string, next string, err error)

	// Get fetches the full message for id.
	Get(ctx context.Context, id string) (*domain.RawMessage, error)
}

// Canonicaliser converts rich-text message bodies to markdown.
type Canonicaliser interface {
	// ToMarkdown converts an HTML document to markdown text.
	ToMarkdown(html string) (string, error)

	// PrimaryLink returns the first qualifying absolute link in text, or "".
	// Short links such as tracking pixels do not qualify.
	PrimaryLink(text string) string
}
