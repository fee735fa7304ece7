package driven

import (
	"context"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

// DeliveryTarget posts threaded messages to a chat destination.
// Rejections carrying a destination code are returned as *domain.DestinationError.
type DeliveryTarget interface {
	// PostRoot posts a top-level message and returns its thread identifier.
	PostRoot(ctx context.Context, text string) (threadID string, err error)

	// PostReply posts text as a reply under threadID.
	PostReply(ctx context.Context, threadID, text string) error

	// Destination names where posts go, for logging and records.
	Destination() string
}

// DeliveryRecordStore persists proof of completed delivery per artifact.
type DeliveryRecordStore interface {
	// Get returns the record for the artifact at path.
	// Returns nil and no error if the artifact was never fully delivered.
	Get(ctx context.Context, artifactPath string) (*domain.DeliveryRecord, error)

	// Save writes the record for the artifact at path.
	Save(ctx context.Context, artifactPath string, record domain.DeliveryRecord) error
}

// ArtifactStore persists generated briefs.
type ArtifactStore interface {
	// Save stores the brief and returns the primary path.
	Save(ctx context.Context, brief *domain.Brief) (string, error)

	// Load returns the content and path of the artifact with id.
	// Returns domain.ErrNotFound if no such artifact exists.
	Load(ctx context.Context, id string) (content string, path string, err error)

	// Recent returns up to n artifacts, newest first by modification time.
	Recent(ctx context.Context, n int) ([]domain.Artifact, error)
}

// ContextSource supplies team background for the generation prompts.
type ContextSource interface {
	// TeamContext returns a text block describing the team, or "" when none exists.
	TeamContext(ctx context.Context) (string, error)
}
