package driving

import (
	"context"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

// BriefRunner drives the ingestion to delivery pipeline.
type BriefRunner interface {
	// Run executes one full pipeline run for the current window.
	Run(ctx context.Context, opts domain.RunOptions) (*domain.RunReport, error)

	// Post delivers an already stored artifact by ID.
	// Delivery is skipped when the artifact was delivered before.
	Post(ctx context.Context, artifactID string) (*domain.DeliveryOutcome, error)
}
