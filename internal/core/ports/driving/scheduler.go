package driving

import (
	"context"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

// Scheduler runs the weekly brief on a fixed interval.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error
}

// ScheduleInspector answers status queries about scheduled tasks.
type ScheduleInspector interface {
	// Tasks returns every known task with its last and next run.
	Tasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// History returns recent results for a task, most recent first.
	History(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// Reset forgets a task's schedule so the next daemon start runs it fresh.
	Reset(ctx context.Context, taskID string) error
}
