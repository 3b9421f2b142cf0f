package driving

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// Scheduler manages background tasks like token refresh and document status polling.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// Tasks returns the known tasks and their state.
	Tasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// History returns recent results for a task, newest first.
	History(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// RunNow executes a task synchronously and records the result.
	RunNow(ctx context.Context, taskID string) (*domain.TaskResult, error)
}
