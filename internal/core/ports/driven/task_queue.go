package driven

import (
	"context"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// TaskQueue handles background pipeline task queuing and processing.
type TaskQueue interface {
	// Enqueue adds a task to the queue. Tasks whose ScheduledFor lies in
	// the future are held back until due.
	Enqueue(ctx context.Context, task *domain.Task) error

	// DequeueWithTimeout retrieves the next available task, waiting up to
	// timeout seconds. Returns nil, nil when no task became available.
	DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error)

	// Ack acknowledges successful completion of a task.
	Ack(ctx context.Context, taskID string) error

	// Nack records a failed attempt. The task is re-enqueued after the
	// fixed retry delay while attempts remain, otherwise marked failed.
	Nack(ctx context.Context, taskID string, reason string) error

	// GetTask retrieves a task by ID for status checking. Returns nil, nil
	// when unknown.
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)

	// Stats returns queue statistics.
	Stats(ctx context.Context) (*QueueStats, error)

	// Ping checks if the queue backend is healthy.
	Ping(ctx context.Context) error

	// Close cleans up resources.
	Close() error
}

// QueueStats contains queue statistics
type QueueStats struct {
	// PendingCount is the number of tasks waiting to be processed
	PendingCount int64 `json:"pending_count"`

	// ProcessingCount is the number of tasks currently being processed
	ProcessingCount int64 `json:"processing_count"`
}
