package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

func setupTestQueue(t *testing.T) (*Queue, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	q, err := NewQueue(client, "test-worker")
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}

	return q, func() {
		client.Close()
		mr.Close()
	}
}

func TestNewQueue_RequiresClient(t *testing.T) {
	if _, err := NewQueue(nil, "test-worker"); err == nil {
		t.Error("expected error for nil client")
	}
}

func TestQueue_EnqueueDequeue(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := domain.NewParseDocumentTask("user-1", "doc-1")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := q.DequeueWithTimeout(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected a task")
	}
	if got.ID != task.ID {
		t.Errorf("expected task %s, got %s", task.ID, got.ID)
	}
	if got.Status != domain.TaskStatusProcessing {
		t.Errorf("expected status processing, got %s", got.Status)
	}
	if got.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", got.Attempts)
	}
	if got.DocumentID() != "doc-1" {
		t.Errorf("expected document doc-1, got %s", got.DocumentID())
	}
}

func TestQueue_DequeueEmpty(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()

	got, err := q.DequeueWithTimeout(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected no task, got %s", got.ID)
	}
}

func TestQueue_Ack(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := domain.NewParseDocumentTask("user-1", "doc-1")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := q.DequeueWithTimeout(ctx, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := q.Ack(ctx, task.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := q.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != domain.TaskStatusCompleted {
		t.Errorf("expected status completed, got %s", stored.Status)
	}
}

func TestQueue_NackSchedulesRetry(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := domain.NewParseDocumentTask("user-1", "doc-1")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := q.DequeueWithTimeout(ctx, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := q.Nack(ctx, task.ID, "docling unreachable"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := q.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != domain.TaskStatusPending {
		t.Errorf("expected status pending, got %s", stored.Status)
	}
	if stored.Error != "docling unreachable" {
		t.Errorf("expected failure reason recorded, got %q", stored.Error)
	}
	if !stored.ScheduledFor.After(time.Now().Add(20 * time.Second)) {
		t.Errorf("expected retry delayed ~30s, scheduled for %v", stored.ScheduledFor)
	}

	// The retry is not due yet, so the queue looks empty
	got, err := q.DequeueWithTimeout(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected delayed retry to stay parked, got %s", got.ID)
	}
}

func TestQueue_NackExhaustedFails(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := domain.NewParseDocumentTask("user-1", "doc-1")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Burn through every attempt
	for i := 0; i < task.MaxAttempts; i++ {
		stored, err := q.GetTask(ctx, task.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stored.MarkProcessing()
		q.storeTask(ctx, stored, "")
		if err := q.Nack(ctx, task.ID, "model returned garbage"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	stored, err := q.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != domain.TaskStatusFailed {
		t.Errorf("expected status failed, got %s", stored.Status)
	}
}

func TestQueue_ScheduledTaskPromotedWhenDue(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	task := domain.NewParseDocumentTask("user-1", "doc-1")
	task.ScheduledFor = time.Now().Add(50 * time.Millisecond)
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Not due yet
	got, err := q.DequeueWithTimeout(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected task to be held back, got %s", got.ID)
	}

	time.Sleep(100 * time.Millisecond)

	got, err = q.DequeueWithTimeout(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected due task to be promoted")
	}
	if got.ID != task.ID {
		t.Errorf("expected task %s, got %s", task.ID, got.ID)
	}
}

func TestQueue_GetTask_Unknown(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()

	got, err := q.GetTask(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown task, got %+v", got)
	}
}

func TestQueue_Stats(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()
	ctx := context.Background()

	immediate := domain.NewParseDocumentTask("user-1", "doc-1")
	if err := q.Enqueue(ctx, immediate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	delayed := domain.NewExtractResultsTask("user-1", "doc-2")
	delayed.ScheduledFor = time.Now().Add(time.Hour)
	if err := q.Enqueue(ctx, delayed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := q.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.PendingCount != 2 {
		t.Errorf("expected 2 pending, got %d", stats.PendingCount)
	}
	if stats.ProcessingCount != 0 {
		t.Errorf("expected 0 processing, got %d", stats.ProcessingCount)
	}
}

func TestQueue_Ping(t *testing.T) {
	q, cleanup := setupTestQueue(t)
	defer cleanup()

	if err := q.Ping(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
