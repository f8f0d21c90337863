package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
	"github.com/atria-labs/vitals-core/internal/core/services"
	"github.com/atria-labs/vitals-core/internal/metrics"
)

// Pipeline runs the document processing stages.
type Pipeline interface {
	Parse(ctx context.Context, documentID string) error
	Extract(ctx context.Context, documentID string) (*services.ExtractResult, error)
}

// Worker processes tasks from the task queue.
// It runs the document pipeline stage each task names.
type Worker struct {
	taskQueue driven.TaskQueue
	pipeline  Pipeline
	logger    *slog.Logger

	// Configuration
	concurrency    int
	dequeueTimeout int // seconds

	// Internal state
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config holds configuration for the worker.
type Config struct {
	TaskQueue      driven.TaskQueue
	Pipeline       Pipeline
	Logger         *slog.Logger
	Concurrency    int // Number of concurrent task processors
	DequeueTimeout int // Seconds to wait for a task before checking again
}

// New creates a new task worker.
func New(cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	dequeueTimeout := cfg.DequeueTimeout
	if dequeueTimeout <= 0 {
		dequeueTimeout = 5
	}

	return &Worker{
		taskQueue:      cfg.TaskQueue,
		pipeline:       cfg.Pipeline,
		logger:         logger.With("component", "worker"),
		concurrency:    concurrency,
		dequeueTimeout: dequeueTimeout,
	}
}

// Start begins the worker loop.
// It runs until Stop is called or context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"concurrency", w.concurrency,
		"dequeue_timeout", w.dequeueTimeout,
	)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processLoop(ctx, workerID)
		}(i)
	}

	go func() {
		wg.Wait()
		close(w.doneCh)
	}()

	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	<-w.doneCh
}

// processLoop is the main processing loop for a worker goroutine.
func (w *Worker) processLoop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker_id", workerID)
	logger.Info("worker goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker context cancelled")
			return
		case <-w.stopCh:
			logger.Info("worker stop signal received")
			return
		default:
		}

		task, err := w.taskQueue.DequeueWithTimeout(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Error("failed to dequeue task", "error", err)
			time.Sleep(time.Second) // Back off on error
			continue
		}

		if task == nil {
			continue
		}

		w.processTask(ctx, task, logger)
	}
}

// processTask runs one pipeline stage and settles the task with the queue.
// Terminal stage errors are acked: redelivering a task for a vanished
// document or an image with no text cannot succeed on a second attempt.
func (w *Worker) processTask(ctx context.Context, task *domain.Task, logger *slog.Logger) {
	logger = logger.With("task_id", task.ID, "task_type", task.Type, "document_id", task.DocumentID())
	logger.Info("processing task", "attempt", task.Attempts)

	startTime := time.Now()
	var err error

	switch task.Type {
	case domain.TaskTypeParseDocument:
		err = w.handleParse(ctx, task)
	case domain.TaskTypeExtractResults:
		err = w.handleExtract(ctx, task)
	default:
		err = fmt.Errorf("unknown task type: %s", task.Type)
	}

	duration := time.Since(startTime)

	if err != nil {
		if isTerminal(err) {
			metrics.ObservePipelineStage(string(task.Type), "terminal", duration)
			logger.Warn("task failed terminally",
				"duration", duration,
				"error", err,
			)
			if ackErr := w.taskQueue.Ack(ctx, task.ID); ackErr != nil {
				logger.Error("failed to ack task", "ack_error", ackErr)
			}
			return
		}

		metrics.ObservePipelineStage(string(task.Type), "error", duration)
		logger.Error("task failed",
			"duration", duration,
			"error", err,
		)
		if nackErr := w.taskQueue.Nack(ctx, task.ID, err.Error()); nackErr != nil {
			logger.Error("failed to nack task", "nack_error", nackErr)
		}
		return
	}

	metrics.ObservePipelineStage(string(task.Type), "ok", duration)
	logger.Info("task completed", "duration", duration)

	if ackErr := w.taskQueue.Ack(ctx, task.ID); ackErr != nil {
		logger.Error("failed to ack task", "ack_error", ackErr)
	}
}

// handleParse handles a parse_document task.
func (w *Worker) handleParse(ctx context.Context, task *domain.Task) error {
	documentID := task.DocumentID()
	if documentID == "" {
		return fmt.Errorf("%w: document_id not found in task payload", domain.ErrNotFound)
	}
	return w.pipeline.Parse(ctx, documentID)
}

// handleExtract handles an extract_results task.
func (w *Worker) handleExtract(ctx context.Context, task *domain.Task) error {
	documentID := task.DocumentID()
	if documentID == "" {
		return fmt.Errorf("%w: document_id not found in task payload", domain.ErrNotFound)
	}

	result, err := w.pipeline.Extract(ctx, documentID)
	if err != nil {
		return err
	}

	w.logger.Info("extraction finished",
		"document_id", documentID,
		"saved", result.Saved,
		"skipped", result.Skipped,
	)
	return nil
}

// isTerminal reports whether retrying the stage could ever succeed.
func isTerminal(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrNoExtractableText) ||
		errors.Is(err, domain.ErrNoRawText)
}

// Health returns health status of the worker.
type Health struct {
	Running     bool   `json:"running"`
	QueueHealth bool   `json:"queue_health"`
	Error       string `json:"error,omitempty"`
}

// Health returns the health status of the worker.
func (w *Worker) Health(ctx context.Context) Health {
	w.mu.RLock()
	running := w.running
	w.mu.RUnlock()

	health := Health{
		Running: running,
	}

	if err := w.taskQueue.Ping(ctx); err != nil {
		health.QueueHealth = false
		health.Error = err.Error()
	} else {
		health.QueueHealth = true
	}

	return health
}
