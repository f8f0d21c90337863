package domain

import (
	"testing"
	"time"
)

func TestNewParseDocumentTask(t *testing.T) {
	task := NewParseDocumentTask("user-1", "doc-1")

	if task.Type != TaskTypeParseDocument {
		t.Errorf("expected type %s, got %s", TaskTypeParseDocument, task.Type)
	}
	if task.DocumentID() != "doc-1" {
		t.Errorf("expected document_id doc-1, got %s", task.DocumentID())
	}
	if task.Status != TaskStatusPending {
		t.Errorf("expected pending, got %s", task.Status)
	}
	if task.MaxAttempts != 3 {
		t.Errorf("expected 3 max attempts (initial + 2 retries), got %d", task.MaxAttempts)
	}
}

func TestTask_RetryAccounting(t *testing.T) {
	task := NewExtractResultsTask("user-1", "doc-1")

	for i := 0; i < task.MaxAttempts; i++ {
		if !task.CanRetry() {
			t.Fatalf("expected retry allowed at attempt %d", i)
		}
		task.MarkProcessing()
		task.Retry("extractor timeout")
	}

	if task.CanRetry() {
		t.Error("expected retries exhausted after max attempts")
	}
	if task.Status != TaskStatusPending {
		t.Errorf("retry should reset to pending, got %s", task.Status)
	}
}

func TestTask_RetryUsesFixedDelay(t *testing.T) {
	task := NewParseDocumentTask("user-1", "doc-1")
	task.MarkProcessing()

	before := time.Now()
	task.Retry("connection refused")

	delay := task.ScheduledFor.Sub(before)
	if delay < RetryDelay-time.Second || delay > RetryDelay+time.Second {
		t.Errorf("expected fixed %v backoff, got %v", RetryDelay, delay)
	}

	// The delay does not grow with attempts.
	task.MarkProcessing()
	before = time.Now()
	task.Retry("connection refused")
	delay = task.ScheduledFor.Sub(before)
	if delay > RetryDelay+time.Second {
		t.Errorf("expected non-escalating backoff, got %v", delay)
	}
}

func TestTask_MarkCompletedClearsError(t *testing.T) {
	task := NewParseDocumentTask("user-1", "doc-1")
	task.MarkProcessing()
	task.Retry("transient failure")
	task.MarkProcessing()
	task.MarkCompleted()

	if task.Status != TaskStatusCompleted {
		t.Errorf("expected completed, got %s", task.Status)
	}
	if task.Error != "" {
		t.Errorf("expected error cleared, got %q", task.Error)
	}
	if task.CompletedAt == nil {
		t.Error("expected completed_at set")
	}
}
