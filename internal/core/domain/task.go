package domain

import "time"

// TaskType identifies the type of background task
type TaskType string

const (
	// TaskTypeParseDocument runs the OCR/parse stage for a document
	TaskTypeParseDocument TaskType = "parse_document"
	// TaskTypeExtractResults runs the structured-extraction stage
	TaskTypeExtractResults TaskType = "extract_results"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// RetryDelay is the fixed backoff between pipeline stage attempts.
const RetryDelay = 30 * time.Second

// Each stage gets 2 retries after the initial attempt.
const defaultMaxAttempts = 3

// Task represents a background pipeline job to be processed by workers
type Task struct {
	ID     string   `json:"id"`
	Type   TaskType `json:"type"`
	UserID string   `json:"user_id"`

	// Payload contains task-specific data; pipeline tasks carry
	// {"document_id": "..."}.
	Payload map[string]string `json:"payload"`

	Status      TaskStatus `json:"status"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	Error       string     `json:"error,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ScheduledFor time.Time  `json:"scheduled_for"`
}

// NewTask creates a new task with default values
func NewTask(taskType TaskType, userID string, payload map[string]string) *Task {
	now := time.Now()
	return &Task{
		ID:           GenerateID(),
		Type:         taskType,
		UserID:       userID,
		Payload:      payload,
		Status:       TaskStatusPending,
		Attempts:     0,
		MaxAttempts:  defaultMaxAttempts,
		CreatedAt:    now,
		UpdatedAt:    now,
		ScheduledFor: now,
	}
}

// NewParseDocumentTask creates a task for the parse stage of a document.
func NewParseDocumentTask(userID, documentID string) *Task {
	return NewTask(TaskTypeParseDocument, userID, map[string]string{
		"document_id": documentID,
	})
}

// NewExtractResultsTask creates a task for the extraction stage of a document.
func NewExtractResultsTask(userID, documentID string) *Task {
	return NewTask(TaskTypeExtractResults, userID, map[string]string{
		"document_id": documentID,
	})
}

// DocumentID extracts the document_id from the payload.
func (t *Task) DocumentID() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["document_id"]
}

// CanRetry returns true if the task can be retried
func (t *Task) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}

// IsReady returns true if the task is ready to be processed
func (t *Task) IsReady() bool {
	return t.Status == TaskStatusPending && time.Now().After(t.ScheduledFor)
}

// MarkProcessing updates the task to processing state
func (t *Task) MarkProcessing() {
	now := time.Now()
	t.Status = TaskStatusProcessing
	t.StartedAt = &now
	t.UpdatedAt = now
	t.Attempts++
}

// MarkCompleted updates the task to completed state
func (t *Task) MarkCompleted() {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.Error = ""
}

// MarkFailed updates the task to failed state
func (t *Task) MarkFailed(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.UpdatedAt = now
	t.Error = err
}

// Retry resets the task for another attempt after the fixed backoff delay.
func (t *Task) Retry(err string) {
	now := time.Now()
	t.Status = TaskStatusPending
	t.UpdatedAt = now
	t.Error = err
	t.ScheduledFor = now.Add(RetryDelay)
}
