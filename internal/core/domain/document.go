package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateID creates a unique identifier for domain entities.
func GenerateID() string {
	return uuid.NewString()
}

// DocumentStatus represents the processing state of a medical document
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusParsing    DocumentStatus = "parsing"
	DocumentStatusParsed     DocumentStatus = "parsed"
	DocumentStatusExtracting DocumentStatus = "extracting"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// legalTransitions maps each status to the statuses it may advance to.
// The pipeline only ever moves forward; failed is reachable from the two
// in-flight stages and both completed and failed are terminal.
var legalTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusPending:    {DocumentStatusParsing},
	DocumentStatusParsing:    {DocumentStatusParsed, DocumentStatusFailed},
	DocumentStatusParsed:     {DocumentStatusExtracting},
	DocumentStatusExtracting: {DocumentStatusCompleted, DocumentStatusFailed},
	DocumentStatusCompleted:  {},
	DocumentStatusFailed:     {},
}

// CanTransitionTo reports whether moving from s to next is a legal step.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusCompleted || s == DocumentStatusFailed
}

// DocumentType classifies the uploaded file
type DocumentType string

const (
	DocumentTypeLabReport    DocumentType = "lab_report"
	DocumentTypePrescription DocumentType = "prescription"
	DocumentTypeImaging      DocumentType = "imaging"
	DocumentTypeOther        DocumentType = "other"
)

// Document represents an uploaded medical document moving through the
// processing pipeline.
type Document struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Title        string         `json:"title"`
	DocType      DocumentType   `json:"doc_type"`
	FilePath     string         `json:"file_path"`
	MimeType     string         `json:"mime_type"`
	RawText      *string        `json:"raw_text,omitempty"`
	DocumentDate *time.Time     `json:"document_date,omitempty"`
	Status       DocumentStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
}

// NewDocument creates a document in the pending state.
func NewDocument(userID, title string, docType DocumentType, filePath, mimeType string) *Document {
	return &Document{
		ID:        GenerateID(),
		UserID:    userID,
		Title:     title,
		DocType:   docType,
		FilePath:  filePath,
		MimeType:  mimeType,
		Status:    DocumentStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Transition advances the document to next, enforcing the legal path.
func (d *Document) Transition(next DocumentStatus) error {
	if !d.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, d.Status, next)
	}
	d.Status = next
	return nil
}
