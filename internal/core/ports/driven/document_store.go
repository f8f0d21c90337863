package driven

import (
	"context"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// DocumentStore persists medical documents and their pipeline state.
type DocumentStore interface {
	// Save stores a new document.
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// ListByUser retrieves a user's documents, newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Document, error)

	// UpdateStatus sets the document status.
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error

	// SaveRawText stores extracted text and sets the status in one write.
	SaveRawText(ctx context.Context, id string, rawText string, status domain.DocumentStatus) error

	// Delete removes a document. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}
