package driving

import (
	"context"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// UploadRequest carries a file accepted for processing.
type UploadRequest struct {
	Title    string
	DocType  domain.DocumentType
	Filename string
	MimeType string
	Content  []byte
}

// DocumentService accepts uploads and exposes pipeline progress.
type DocumentService interface {
	// Upload stores the file, creates a pending document and enqueues the
	// parse stage. Acceptance is fire-and-forget: processing status must
	// be polled via Get afterwards.
	Upload(ctx context.Context, userID string, req UploadRequest) (*domain.Document, error)

	// Get retrieves a document owned by userID.
	Get(ctx context.Context, userID, documentID string) (*domain.Document, error)

	// List retrieves a user's documents, newest first.
	List(ctx context.Context, userID string, limit, offset int) ([]*domain.Document, error)

	// Delete removes a document and its stored file.
	Delete(ctx context.Context, userID, documentID string) error

	// Reprocess resets a failed document to pending and re-enqueues the
	// parse stage.
	Reprocess(ctx context.Context, userID, documentID string) (*domain.Document, error)
}
