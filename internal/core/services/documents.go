package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
	"github.com/atria-labs/vitals-core/internal/core/ports/driving"
)

// Ensure documentService implements DocumentService
var _ driving.DocumentService = (*documentService)(nil)

const documentListLimit = 50

// documentService implements the DocumentService interface
type documentService struct {
	store  driven.DocumentStore
	files  driven.FileStore
	queue  driven.TaskQueue
	logger *slog.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(store driven.DocumentStore, files driven.FileStore, queue driven.TaskQueue, logger *slog.Logger) driving.DocumentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentService{
		store:  store,
		files:  files,
		queue:  queue,
		logger: logger.With("component", "documents"),
	}
}

// Upload accepts the file and queues the parse stage. The document is
// returned in the pending state; progress is observed by polling Get.
func (s *documentService) Upload(ctx context.Context, userID string, req driving.UploadRequest) (*domain.Document, error) {
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
	}
	if req.Filename == "" {
		return nil, fmt.Errorf("%w: missing filename", domain.ErrInvalidInput)
	}

	docType := req.DocType
	if docType == "" {
		docType = domain.DocumentTypeOther
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = req.Filename
	}

	path, err := s.files.Save(ctx, userID, req.Filename, req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	doc := domain.NewDocument(userID, title, docType, path, req.MimeType)
	if err := s.store.Save(ctx, doc); err != nil {
		if cleanupErr := s.files.Delete(ctx, path); cleanupErr != nil {
			s.logger.Error("failed to remove orphaned file", "path", path, "error", cleanupErr)
		}
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	if err := s.queue.Enqueue(ctx, domain.NewParseDocumentTask(userID, doc.ID)); err != nil {
		return nil, fmt.Errorf("failed to queue document processing: %w", err)
	}

	s.logger.Info("document accepted",
		"document_id", doc.ID, "user_id", userID, "size", len(req.Content))
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, userID, documentID string) (*domain.Document, error) {
	return s.ownedDocument(ctx, userID, documentID)
}

func (s *documentService) List(ctx context.Context, userID string, limit, offset int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = documentListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListByUser(ctx, userID, limit, offset)
}

func (s *documentService) Delete(ctx context.Context, userID, documentID string) error {
	doc, err := s.ownedDocument(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, documentID); err != nil {
		return err
	}
	// The record is gone; a leftover file only costs disk space.
	if err := s.files.Delete(ctx, doc.FilePath); err != nil {
		s.logger.Error("failed to remove stored file", "path", doc.FilePath, "error", err)
	}
	return nil
}

// Reprocess re-runs the pipeline for a failed document from the top.
func (s *documentService) Reprocess(ctx context.Context, userID, documentID string) (*domain.Document, error) {
	doc, err := s.ownedDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.DocumentStatusFailed {
		return nil, fmt.Errorf("%w: only failed documents can be reprocessed", domain.ErrInvalidStatus)
	}

	if err := s.store.UpdateStatus(ctx, documentID, domain.DocumentStatusPending); err != nil {
		return nil, fmt.Errorf("failed to reset document: %w", err)
	}
	if err := s.queue.Enqueue(ctx, domain.NewParseDocumentTask(userID, documentID)); err != nil {
		return nil, fmt.Errorf("failed to queue document processing: %w", err)
	}

	s.logger.Info("document requeued", "document_id", documentID, "user_id", userID)
	doc.Status = domain.DocumentStatusPending
	return doc, nil
}

// ownedDocument fetches a document and hides other users' documents behind
// not-found.
func (s *documentService) ownedDocument(ctx context.Context, userID, documentID string) (*domain.Document, error) {
	doc, err := s.store.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}
