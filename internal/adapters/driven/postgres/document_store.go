package postgres

import (
	"context"
	"database/sql"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Save stores a new document
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, user_id, title, doc_type, file_path, mime_type, raw_text, document_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Title,
		string(doc.DocType),
		doc.FilePath,
		doc.MimeType,
		NullString(doc.RawText),
		NullTime(doc.DocumentDate),
		string(doc.Status),
		doc.CreatedAt,
	)
	return err
}

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `
		SELECT id, user_id, title, doc_type, file_path, mime_type, raw_text, document_date, status, created_at
		FROM documents
		WHERE id = $1
	`

	var doc domain.Document
	var rawText sql.NullString
	var documentDate sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Title,
		&doc.DocType,
		&doc.FilePath,
		&doc.MimeType,
		&rawText,
		&documentDate,
		&doc.Status,
		&doc.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	doc.RawText = StringPtr(rawText)
	doc.DocumentDate = TimePtr(documentDate)
	return &doc, nil
}

// ListByUser retrieves a user's documents, newest first
func (s *DocumentStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Document, error) {
	query := `
		SELECT id, user_id, title, doc_type, file_path, mime_type, raw_text, document_date, status, created_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		var doc domain.Document
		var rawText sql.NullString
		var documentDate sql.NullTime
		if err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.Title,
			&doc.DocType,
			&doc.FilePath,
			&doc.MimeType,
			&rawText,
			&documentDate,
			&doc.Status,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		doc.RawText = StringPtr(rawText)
		doc.DocumentDate = TimePtr(documentDate)
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// UpdateStatus sets the document status
func (s *DocumentStore) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// SaveRawText stores extracted text and sets the status in one write
func (s *DocumentStore) SaveRawText(ctx context.Context, id string, rawText string, status domain.DocumentStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET raw_text = $2, status = $3 WHERE id = $1`,
		id, rawText, string(status))
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Delete removes a document
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
