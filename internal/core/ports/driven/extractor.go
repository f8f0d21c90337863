package driven

import (
	"context"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// DocumentExtractor converts a stored file into extracted plain text via an
// OCR/document-conversion backend.
type DocumentExtractor interface {
	// Extract reads the file at path and returns its extracted text
	// (markdown-like). Returns domain.ErrNoExtractableText when the
	// backend produced nothing usable.
	Extract(ctx context.Context, path string) (string, error)

	// HealthCheck probes reachability of the extraction backend.
	HealthCheck(ctx context.Context) domain.ServiceHealth
}
