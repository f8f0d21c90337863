package driven

import (
	"context"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// SymptomStore persists user-logged symptom entries.
type SymptomStore interface {
	// Save stores a symptom entry.
	Save(ctx context.Context, entry *domain.SymptomEntry) error

	// ListSince retrieves entries recorded on or after since, newest
	// first. symptomType optionally filters by exact match.
	ListSince(ctx context.Context, userID, symptomType string, since time.Time, limit int) ([]*domain.SymptomEntry, error)

	// ListBetween retrieves entries recorded in [start, end).
	ListBetween(ctx context.Context, userID string, start, end time.Time) ([]*domain.SymptomEntry, error)

	// DailySeverity returns the average severity per day for a symptom
	// type, keyed by YYYY-MM-DD, for correlation.
	DailySeverity(ctx context.Context, userID, symptomType string, since time.Time) (map[string]float64, error)

	// Delete removes an entry owned by userID. Returns domain.ErrNotFound
	// if absent or owned by someone else.
	Delete(ctx context.Context, userID, id string) error
}
