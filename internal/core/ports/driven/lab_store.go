package driven

import (
	"context"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// LabStore persists structured lab measurements.
//
// (user_id, test_name, recorded_at) is unique; Save surfaces a duplicate as
// domain.ErrAlreadyExists so extraction batches can absorb it per item.
type LabStore interface {
	// Save inserts a single measurement.
	Save(ctx context.Context, lab *domain.LabResult) error

	// ListRecent retrieves a user's measurements recorded on or after
	// since, newest first. testName optionally filters by case-insensitive
	// partial match.
	ListRecent(ctx context.Context, userID string, since time.Time, testName string, limit int) ([]*domain.LabResult, error)

	// ListByTest retrieves measurements matching testName (partial match)
	// in chronological order.
	ListByTest(ctx context.Context, userID, testName string, since time.Time) ([]*domain.LabResult, error)

	// ListOnDate retrieves measurements recorded on a specific day.
	ListOnDate(ctx context.Context, userID string, day time.Time) ([]*domain.LabResult, error)

	// DailyValues returns one value per day for a test (partial match),
	// keyed by YYYY-MM-DD, for correlation.
	DailyValues(ctx context.Context, userID, testName string, since time.Time) (map[string]float64, error)

	// Delete removes a measurement owned by userID. Returns
	// domain.ErrNotFound if absent or owned by someone else.
	Delete(ctx context.Context, userID, id string) error
}
