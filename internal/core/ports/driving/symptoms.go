package driving

import (
	"context"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// SymptomCreateRequest is a new symptom log entry.
type SymptomCreateRequest struct {
	SymptomType     string
	Severity        int
	DurationMinutes *int
	Triggers        *string
	Notes           *string
	RecordedAt      time.Time
}

// SymptomService exposes symptom tracking.
type SymptomService interface {
	// List retrieves recent entries, optionally filtered by type.
	List(ctx context.Context, userID string, days int, symptomType string) ([]*domain.SymptomEntry, error)

	// Create stores a new entry.
	Create(ctx context.Context, userID string, req SymptomCreateRequest) (*domain.SymptomEntry, error)

	// Delete removes an entry owned by userID.
	Delete(ctx context.Context, userID, entryID string) error
}
