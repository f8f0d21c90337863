package driving

import (
	"context"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LabCreateRequest is a manually entered measurement (no source document).
type LabCreateRequest struct {
	TestName     string
	TestCode     *string
	Value        decimal.Decimal
	Unit         string
	ReferenceMin *decimal.Decimal
	ReferenceMax *decimal.Decimal
	RecordedAt   time.Time
}

// TrendPoint is one measurement in a trend series.
type TrendPoint struct {
	Date   string           `json:"date"`
	Value  float64          `json:"value"`
	Status *domain.LabStatus `json:"status,omitempty"`
}

// TrendStats summarizes a trend series.
type TrendStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	Latest float64 `json:"latest"`
	Trend  string  `json:"trend"` // increasing, decreasing, stable
}

// LabTrend is the historical series for one test.
type LabTrend struct {
	TestName     string       `json:"test_name"`
	Unit         string       `json:"unit"`
	ReferenceMin *float64     `json:"reference_min"`
	ReferenceMax *float64     `json:"reference_max"`
	Points       []TrendPoint `json:"data_points"`
	Stats        *TrendStats  `json:"statistics,omitempty"`
}

// LabService exposes lab measurements.
type LabService interface {
	// List retrieves recent measurements, optionally filtered by test name.
	List(ctx context.Context, userID string, days int, testName string) ([]*domain.LabResult, error)

	// Trend builds the chronological series for one test.
	Trend(ctx context.Context, userID, testName string, months int) (*LabTrend, error)

	// Create stores a manual measurement. The qualitative status is
	// recomputed from the reference range, never taken from the caller.
	Create(ctx context.Context, userID string, req LabCreateRequest) (*domain.LabResult, error)

	// Delete removes a measurement owned by userID.
	Delete(ctx context.Context, userID, labID string) error
}
