package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
	"github.com/atria-labs/vitals-core/internal/core/ports/driving"
)

// Ensure labService implements LabService
var _ driving.LabService = (*labService)(nil)

const (
	defaultLabListDays = 90
	defaultTrendMonths = 12
	labListLimit       = 100
)

// labService implements the LabService interface
type labService struct {
	store  driven.LabStore
	logger *slog.Logger
}

// NewLabService creates a new LabService
func NewLabService(store driven.LabStore, logger *slog.Logger) driving.LabService {
	if logger == nil {
		logger = slog.Default()
	}
	return &labService{
		store:  store,
		logger: logger.With("component", "labs"),
	}
}

func (s *labService) List(ctx context.Context, userID string, days int, testName string) ([]*domain.LabResult, error) {
	if days <= 0 {
		days = defaultLabListDays
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return s.store.ListRecent(ctx, userID, since, testName, labListLimit)
}

// Trend builds the chronological series for one test. A test with no
// measurements yields an empty series without statistics.
func (s *labService) Trend(ctx context.Context, userID, testName string, months int) (*driving.LabTrend, error) {
	if strings.TrimSpace(testName) == "" {
		return nil, fmt.Errorf("%w: missing test name", domain.ErrInvalidInput)
	}
	if months <= 0 {
		months = defaultTrendMonths
	}
	since := time.Now().UTC().AddDate(0, -months, 0)

	results, err := s.store.ListByTest(ctx, userID, testName, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load trend: %w", err)
	}

	trend := &driving.LabTrend{TestName: testName, Points: []driving.TrendPoint{}}
	if len(results) == 0 {
		return trend, nil
	}

	trend.TestName = results[0].TestName
	trend.Unit = results[0].Unit
	if results[0].ReferenceMin != nil {
		v := results[0].ReferenceMin.InexactFloat64()
		trend.ReferenceMin = &v
	}
	if results[0].ReferenceMax != nil {
		v := results[0].ReferenceMax.InexactFloat64()
		trend.ReferenceMax = &v
	}

	values := make([]float64, 0, len(results))
	for _, lab := range results {
		v := lab.Value.InexactFloat64()
		values = append(values, v)
		trend.Points = append(trend.Points, driving.TrendPoint{
			Date:   lab.RecordedAt.Format("2006-01-02"),
			Value:  v,
			Status: lab.Status,
		})
	}

	direction := "stable"
	if len(values) >= 2 {
		switch {
		case values[len(values)-1] > values[0]:
			direction = "increasing"
		case values[len(values)-1] < values[0]:
			direction = "decreasing"
		}
	}
	minV, maxV, sum := values[0], values[0], 0.0
	for _, v := range values {
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	trend.Stats = &driving.TrendStats{
		Min:    minV,
		Max:    maxV,
		Avg:    round(sum/float64(len(values)), 2),
		Latest: values[len(values)-1],
		Trend:  direction,
	}
	return trend, nil
}

// Create stores a manual measurement. The qualitative status is derived
// from the reference range; a caller cannot set it directly.
func (s *labService) Create(ctx context.Context, userID string, req driving.LabCreateRequest) (*domain.LabResult, error) {
	if strings.TrimSpace(req.TestName) == "" {
		return nil, fmt.Errorf("%w: missing test name", domain.ErrInvalidInput)
	}
	if req.Unit == "" {
		return nil, fmt.Errorf("%w: missing unit", domain.ErrInvalidInput)
	}

	recordedAt := req.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	lab := &domain.LabResult{
		ID:           domain.GenerateID(),
		UserID:       userID,
		TestName:     req.TestName,
		TestCode:     req.TestCode,
		Value:        req.Value,
		Unit:         req.Unit,
		ReferenceMin: req.ReferenceMin,
		ReferenceMax: req.ReferenceMax,
		Status:       domain.ClassifyLabValue(req.Value, req.ReferenceMin, req.ReferenceMax),
		RecordedAt:   recordedAt,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Save(ctx, lab); err != nil {
		return nil, fmt.Errorf("failed to save measurement: %w", err)
	}
	s.logger.Info("measurement created",
		"lab_id", lab.ID, "user_id", userID, "test_name", lab.TestName)
	return lab, nil
}

func (s *labService) Delete(ctx context.Context, userID, labID string) error {
	return s.store.Delete(ctx, userID, labID)
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
