package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
	"github.com/atria-labs/vitals-core/internal/core/ports/driving"
)

// Ensure symptomService implements SymptomService
var _ driving.SymptomService = (*symptomService)(nil)

const (
	defaultSymptomListDays = 30
	symptomListLimit       = 200
)

// symptomService implements the SymptomService interface
type symptomService struct {
	store  driven.SymptomStore
	logger *slog.Logger
}

// NewSymptomService creates a new SymptomService
func NewSymptomService(store driven.SymptomStore, logger *slog.Logger) driving.SymptomService {
	if logger == nil {
		logger = slog.Default()
	}
	return &symptomService{
		store:  store,
		logger: logger.With("component", "symptoms"),
	}
}

func (s *symptomService) List(ctx context.Context, userID string, days int, symptomType string) ([]*domain.SymptomEntry, error) {
	if days <= 0 {
		days = defaultSymptomListDays
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return s.store.ListSince(ctx, userID, symptomType, since, symptomListLimit)
}

func (s *symptomService) Create(ctx context.Context, userID string, req driving.SymptomCreateRequest) (*domain.SymptomEntry, error) {
	recordedAt := req.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	entry := domain.NewSymptomEntry(userID, req.SymptomType, req.Severity, recordedAt)
	entry.DurationMinutes = req.DurationMinutes
	entry.Triggers = req.Triggers
	entry.Notes = req.Notes

	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: symptom type required, severity 0-10", err)
	}
	if err := s.store.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	s.logger.Info("symptom logged",
		"entry_id", entry.ID, "user_id", userID, "symptom_type", entry.SymptomType)
	return entry, nil
}

func (s *symptomService) Delete(ctx context.Context, userID, entryID string) error {
	return s.store.Delete(ctx, userID, entryID)
}
