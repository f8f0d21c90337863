package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven/mocks"
	"github.com/atria-labs/vitals-core/internal/core/ports/driving"
)

func newSymptomFixture() (*mocks.MockSymptomStore, driving.SymptomService) {
	store := mocks.NewMockSymptomStore()
	return store, NewSymptomService(store, nil)
}

func TestSymptomService_Create(t *testing.T) {
	_, svc := newSymptomFixture()
	duration := 45
	triggers := "caffeine"

	entry, err := svc.Create(context.Background(), "user-1", driving.SymptomCreateRequest{
		SymptomType:     "headache",
		Severity:        6,
		DurationMinutes: &duration,
		Triggers:        &triggers,
		RecordedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if entry.ID == "" || entry.UserID != "user-1" {
		t.Error("entry not initialized")
	}
	if entry.DurationMinutes == nil || *entry.DurationMinutes != 45 {
		t.Error("duration not carried")
	}
}

func TestSymptomService_Create_Validation(t *testing.T) {
	_, svc := newSymptomFixture()

	_, err := svc.Create(context.Background(), "user-1", driving.SymptomCreateRequest{
		SymptomType: "",
		Severity:    5,
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing type, got %v", err)
	}

	_, err = svc.Create(context.Background(), "user-1", driving.SymptomCreateRequest{
		SymptomType: "headache",
		Severity:    11,
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for severity out of range, got %v", err)
	}
}

func TestSymptomService_List_WindowAndFilter(t *testing.T) {
	_, svc := newSymptomFixture()
	ctx := context.Background()

	mk := func(symptomType string, daysAgo int) {
		t.Helper()
		_, err := svc.Create(ctx, "user-1", driving.SymptomCreateRequest{
			SymptomType: symptomType,
			Severity:    5,
			RecordedAt:  time.Now().UTC().AddDate(0, 0, -daysAgo),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	mk("headache", 2)
	mk("headache", 45)
	mk("fatigue", 2)

	entries, err := svc.List(ctx, "user-1", 30, "headache")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry inside window, got %d", len(entries))
	}

	all, err := svc.List(ctx, "user-1", 30, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 entries without type filter, got %d", len(all))
	}
}

func TestSymptomService_Delete_ScopedToUser(t *testing.T) {
	_, svc := newSymptomFixture()
	entry, err := svc.Create(context.Background(), "user-1", driving.SymptomCreateRequest{
		SymptomType: "headache",
		Severity:    4,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(context.Background(), "user-2", entry.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign entry, got %v", err)
	}
	if err := svc.Delete(context.Background(), "user-1", entry.ID); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
}
