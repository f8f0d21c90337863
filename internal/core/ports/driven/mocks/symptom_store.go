package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// MockSymptomStore is an in-memory SymptomStore for testing
type MockSymptomStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.SymptomEntry
}

// NewMockSymptomStore creates a new MockSymptomStore
func NewMockSymptomStore() *MockSymptomStore {
	return &MockSymptomStore{entries: make(map[string]*domain.SymptomEntry)}
}

func (m *MockSymptomStore) Save(ctx context.Context, entry *domain.SymptomEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *entry
	m.entries[entry.ID] = &copied
	return nil
}

func (m *MockSymptomStore) ListSince(ctx context.Context, userID, symptomType string, since time.Time, limit int) ([]*domain.SymptomEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.SymptomEntry
	for _, entry := range m.entries {
		if entry.UserID != userID || entry.RecordedAt.Before(since) {
			continue
		}
		if symptomType != "" && entry.SymptomType != symptomType {
			continue
		}
		copied := *entry
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockSymptomStore) ListBetween(ctx context.Context, userID string, start, end time.Time) ([]*domain.SymptomEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.SymptomEntry
	for _, entry := range m.entries {
		if entry.UserID != userID {
			continue
		}
		if entry.RecordedAt.Before(start) || !entry.RecordedAt.Before(end) {
			continue
		}
		copied := *entry
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MockSymptomStore) DailySeverity(ctx context.Context, userID, symptomType string, since time.Time) (map[string]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, entry := range m.entries {
		if entry.UserID != userID || entry.SymptomType != symptomType || entry.RecordedAt.Before(since) {
			continue
		}
		day := entry.RecordedAt.Format("2006-01-02")
		sums[day] += float64(entry.Severity)
		counts[day]++
	}
	out := make(map[string]float64, len(sums))
	for day, sum := range sums {
		out[day] = sum / float64(counts[day])
	}
	return out, nil
}

func (m *MockSymptomStore) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok || entry.UserID != userID {
		return domain.ErrNotFound
	}
	delete(m.entries, id)
	return nil
}
