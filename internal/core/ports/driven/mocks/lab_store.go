package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// MockLabStore is an in-memory LabStore for testing. It enforces the
// (user_id, test_name, recorded_at) uniqueness invariant like the real store.
type MockLabStore struct {
	mu   sync.RWMutex
	labs map[string]*domain.LabResult
	keys map[string]bool // userID|testName|date
}

// NewMockLabStore creates a new MockLabStore
func NewMockLabStore() *MockLabStore {
	return &MockLabStore{
		labs: make(map[string]*domain.LabResult),
		keys: make(map[string]bool),
	}
}

func uniqueKey(lab *domain.LabResult) string {
	return lab.UserID + "|" + strings.ToLower(lab.TestName) + "|" + lab.RecordedAt.Format("2006-01-02")
}

func (m *MockLabStore) Save(ctx context.Context, lab *domain.LabResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := uniqueKey(lab)
	if m.keys[key] {
		return domain.ErrAlreadyExists
	}
	copied := *lab
	m.labs[lab.ID] = &copied
	m.keys[key] = true
	return nil
}

func (m *MockLabStore) ListRecent(ctx context.Context, userID string, since time.Time, testName string, limit int) ([]*domain.LabResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LabResult
	for _, lab := range m.labs {
		if lab.UserID != userID || lab.RecordedAt.Before(since) {
			continue
		}
		if testName != "" && !strings.Contains(strings.ToLower(lab.TestName), strings.ToLower(testName)) {
			continue
		}
		copied := *lab
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockLabStore) ListByTest(ctx context.Context, userID, testName string, since time.Time) ([]*domain.LabResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LabResult
	for _, lab := range m.labs {
		if lab.UserID != userID || lab.RecordedAt.Before(since) {
			continue
		}
		if !strings.Contains(strings.ToLower(lab.TestName), strings.ToLower(testName)) {
			continue
		}
		copied := *lab
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

func (m *MockLabStore) ListOnDate(ctx context.Context, userID string, day time.Time) ([]*domain.LabResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := day.Format("2006-01-02")
	var out []*domain.LabResult
	for _, lab := range m.labs {
		if lab.UserID == userID && lab.RecordedAt.Format("2006-01-02") == want {
			copied := *lab
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockLabStore) DailyValues(ctx context.Context, userID, testName string, since time.Time) (map[string]float64, error) {
	labs, err := m.ListByTest(ctx, userID, testName, since)
	if err != nil {
		return nil, err
	}
	values := make(map[string]float64, len(labs))
	for _, lab := range labs {
		f, _ := lab.Value.Float64()
		values[lab.RecordedAt.Format("2006-01-02")] = f
	}
	return values, nil
}

func (m *MockLabStore) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lab, ok := m.labs[id]
	if !ok || lab.UserID != userID {
		return domain.ErrNotFound
	}
	delete(m.keys, uniqueKey(lab))
	delete(m.labs, id)
	return nil
}

// Count returns the number of stored measurements.
func (m *MockLabStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.labs)
}
