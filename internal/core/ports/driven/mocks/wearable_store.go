package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// MockWearableStore is an in-memory WearableStore for testing
type MockWearableStore struct {
	mu     sync.RWMutex
	points []domain.SeriesPoint
	events []*domain.EventRecord
}

// NewMockWearableStore creates a new MockWearableStore
func NewMockWearableStore() *MockWearableStore {
	return &MockWearableStore{}
}

// AddPoint seeds a series sample.
func (m *MockWearableStore) AddPoint(p domain.SeriesPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points = append(m.points, p)
}

// AddEvent seeds an event record.
func (m *MockWearableStore) AddEvent(e *domain.EventRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *e
	m.events = append(m.events, &copied)
}

func (m *MockWearableStore) MetricExists(ctx context.Context, metric string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.points {
		if p.Metric == metric {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockWearableStore) AvailableMetrics(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var metrics []string
	for _, p := range m.points {
		if !seen[p.Metric] {
			seen[p.Metric] = true
			metrics = append(metrics, p.Metric)
		}
	}
	sort.Strings(metrics)
	return metrics, nil
}

func (m *MockWearableStore) DailyAggregates(ctx context.Context, userID, metric string, since time.Time) ([]domain.DailyAggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byDay := make(map[string][]float64)
	for _, p := range m.points {
		if p.UserID != userID || p.Metric != metric || p.RecordedAt.Before(since) {
			continue
		}
		day := p.RecordedAt.Format("2006-01-02")
		byDay[day] = append(byDay[day], p.Value)
	}

	var out []domain.DailyAggregate
	for day, values := range byDay {
		agg := domain.DailyAggregate{Date: day, Min: values[0], Max: values[0], Count: len(values)}
		for _, v := range values {
			agg.Sum += v
			if v < agg.Min {
				agg.Min = v
			}
			if v > agg.Max {
				agg.Max = v
			}
		}
		agg.Avg = agg.Sum / float64(len(values))
		out = append(out, agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *MockWearableStore) DailyValues(ctx context.Context, userID, metric string, since time.Time) (map[string]float64, error) {
	aggs, err := m.DailyAggregates(ctx, userID, metric, since)
	if err != nil {
		return nil, err
	}
	values := make(map[string]float64, len(aggs))
	for _, agg := range aggs {
		if domain.IsCumulativeMetric(metric) {
			values[agg.Date] = agg.Sum
		} else {
			values[agg.Date] = agg.Avg
		}
	}
	return values, nil
}

func (m *MockWearableStore) DayAggregate(ctx context.Context, userID, metric string, day time.Time) (*domain.DailyAggregate, error) {
	aggs, err := m.DailyAggregates(ctx, userID, metric, day.Truncate(24*time.Hour))
	if err != nil {
		return nil, err
	}
	want := day.Format("2006-01-02")
	for _, agg := range aggs {
		if agg.Date == want {
			return &agg, nil
		}
	}
	return nil, nil
}

func (m *MockWearableStore) EventsSince(ctx context.Context, userID, category string, since time.Time) ([]*domain.EventRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.EventRecord
	for _, e := range m.events {
		if e.UserID != userID || e.Category != category || e.StartAt.Before(since) {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.After(out[j].StartAt) })
	return out, nil
}

func (m *MockWearableStore) EventsBetween(ctx context.Context, userID, category string, start, end time.Time) ([]*domain.EventRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.EventRecord
	for _, e := range m.events {
		if e.UserID != userID || e.Category != category {
			continue
		}
		// Sleep sessions belong to the day they end on.
		anchor := e.StartAt
		if category == domain.EventCategorySleep {
			anchor = e.EndAt
		}
		if anchor.Before(start) || !anchor.Before(end) {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}
