package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.WearableStore = (*WearableStore)(nil)

// WearableStore implements driven.WearableStore using PostgreSQL. The core
// only reads wearable data; ingestion happens out of band.
type WearableStore struct {
	db *DB
}

// NewWearableStore creates a new WearableStore
func NewWearableStore(db *DB) *WearableStore {
	return &WearableStore{db: db}
}

// MetricExists reports whether any samples exist for a series code
func (s *WearableStore) MetricExists(ctx context.Context, metric string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM series_points WHERE metric = $1)`, metric).Scan(&exists)
	return exists, err
}

// AvailableMetrics lists the series codes with data, sorted
func (s *WearableStore) AvailableMetrics(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT metric FROM series_points ORDER BY metric ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []string
	for rows.Next() {
		var metric string
		if err := rows.Scan(&metric); err != nil {
			return nil, err
		}
		metrics = append(metrics, metric)
	}
	return metrics, rows.Err()
}

// DailyAggregates rolls samples up per day, newest day first
func (s *WearableStore) DailyAggregates(ctx context.Context, userID, metric string, since time.Time) ([]domain.DailyAggregate, error) {
	query := `
		SELECT to_char(recorded_at, 'YYYY-MM-DD') AS day,
		       AVG(value), MIN(value), MAX(value), SUM(value), COUNT(*)
		FROM series_points
		WHERE user_id = $1 AND metric = $2 AND recorded_at >= $3
		GROUP BY day
		ORDER BY day DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, metric, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggregates []domain.DailyAggregate
	for rows.Next() {
		var agg domain.DailyAggregate
		if err := rows.Scan(&agg.Date, &agg.Avg, &agg.Min, &agg.Max, &agg.Sum, &agg.Count); err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, rows.Err()
}

// DailyValues returns one value per day: sum for cumulative metrics,
// average otherwise
func (s *WearableStore) DailyValues(ctx context.Context, userID, metric string, since time.Time) (map[string]float64, error) {
	agg := "AVG(value)"
	if domain.IsCumulativeMetric(metric) {
		agg = "SUM(value)"
	}
	query := `
		SELECT to_char(recorded_at, 'YYYY-MM-DD') AS day, ` + agg + `
		FROM series_points
		WHERE user_id = $1 AND metric = $2 AND recorded_at >= $3
		GROUP BY day
	`
	rows, err := s.db.QueryContext(ctx, query, userID, metric, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]float64)
	for rows.Next() {
		var day string
		var value float64
		if err := rows.Scan(&day, &value); err != nil {
			return nil, err
		}
		values[day] = value
	}
	return values, rows.Err()
}

// DayAggregate rolls one metric up for a single day
func (s *WearableStore) DayAggregate(ctx context.Context, userID, metric string, day time.Time) (*domain.DailyAggregate, error) {
	query := `
		SELECT AVG(value), MIN(value), MAX(value), SUM(value), COUNT(*)
		FROM series_points
		WHERE user_id = $1 AND metric = $2
		  AND recorded_at >= $3 AND recorded_at < $3 + INTERVAL '1 day'
	`
	dayStart := day.Truncate(24 * time.Hour)

	var agg domain.DailyAggregate
	var avg, minV, maxV, sum sql.NullFloat64
	err := s.db.QueryRowContext(ctx, query, userID, metric, dayStart).Scan(&avg, &minV, &maxV, &sum, &agg.Count)
	if err != nil {
		return nil, err
	}
	if agg.Count == 0 {
		return nil, nil
	}

	agg.Date = dayStart.Format("2006-01-02")
	agg.Avg = avg.Float64
	agg.Min = minV.Float64
	agg.Max = maxV.Float64
	agg.Sum = sum.Float64
	return &agg, nil
}

const eventColumns = `id, user_id, category, event_type, start_at, end_at, duration_seconds, source_name`

// EventsSince retrieves events of one category starting on or after since,
// newest first
func (s *WearableStore) EventsSince(ctx context.Context, userID, category string, since time.Time) ([]*domain.EventRecord, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM event_records
		WHERE user_id = $1 AND category = $2 AND start_at >= $3
		ORDER BY start_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, category, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// EventsBetween retrieves events overlapping [start, end). A sleep session
// belongs to the day it ended on; other events to the day they started.
func (s *WearableStore) EventsBetween(ctx context.Context, userID, category string, start, end time.Time) ([]*domain.EventRecord, error) {
	anchor := "start_at"
	if category == domain.EventCategorySleep {
		anchor = "end_at"
	}
	query := `
		SELECT ` + eventColumns + `
		FROM event_records
		WHERE user_id = $1 AND category = $2 AND ` + anchor + ` >= $3 AND ` + anchor + ` < $4
		ORDER BY start_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, category, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]*domain.EventRecord, error) {
	var events []*domain.EventRecord
	for rows.Next() {
		var event domain.EventRecord
		var eventType, sourceName sql.NullString
		var duration sql.NullInt64
		if err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.Category,
			&eventType,
			&event.StartAt,
			&event.EndAt,
			&duration,
			&sourceName,
		); err != nil {
			return nil, err
		}
		event.EventType = eventType.String
		event.SourceName = sourceName.String
		event.DurationSeconds = IntPtr(duration)
		events = append(events, &event)
	}
	return events, rows.Err()
}
