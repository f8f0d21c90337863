package driven

import (
	"context"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// WearableStore reads device time-series samples and discrete events.
// It is query-only from the core's perspective; ingestion happens out of band.
type WearableStore interface {
	// MetricExists reports whether any samples exist for a canonical
	// series code.
	MetricExists(ctx context.Context, metric string) (bool, error)

	// AvailableMetrics lists the series codes with data, sorted.
	AvailableMetrics(ctx context.Context) ([]string, error)

	// DailyAggregates rolls a user's samples of one metric up per day,
	// newest day first.
	DailyAggregates(ctx context.Context, userID, metric string, since time.Time) ([]domain.DailyAggregate, error)

	// DailyValues returns one value per day (sum for cumulative metrics,
	// average otherwise), keyed by YYYY-MM-DD, for correlation.
	DailyValues(ctx context.Context, userID, metric string, since time.Time) (map[string]float64, error)

	// DayAggregate rolls one metric up for a single day. Returns nil when
	// the day has no samples.
	DayAggregate(ctx context.Context, userID, metric string, day time.Time) (*domain.DailyAggregate, error)

	// EventsSince retrieves a user's events of one category starting on or
	// after since, newest first.
	EventsSince(ctx context.Context, userID, category string, since time.Time) ([]*domain.EventRecord, error)

	// EventsBetween retrieves events overlapping [start, end): sleep
	// sessions ending in the window, other events starting in it.
	EventsBetween(ctx context.Context, userID, category string, start, end time.Time) ([]*domain.EventRecord, error)
}
