package domain

import "time"

// Series metric codes for wearable time-series data.
const (
	MetricHeartRate        = "heart_rate"
	MetricRestingHeartRate = "resting_heart_rate"
	MetricHRV              = "heart_rate_variability_sdnn"
	MetricSteps            = "steps"
	MetricWeight           = "weight"
	MetricActiveEnergy     = "active_energy_burned"
	MetricBloodOxygen      = "blood_oxygen_saturation"
	MetricDistance         = "distance_walking_running"
)

// Event-derived pseudo-metrics computed from discrete occurrences rather
// than continuous samples.
const (
	MetricSleep    = "sleep"
	MetricWorkouts = "workouts"
)

// Event categories stored in event records.
const (
	EventCategorySleep   = "sleep"
	EventCategoryWorkout = "workout"
)

// metricAliases maps shorthand names the model tends to produce onto
// canonical series codes.
var metricAliases = map[string]string{
	"hr":         MetricHeartRate,
	"hrv":        MetricHRV,
	"resting_hr": MetricRestingHeartRate,
	"spo2":       MetricBloodOxygen,
	"energy":     MetricActiveEnergy,
	"calories":   MetricActiveEnergy,
	"distance":   MetricDistance,
	"workout":    MetricWorkouts,
}

// cumulativeMetrics are summed per day instead of averaged.
var cumulativeMetrics = map[string]bool{
	MetricSteps:        true,
	MetricActiveEnergy: true,
	MetricDistance:     true,
}

// ResolveMetric normalizes a metric name, following aliases.
func ResolveMetric(code string) string {
	if canonical, ok := metricAliases[code]; ok {
		return canonical
	}
	return code
}

// IsCumulativeMetric reports whether daily aggregation should sum samples
// rather than average them.
func IsCumulativeMetric(code string) bool {
	return cumulativeMetrics[code]
}

// IsEventMetric reports whether the metric is derived from discrete events.
func IsEventMetric(code string) bool {
	return code == MetricSleep || code == MetricWorkouts
}

// SeriesPoint is one sample of a continuously measured wearable metric.
type SeriesPoint struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Metric     string    `json:"metric"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	RecordedAt time.Time `json:"recorded_at"`
}

// DailyAggregate is one day of a series metric rolled up.
type DailyAggregate struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
	Count int     `json:"data_points"`
}

// EventRecord is a discrete occurrence such as a sleep session or workout.
type EventRecord struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Category        string    `json:"category"`
	EventType       string    `json:"type,omitempty"` // e.g. workout kind
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	SourceName      string    `json:"source_name,omitempty"`
}

// DurationMinutes returns the event length in whole minutes, nil when the
// duration is unknown.
func (e *EventRecord) DurationMinutes() *int {
	if e.DurationSeconds == nil {
		return nil
	}
	m := *e.DurationSeconds / 60
	return &m
}
