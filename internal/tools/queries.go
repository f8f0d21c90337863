package tools

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

const (
	recentLabsLimit      = 50
	symptomTimelineLimit = 100
	availableMetricsCap  = 30
	minOverlapDays       = 3
)

func (r *Registry) recentLabs(ctx context.Context, userID string, args map[string]any) (map[string]any, error) {
	days := intArg(args, "days", 90)
	testName := stringArg(args, "test_name")
	since := time.Now().UTC().AddDate(0, 0, -days)

	results, err := r.labs.ListRecent(ctx, userID, since, testName, recentLabsLimit)
	if err != nil {
		return nil, err
	}

	records := make([]map[string]any, 0, len(results))
	for _, lab := range results {
		record := map[string]any{
			"test_name":     lab.TestName,
			"value":         lab.Value.InexactFloat64(),
			"unit":          lab.Unit,
			"recorded_at":   lab.RecordedAt.Format("2006-01-02"),
			"status":        lab.Status,
			"reference_min": decimalPtr(lab.ReferenceMin),
			"reference_max": decimalPtr(lab.ReferenceMax),
		}
		if lab.TestCode != nil {
			record["test_code"] = *lab.TestCode
		}
		records = append(records, record)
	}

	return map[string]any{
		"user_id":     userID,
		"period_days": days,
		"count":       len(records),
		"results":     records,
	}, nil
}

func (r *Registry) labTrend(ctx context.Context, userID string, args map[string]any) (map[string]any, error) {
	testName := stringArg(args, "test_name")
	months := intArg(args, "months", 12)
	since := time.Now().UTC().AddDate(0, 0, -months*30)

	results, err := r.labs.ListByTest(ctx, userID, testName, since)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return map[string]any{
			"user_id":       userID,
			"test_name":     testName,
			"period_months": months,
			"count":         0,
			"data_points":   []any{},
			"message":       fmt.Sprintf("No results found for '%s' in the last %d months.", testName, months),
		}, nil
	}

	points := make([]map[string]any, 0, len(results))
	values := make([]float64, 0, len(results))
	for _, lab := range results {
		points = append(points, map[string]any{
			"date":   lab.RecordedAt.Format("2006-01-02"),
			"value":  lab.Value.InexactFloat64(),
			"status": lab.Status,
		})
		values = append(values, lab.Value.InexactFloat64())
	}

	trend := "stable"
	if len(values) >= 2 {
		switch {
		case values[len(values)-1] > values[0]:
			trend = "increasing"
		case values[len(values)-1] < values[0]:
			trend = "decreasing"
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

	return map[string]any{
		"user_id":       userID,
		"test_name":     results[0].TestName,
		"unit":          results[0].Unit,
		"period_months": months,
		"count":         len(points),
		"reference_range": map[string]any{
			"min": decimalPtr(results[0].ReferenceMin),
			"max": decimalPtr(results[0].ReferenceMax),
		},
		"data_points": points,
		"statistics": map[string]any{
			"min":    minV,
			"max":    maxV,
			"avg":    round(sum/float64(len(values)), 2),
			"latest": values[len(values)-1],
			"trend":  trend,
		},
	}, nil
}

func (r *Registry) symptomTimeline(ctx context.Context, userID string, args map[string]any) (map[string]any, error) {
	symptomType := stringArg(args, "symptom_type")
	days := intArg(args, "days", 30)
	since := time.Now().UTC().AddDate(0, 0, -days)

	results, err := r.symptoms.ListSince(ctx, userID, symptomType, since, symptomTimelineLimit)
	if err != nil {
		return nil, err
	}

	entries := make([]map[string]any, 0, len(results))
	severities := make(map[string][]int)
	for _, s := range results {
		entry := map[string]any{
			"symptom_type": s.SymptomType,
			"severity":     s.Severity,
			"recorded_at":  s.RecordedAt.Format(time.RFC3339),
		}
		if s.Notes != nil {
			entry["notes"] = *s.Notes
		}
		if s.Triggers != nil {
			entry["triggers"] = *s.Triggers
		}
		if s.DurationMinutes != nil {
			entry["duration_minutes"] = *s.DurationMinutes
		}
		entries = append(entries, entry)
		severities[s.SymptomType] = append(severities[s.SymptomType], s.Severity)
	}

	frequency := make(map[string]any, len(severities))
	for stype, vals := range severities {
		sum, maxS := 0, vals[0]
		for _, v := range vals {
			sum += v
			if v > maxS {
				maxS = v
			}
		}
		frequency[stype] = map[string]any{
			"count":        len(vals),
			"avg_severity": round(float64(sum)/float64(len(vals)), 1),
			"max_severity": maxS,
		}
	}

	return map[string]any{
		"user_id":     userID,
		"period_days": days,
		"count":       len(entries),
		"entries":     entries,
		"frequency":   frequency,
	}, nil
}

func (r *Registry) wearableSummary(ctx context.Context, userID string, args map[string]any) (map[string]any, error) {
	metric := domain.ResolveMetric(stringArg(args, "metric"))
	days := intArg(args, "days", 30)
	since := time.Now().UTC().AddDate(0, 0, -days)

	if metric == domain.MetricSleep {
		return r.sleepSummary(ctx, userID, since, days)
	}
	if metric == domain.MetricWorkouts {
		return r.workoutSummary(ctx, userID, since, days)
	}

	exists, err := r.wearables.MetricExists(ctx, metric)
	if err != nil {
		return nil, err
	}
	if !exists {
		available, err := r.wearables.AvailableMetrics(ctx)
		if err != nil {
			return nil, err
		}
		if len(available) > availableMetricsCap {
			available = available[:availableMetricsCap]
		}
		return map[string]any{
			"user_id":           userID,
			"metric":            metric,
			"error":             fmt.Sprintf("Unknown metric '%s'.", metric),
			"available_metrics": available,
		}, nil
	}

	daily, err := r.wearables.DailyAggregates(ctx, userID, metric, since)
	if err != nil {
		return nil, err
	}

	dailyValues := make([]map[string]any, 0, len(daily))
	var avgs []float64
	for _, d := range daily {
		dailyValues = append(dailyValues, map[string]any{
			"date":        d.Date,
			"avg":         round(d.Avg, 1),
			"min":         d.Min,
			"max":         d.Max,
			"data_points": d.Count,
		})
		avgs = append(avgs, d.Avg)
	}

	stats := map[string]any{}
	if len(avgs) > 0 {
		sum, minV, maxV := 0.0, avgs[0], avgs[0]
		for _, v := range avgs {
			sum += v
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
		stats = map[string]any{
			"overall_avg":    round(sum/float64(len(avgs)), 1),
			"overall_min":    round(minV, 1),
			"overall_max":    round(maxV, 1),
			"days_with_data": len(avgs),
		}
	}

	return map[string]any{
		"user_id":      userID,
		"metric":       metric,
		"period_days":  days,
		"count":        len(dailyValues),
		"daily_values": dailyValues,
		"statistics":   stats,
	}, nil
}

func (r *Registry) sleepSummary(ctx context.Context, userID string, since time.Time, days int) (map[string]any, error) {
	events, err := r.wearables.EventsSince(ctx, userID, domain.EventCategorySleep, since)
	if err != nil {
		return nil, err
	}

	records := make([]map[string]any, 0, len(events))
	var durations []int
	for _, e := range events {
		dur := e.DurationMinutes()
		records = append(records, map[string]any{
			"date":             e.StartAt.Format("2006-01-02"),
			"start":            e.StartAt.Format(time.RFC3339),
			"end":              e.EndAt.Format(time.RFC3339),
			"duration_minutes": dur,
			"source":           e.SourceName,
		})
		if dur != nil {
			durations = append(durations, *dur)
		}
	}

	stats := map[string]any{}
	if len(durations) > 0 {
		sum, minD, maxD := 0, durations[0], durations[0]
		for _, d := range durations {
			sum += d
			if d < minD {
				minD = d
			}
			if d > maxD {
				maxD = d
			}
		}
		stats = map[string]any{
			"avg_duration_minutes": int(math.Round(float64(sum) / float64(len(durations)))),
			"min_duration_minutes": minD,
			"max_duration_minutes": maxD,
			"nights_tracked":       len(durations),
		}
	}

	return map[string]any{
		"user_id":     userID,
		"metric":      domain.MetricSleep,
		"period_days": days,
		"count":       len(records),
		"records":     records,
		"statistics":  stats,
	}, nil
}

func (r *Registry) workoutSummary(ctx context.Context, userID string, since time.Time, days int) (map[string]any, error) {
	events, err := r.wearables.EventsSince(ctx, userID, domain.EventCategoryWorkout, since)
	if err != nil {
		return nil, err
	}

	records := make([]map[string]any, 0, len(events))
	totalDuration := 0
	byType := make(map[string]int)
	for _, e := range events {
		workoutType := e.EventType
		if workoutType == "" {
			workoutType = "unknown"
		}
		byType[workoutType]++
		dur := e.DurationMinutes()
		records = append(records, map[string]any{
			"date":             e.StartAt.Format("2006-01-02"),
			"type":             workoutType,
			"duration_minutes": dur,
			"start":            e.StartAt.Format(time.RFC3339),
			"end":              e.EndAt.Format(time.RFC3339),
			"source":           e.SourceName,
		})
		if dur != nil {
			totalDuration += *dur
		}
	}

	return map[string]any{
		"user_id":     userID,
		"metric":      domain.MetricWorkouts,
		"period_days": days,
		"count":       len(records),
		"records":     records,
		"statistics": map[string]any{
			"total_workouts":         len(records),
			"total_duration_minutes": totalDuration,
			"by_type":                byType,
		},
	}, nil
}

func (r *Registry) dailySummary(ctx context.Context, userID string, args map[string]any) (map[string]any, error) {
	target := stringArg(args, "date")
	day, err := time.Parse("2006-01-02", target)
	if err != nil {
		return map[string]any{
			"error": fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD.", target),
		}, nil
	}
	dayStart := day.UTC()
	dayEnd := dayStart.AddDate(0, 0, 1)

	summary := map[string]any{
		"user_id": userID,
		"date":    target,
	}

	labs, err := r.labs.ListOnDate(ctx, userID, dayStart)
	if err != nil {
		return nil, err
	}
	if len(labs) > 0 {
		records := make([]map[string]any, 0, len(labs))
		for _, lab := range labs {
			records = append(records, map[string]any{
				"test_name": lab.TestName,
				"value":     lab.Value.InexactFloat64(),
				"unit":      lab.Unit,
				"status":    lab.Status,
			})
		}
		summary["lab_results"] = records
	}

	symptoms, err := r.symptoms.ListBetween(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	if len(symptoms) > 0 {
		records := make([]map[string]any, 0, len(symptoms))
		for _, s := range symptoms {
			records = append(records, map[string]any{
				"type":     s.SymptomType,
				"severity": s.Severity,
				"notes":    s.Notes,
			})
		}
		summary["symptoms"] = records
	}

	sleep, err := r.wearables.EventsBetween(ctx, userID, domain.EventCategorySleep, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	if len(sleep) > 0 {
		records := make([]map[string]any, 0, len(sleep))
		for _, e := range sleep {
			records = append(records, map[string]any{
				"duration_minutes": e.DurationMinutes(),
				"start":            e.StartAt.Format(time.RFC3339),
				"end":              e.EndAt.Format(time.RFC3339),
			})
		}
		summary["sleep"] = records
	}

	workouts, err := r.wearables.EventsBetween(ctx, userID, domain.EventCategoryWorkout, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	if len(workouts) > 0 {
		records := make([]map[string]any, 0, len(workouts))
		for _, e := range workouts {
			workoutType := e.EventType
			if workoutType == "" {
				workoutType = "unknown"
			}
			records = append(records, map[string]any{
				"type":             workoutType,
				"duration_minutes": e.DurationMinutes(),
				"start":            e.StartAt.Format(time.RFC3339),
			})
		}
		summary["workouts"] = records
	}

	keyMetrics := []string{domain.MetricHeartRate, domain.MetricSteps, domain.MetricActiveEnergy}
	metrics := map[string]any{}
	for _, metric := range keyMetrics {
		agg, err := r.wearables.DayAggregate(ctx, userID, metric, dayStart)
		if err != nil {
			return nil, err
		}
		if agg == nil || agg.Count == 0 {
			continue
		}
		data := map[string]any{"data_points": agg.Count}
		if domain.IsCumulativeMetric(metric) {
			data["total"] = agg.Sum
		} else {
			data["avg"] = round(agg.Avg, 1)
			data["min"] = agg.Min
			data["max"] = agg.Max
		}
		metrics[metric] = data
	}
	if len(metrics) > 0 {
		summary["wearable_metrics"] = metrics
	}

	return summary, nil
}

func (r *Registry) correlateMetrics(ctx context.Context, userID string, args map[string]any) (map[string]any, error) {
	metricA := stringArg(args, "metric_a")
	metricB := stringArg(args, "metric_b")
	days := intArg(args, "days", 90)
	since := time.Now().UTC().AddDate(0, 0, -days)

	valuesA, err := r.metricDailyValues(ctx, userID, metricA, since)
	if err != nil {
		return nil, err
	}
	valuesB, err := r.metricDailyValues(ctx, userID, metricB, since)
	if err != nil {
		return nil, err
	}

	if len(valuesA) == 0 || len(valuesB) == 0 {
		return map[string]any{
			"user_id":      userID,
			"metric_a":     metricA,
			"metric_b":     metricB,
			"period_days":  days,
			"error":        "Insufficient data for one or both metrics.",
			"data_a_count": len(valuesA),
			"data_b_count": len(valuesB),
		}, nil
	}

	var common []string
	for date := range valuesA {
		if _, ok := valuesB[date]; ok {
			common = append(common, date)
		}
	}
	sort.Strings(common)

	if len(common) < minOverlapDays {
		return map[string]any{
			"user_id":          userID,
			"metric_a":         metricA,
			"metric_b":         metricB,
			"period_days":      days,
			"overlapping_days": len(common),
			"message":          "Not enough overlapping data points for meaningful correlation (need at least 3).",
		}, nil
	}

	paired := make([]map[string]any, 0, len(common))
	aVals := make([]float64, 0, len(common))
	bVals := make([]float64, 0, len(common))
	for _, date := range common {
		paired = append(paired, map[string]any{
			"date":  date,
			metricA: valuesA[date],
			metricB: valuesB[date],
		})
		aVals = append(aVals, valuesA[date])
		bVals = append(bVals, valuesB[date])
	}

	coeff, ok := pearson(aVals, bVals)
	var correlation any
	interpretation := "insufficient variance"
	if ok {
		correlation = round(coeff, 3)
		interpretation = interpret(coeff)
	}

	return map[string]any{
		"user_id":          userID,
		"metric_a":         metricA,
		"metric_b":         metricB,
		"period_days":      days,
		"overlapping_days": len(common),
		"correlation":      correlation,
		"interpretation":   interpretation,
		"paired_data":      paired,
	}, nil
}

// metricDailyValues resolves a correlation metric identifier to a per-day
// value map. symptom: and lab: prefixes route to those stores; anything
// else is treated as a wearable series code.
func (r *Registry) metricDailyValues(ctx context.Context, userID, metric string, since time.Time) (map[string]float64, error) {
	if symptomType, ok := strings.CutPrefix(metric, "symptom:"); ok {
		return r.symptoms.DailySeverity(ctx, userID, symptomType, since)
	}
	if testName, ok := strings.CutPrefix(metric, "lab:"); ok {
		return r.labs.DailyValues(ctx, userID, testName, since)
	}
	resolved := domain.ResolveMetric(metric)
	exists, err := r.wearables.MetricExists(ctx, resolved)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return r.wearables.DailyValues(ctx, userID, resolved, since)
}

// pearson computes the Pearson correlation coefficient over two equal-length
// samples. ok is false when either sample has zero variance.
func pearson(a, b []float64) (coeff float64, ok bool) {
	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		cov += (a[i] - meanA) * (b[i] - meanB)
		varA += (a[i] - meanA) * (a[i] - meanA)
		varB += (b[i] - meanB) * (b[i] - meanB)
	}
	stdA := math.Sqrt(varA / n)
	stdB := math.Sqrt(varB / n)
	if stdA == 0 || stdB == 0 {
		return 0, false
	}
	return (cov / n) / (stdA * stdB), true
}

func interpret(coeff float64) string {
	abs := math.Abs(coeff)
	switch {
	case abs >= 0.7 && coeff > 0:
		return "strong positive"
	case abs >= 0.7:
		return "strong negative"
	case abs >= 0.4 && coeff > 0:
		return "moderate positive"
	case abs >= 0.4:
		return "moderate negative"
	case abs >= 0.2 && coeff > 0:
		return "weak positive"
	case abs >= 0.2:
		return "weak negative"
	default:
		return "no significant correlation"
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}

// decimalPtr converts an optional decimal to a JSON-friendly value.
func decimalPtr(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.InexactFloat64()
}
