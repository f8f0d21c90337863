package tools

import "github.com/atria-labs/vitals-core/internal/core/domain"

var recentLabsDef = domain.ToolDefinition{
	Name: "get_recent_labs",
	Description: "Get recent lab test results for the user. Returns blood work, hormone levels, " +
		"and other medical test results with values, units, and reference ranges. " +
		"Use this when the user asks about their lab results, blood tests, or specific medical markers.",
	Params: map[string]domain.ToolParam{
		"days": {
			Type:        domain.ParamInteger,
			Description: "Number of days to look back. Default 90.",
		},
		"test_name": {
			Type: domain.ParamString,
			Description: "Optional: filter by test name (partial match, case-insensitive). " +
				"Examples: 'HbA1c', 'cholesterol', 'vitamin D', 'iron', 'TSH'.",
		},
	},
}

var labTrendDef = domain.ToolDefinition{
	Name: "get_lab_trend",
	Description: "Get the historical trend for a specific lab test over time. Shows how a test value " +
		"has changed across multiple measurements. Useful for tracking progress or identifying " +
		"trends in markers like HbA1c, cholesterol, vitamin D, etc.",
	Params: map[string]domain.ToolParam{
		"test_name": {
			Type: domain.ParamString,
			Description: "The lab test name to track (partial match). " +
				"Examples: 'HbA1c', 'LDL', 'Vitamin D', 'Ferritin'.",
			Required: true,
		},
		"months": {
			Type:        domain.ParamInteger,
			Description: "Number of months to look back. Default 12.",
		},
	},
}

var symptomTimelineDef = domain.ToolDefinition{
	Name: "get_symptom_timeline",
	Description: "Get symptom entries logged by the user over a time period. Shows when symptoms occurred, " +
		"their severity (0-10), duration, triggers, and notes. " +
		"Use when the user asks about their symptoms, headaches, migraines, pain, mood, energy, etc.",
	Params: map[string]domain.ToolParam{
		"symptom_type": {
			Type: domain.ParamString,
			Description: "Optional: filter by symptom type (exact match). " +
				"Common types: 'migraine', 'headache', 'back_pain', 'fatigue', " +
				"'insomnia', 'nausea', 'joint_pain', 'anxiety', 'brain_fog'. " +
				"Omit to get all symptom types.",
		},
		"days": {
			Type:        domain.ParamInteger,
			Description: "Number of days to look back. Default 30.",
		},
	},
}

var wearableSummaryDef = domain.ToolDefinition{
	Name: "get_wearable_summary",
	Description: "Get wearable device data for a specific health metric. Returns daily aggregated values " +
		"with statistics. Use for questions about heart rate, steps, sleep, workouts, HRV, weight, etc.",
	Params: map[string]domain.ToolParam{
		"metric": {
			Type: domain.ParamString,
			Description: "The metric to retrieve. Options: " +
				"'heart_rate' (avg/min/max bpm), " +
				"'steps' (daily step count), " +
				"'sleep' (sleep duration and timing), " +
				"'workouts' (exercise sessions), " +
				"'resting_heart_rate' (daily resting HR), " +
				"'heart_rate_variability_sdnn' (HRV), " +
				"'weight' (body weight), " +
				"'active_energy_burned' (calories), " +
				"'blood_oxygen_saturation' (SpO2), " +
				"'distance_walking_running' (distance in meters).",
			Required: true,
		},
		"days": {
			Type:        domain.ParamInteger,
			Description: "Number of days to look back. Default 30.",
		},
	},
}

var dailySummaryDef = domain.ToolDefinition{
	Name: "get_daily_summary",
	Description: "Get a combined summary of ALL health data for a specific date. Includes wearable metrics, " +
		"lab results, symptoms, sleep, and workouts for that day. " +
		"Use when the user asks about a specific day or wants an overview.",
	Params: map[string]domain.ToolParam{
		"date": {
			Type:        domain.ParamString,
			Description: "Date in YYYY-MM-DD format. Example: '2026-02-20'.",
			Required:    true,
		},
	},
}

var correlateMetricsDef = domain.ToolDefinition{
	Name: "correlate_metrics",
	Description: "Find correlations between two health metrics over time. Calculates Pearson correlation " +
		"coefficient and provides interpretation. Useful for finding patterns like " +
		"'does poor sleep correlate with more headaches?' or 'does exercise affect my HRV?'. " +
		"Prefix symptom types with 'symptom:' (e.g., 'symptom:migraine') and lab tests with " +
		"'lab:' (e.g., 'lab:HbA1c'). Wearable metrics use their code directly (e.g., 'heart_rate').",
	Params: map[string]domain.ToolParam{
		"metric_a": {
			Type: domain.ParamString,
			Description: "First metric. Examples: 'heart_rate', 'steps', 'symptom:migraine', " +
				"'symptom:energy', 'lab:HbA1c'.",
			Required: true,
		},
		"metric_b": {
			Type:        domain.ParamString,
			Description: "Second metric. Same format as metric_a.",
			Required:    true,
		},
		"days": {
			Type:        domain.ParamInteger,
			Description: "Number of days to look back. Default 90.",
		},
	},
}
