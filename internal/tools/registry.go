package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
	"github.com/atria-labs/vitals-core/internal/metrics"
)

// Registry is the catalog of read-only health-data tools callable by the
// conversational model, plus the dispatcher that executes them. Every
// execution is scoped to the requesting user regardless of what the model's
// arguments contain.
type Registry struct {
	labs      driven.LabStore
	symptoms  driven.SymptomStore
	wearables driven.WearableStore
	logger    *slog.Logger

	defs     []domain.ToolDefinition
	handlers map[string]handlerFunc
}

type handlerFunc func(ctx context.Context, userID string, args map[string]any) (map[string]any, error)

// RegistryConfig holds the dependencies for creating a Registry
type RegistryConfig struct {
	LabStore      driven.LabStore
	SymptomStore  driven.SymptomStore
	WearableStore driven.WearableStore
	Logger        *slog.Logger
}

// NewRegistry creates a tool registry with all six health tools registered.
func NewRegistry(cfg RegistryConfig) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		labs:      cfg.LabStore,
		symptoms:  cfg.SymptomStore,
		wearables: cfg.WearableStore,
		logger:    logger.With("component", "tools"),
		handlers:  make(map[string]handlerFunc),
	}

	r.register(recentLabsDef, r.recentLabs)
	r.register(labTrendDef, r.labTrend)
	r.register(symptomTimelineDef, r.symptomTimeline)
	r.register(wearableSummaryDef, r.wearableSummary)
	r.register(dailySummaryDef, r.dailySummary)
	r.register(correlateMetricsDef, r.correlateMetrics)

	return r
}

func (r *Registry) register(def domain.ToolDefinition, fn handlerFunc) {
	r.defs = append(r.defs, def)
	r.handlers[def.Name] = fn
}

// Definitions returns the immutable tool catalog in registration order.
func (r *Registry) Definitions() []domain.ToolDefinition {
	return r.defs
}

// Execute runs a tool by name for the given user and returns the result as
// a JSON string. Unknown tools and query failures come back as structured
// {"error": ...} payloads so the conversational loop can continue.
func (r *Registry) Execute(ctx context.Context, userID, name string, args map[string]any) string {
	fn, ok := r.handlers[name]
	if !ok {
		r.logger.Warn("unknown tool requested", "tool", name)
		metrics.RecordToolCall(name, "unknown")
		return errorResult(fmt.Sprintf("Unknown tool: %s", name))
	}

	def, _ := r.definition(name)
	validated, err := def.ValidateArgs(args)
	if err != nil {
		r.logger.Warn("tool arguments rejected", "tool", name, "error", err)
		metrics.RecordToolCall(name, "invalid_args")
		return errorResult(fmt.Sprintf("Invalid arguments: %v", err))
	}

	r.logger.Info("executing tool", "tool", name, "user_id", userID)

	result, err := fn(ctx, userID, validated)
	if err != nil {
		r.logger.Error("tool execution failed", "tool", name, "error", err)
		metrics.RecordToolCall(name, "error")
		return errorResult(fmt.Sprintf("Tool execution failed: %v", err))
	}

	payload, err := json.Marshal(result)
	if err != nil {
		metrics.RecordToolCall(name, "error")
		return errorResult(fmt.Sprintf("Tool execution failed: %v", err))
	}
	metrics.RecordToolCall(name, "ok")
	return string(payload)
}

func (r *Registry) definition(name string) (domain.ToolDefinition, bool) {
	for _, d := range r.defs {
		if d.Name == name {
			return d, true
		}
	}
	return domain.ToolDefinition{}, false
}

func errorResult(msg string) string {
	payload, _ := json.Marshal(map[string]string{"error": msg})
	return string(payload)
}

// intArg reads a validated integer argument, falling back when absent.
func intArg(args map[string]any, name string, fallback int) int {
	if v, ok := args[name].(int); ok {
		return v
	}
	return fallback
}

// stringArg reads a validated string argument, empty when absent.
func stringArg(args map[string]any, name string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return ""
}
