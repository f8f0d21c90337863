package services

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
	"github.com/atria-labs/vitals-core/internal/metrics"
)

// Default bound on tool-calling rounds within one chat request.
const defaultMaxRounds = 5

// ToolRunner executes registered tools on behalf of a user. Implemented by
// the tools registry.
type ToolRunner interface {
	// Definitions returns the tool catalog offered to the model.
	Definitions() []domain.ToolDefinition

	// Execute runs one tool and returns its serialized JSON result.
	// Failures come back as {"error": ...} payloads, never as errors.
	Execute(ctx context.Context, userID, name string, args map[string]any) string
}

// EmitFunc receives one normalized stream event. A non-nil return aborts the
// loop, used when the consumer has gone away.
type EmitFunc func(domain.StreamEvent) error

// Orchestrator drives the tool-calling loop against a chat provider and the
// tool registry, producing the normalized event sequence. It owns no side
// effects: message persistence belongs to the caller.
type Orchestrator struct {
	provider  driven.ChatProvider
	tools     ToolRunner
	maxRounds int
	logger    *slog.Logger
}

// OrchestratorConfig holds the dependencies for creating an Orchestrator
type OrchestratorConfig struct {
	Provider driven.ChatProvider
	Tools    ToolRunner
	Logger   *slog.Logger

	// MaxRounds bounds tool-calling iterations, defaulting to 5.
	MaxRounds int
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds
	}
	return &Orchestrator{
		provider:  cfg.Provider,
		tools:     cfg.Tools,
		maxRounds: maxRounds,
		logger:    logger.With("component", "orchestrator"),
	}
}

// Run executes the tool-calling loop over the given conversation. Events
// arrive on emit in order: zero or more content/tool_call/tool_result
// events, then exactly one done or error event. Tool executions are scoped
// to userID and run strictly sequentially in the order the model requested
// them.
//
// A provider failure emits a single error event and returns the underlying
// error; no further rounds are attempted. Reaching the round bound forces a
// final tools-disabled streaming call so the conversation always ends with
// a textual answer.
func (o *Orchestrator) Run(ctx context.Context, userID string, conversation []domain.Message, emit EmitFunc) error {
	conv := slices.Clone(conversation)
	defs := o.tools.Definitions()

	for round := 0; round < o.maxRounds; round++ {
		started := time.Now()
		turn, err := o.provider.Chat(ctx, conv, defs)
		metrics.ObserveProviderCall("chat", time.Since(started))
		if err != nil {
			o.logger.Error("provider call failed",
				"provider", o.provider.Name(),
				"round", round,
				"error", err)
			if emitErr := emit(domain.ErrorEvent(err.Error())); emitErr != nil {
				return emitErr
			}
			return err
		}

		if !turn.HasToolCalls() {
			if turn.Content != "" {
				if err := emit(domain.ContentEvent(turn.Content)); err != nil {
					return err
				}
			}
			metrics.ObserveChatRounds(round + 1)
			return emit(domain.DoneEvent())
		}

		conv = append(conv, turn.AssistantMessage())

		for _, tc := range turn.ToolCalls {
			if err := emit(domain.ToolCallEvent(tc.Name, tc.Arguments)); err != nil {
				return err
			}

			result := o.tools.Execute(ctx, userID, tc.Name, tc.Arguments)

			if err := emit(domain.ToolResultEvent(tc.Name, result)); err != nil {
				return err
			}

			conv = append(conv, domain.Message{
				Role:       domain.RoleTool,
				Content:    result,
				ToolCallID: tc.ID,
			})
		}
	}

	// Round bound reached with the model still requesting tools. Force a
	// terminal textual answer with tools disabled.
	o.logger.Warn("max tool rounds reached, streaming final response",
		"provider", o.provider.Name(),
		"max_rounds", o.maxRounds)

	streamStarted := time.Now()
	streamErr := o.provider.ChatStream(ctx, conv, func(delta string) error {
		if delta == "" {
			return nil
		}
		return emit(domain.ContentEvent(delta))
	})
	metrics.ObserveProviderCall("chat_stream", time.Since(streamStarted))
	if streamErr != nil {
		o.logger.Error("fallback stream failed",
			"provider", o.provider.Name(),
			"error", streamErr)
		if emitErr := emit(domain.ErrorEvent(streamErr.Error())); emitErr != nil {
			return emitErr
		}
		return streamErr
	}
	metrics.ObserveChatRounds(o.maxRounds)
	return emit(domain.DoneEvent())
}
