package driven

import (
	"context"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// ChatProvider is the uniform interface to one conversational-model backend.
// Two implementations exist: a local-model client speaking the Ollama chat
// protocol and a hosted-gateway client speaking the OpenAI-style
// /chat/completions protocol. Callers never branch on which one they hold.
type ChatProvider interface {
	// Name identifies the provider variant (for logs and health reports).
	Name() string

	// Chat sends a single non-streaming request. tools may be nil to
	// disable tool calling for the request. A transport failure or a
	// malformed response surfaces as an error; the client never retries
	// internally.
	Chat(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (*domain.AssistantTurn, error)

	// ChatStream sends a streaming request without tools and invokes fn
	// for every content delta until the backend signals completion. A
	// non-nil error from fn aborts the stream.
	ChatStream(ctx context.Context, messages []domain.Message, fn func(delta string) error) error

	// HealthCheck probes connectivity. It never returns an error;
	// failures are folded into the report.
	HealthCheck(ctx context.Context) domain.ServiceHealth
}
