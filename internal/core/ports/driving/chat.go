package driving

import (
	"context"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// ChatService manages chat sessions and processes messages through the
// tool-calling orchestrator.
type ChatService interface {
	// CreateSession creates a session, optionally titled.
	CreateSession(ctx context.Context, userID string, title *string) (*domain.ChatSession, error)

	// GetSession retrieves a session owned by userID.
	GetSession(ctx context.Context, userID, sessionID string) (*domain.ChatSession, error)

	// ListSessions retrieves a user's sessions, most recently active first.
	ListSessions(ctx context.Context, userID string, limit int) ([]*domain.ChatSession, error)

	// DeleteSession removes a session and its messages.
	DeleteSession(ctx context.Context, userID, sessionID string) error

	// ListMessages retrieves a session's messages in creation order.
	ListMessages(ctx context.Context, userID, sessionID string, limit int) ([]*domain.ChatMessage, error)

	// SendMessage persists the user's message, runs the tool-calling loop
	// and returns the normalized event stream. The channel closes after
	// the terminal done or error event, or when ctx is cancelled. The
	// user message is durable before the stream starts; the assistant's
	// reply is persisted only if the loop runs to its terminus.
	SendMessage(ctx context.Context, userID, sessionID, content string) (<-chan domain.StreamEvent, error)
}
