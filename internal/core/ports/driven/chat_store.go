package driven

import (
	"context"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// ChatStore persists chat sessions and their append-only messages.
type ChatStore interface {
	// CreateSession stores a new session.
	CreateSession(ctx context.Context, session *domain.ChatSession) error

	// GetSession retrieves a session by ID. Returns domain.ErrNotFound if absent.
	GetSession(ctx context.Context, id string) (*domain.ChatSession, error)

	// ListSessions retrieves a user's sessions, most recently active first.
	ListSessions(ctx context.Context, userID string, limit int) ([]*domain.ChatSession, error)

	// DeleteSession removes a session and its messages.
	DeleteSession(ctx context.Context, id string) error

	// SetSessionTitle stores a session title.
	SetSessionTitle(ctx context.Context, id, title string) error

	// TouchSession bumps the session's last-activity timestamp. The stored
	// value never moves backwards.
	TouchSession(ctx context.Context, id string, at time.Time) error

	// SaveMessage appends a message to its session.
	SaveMessage(ctx context.Context, msg *domain.ChatMessage) error

	// ListMessages retrieves a session's messages in creation order.
	ListMessages(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error)
}
