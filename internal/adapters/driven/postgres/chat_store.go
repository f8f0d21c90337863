package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore implements driven.ChatStore using PostgreSQL
type ChatStore struct {
	db *DB
}

// NewChatStore creates a new ChatStore
func NewChatStore(db *DB) *ChatStore {
	return &ChatStore{db: db}
}

// CreateSession stores a new session
func (s *ChatStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, user_id, title, created_at, last_activity_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		NullString(session.Title),
		session.CreatedAt,
		session.LastActivityAt,
	)
	return err
}

// GetSession retrieves a session by ID
func (s *ChatStore) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	query := `
		SELECT id, user_id, title, created_at, last_activity_at
		FROM chat_sessions
		WHERE id = $1
	`

	var session domain.ChatSession
	var title sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&title,
		&session.CreatedAt,
		&session.LastActivityAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	session.Title = StringPtr(title)
	return &session, nil
}

// ListSessions retrieves a user's sessions, most recently active first
func (s *ChatStore) ListSessions(ctx context.Context, userID string, limit int) ([]*domain.ChatSession, error) {
	query := `
		SELECT id, user_id, title, created_at, last_activity_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY last_activity_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.ChatSession
	for rows.Next() {
		var session domain.ChatSession
		var title sql.NullString
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&title,
			&session.CreatedAt,
			&session.LastActivityAt,
		); err != nil {
			return nil, err
		}
		session.Title = StringPtr(title)
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session; messages cascade
func (s *ChatStore) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// SetSessionTitle stores a session title
func (s *ChatStore) SetSessionTitle(ctx context.Context, id, title string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE chat_sessions SET title = $2 WHERE id = $1`, id, title)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// TouchSession bumps the last-activity timestamp, never backwards
func (s *ChatStore) TouchSession(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE chat_sessions SET last_activity_at = GREATEST(last_activity_at, $2) WHERE id = $1`,
		id, at)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// SaveMessage appends a message to its session
func (s *ChatStore) SaveMessage(ctx context.Context, msg *domain.ChatMessage) error {
	var metadata any
	if msg.Metadata != nil {
		encoded, err := json.Marshal(msg.Metadata)
		if err != nil {
			return err
		}
		metadata = encoded
	}

	query := `
		INSERT INTO chat_messages (id, session_id, role, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.SessionID,
		msg.Role,
		msg.Content,
		metadata,
		msg.CreatedAt,
	)
	return err
}

// ListMessages retrieves a session's messages in creation order
func (s *ChatStore) ListMessages(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, session_id, role, content, metadata, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		var metadata []byte
		if err := rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&msg.Role,
			&msg.Content,
			&metadata,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			var meta domain.MessageMetadata
			if err := json.Unmarshal(metadata, &meta); err != nil {
				return nil, err
			}
			msg.Metadata = &meta
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}
