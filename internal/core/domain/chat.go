package domain

import (
	"strings"
	"time"
)

// Maximum length of an auto-derived session title before truncation.
const titleMaxLen = 50

// ChatSession groups a conversation between a user and the assistant.
type ChatSession struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Title          *string   `json:"title,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// NewChatSession creates a session, optionally with an explicit title.
func NewChatSession(userID string, title *string) *ChatSession {
	now := time.Now().UTC()
	return &ChatSession{
		ID:             GenerateID(),
		UserID:         userID,
		Title:          title,
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// Touch bumps the last-activity timestamp. The timestamp never moves
// backwards.
func (s *ChatSession) Touch(t time.Time) {
	if t.After(s.LastActivityAt) {
		s.LastActivityAt = t
	}
}

// DeriveTitle builds a session title from the first user message: the first
// 50 characters, with an ellipsis marker when truncated.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleMaxLen {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(string(runes[:titleMaxLen])) + "..."
}

// Message roles stored in a chat session.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// MessageMetadata captures structured details about an assistant turn, such
// as which tools were invoked and in what order.
type MessageMetadata struct {
	ToolCalls []ToolCallRecord `json:"tool_calls,omitempty"`
}

// ToolCallRecord is one tool invocation recorded in message metadata.
type ToolCallRecord struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ChatMessage is one turn in a session. Messages are append-only and ordered
// by creation time.
type ChatMessage struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewChatMessage creates a message for a session.
func NewChatMessage(sessionID, role, content string, metadata *MessageMetadata) *ChatMessage {
	return &ChatMessage{
		ID:        GenerateID(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
}
