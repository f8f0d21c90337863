package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// MockChatStore is an in-memory ChatStore for testing
type MockChatStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ChatSession
	messages map[string][]*domain.ChatMessage
}

// NewMockChatStore creates a new MockChatStore
func NewMockChatStore() *MockChatStore {
	return &MockChatStore{
		sessions: make(map[string]*domain.ChatSession),
		messages: make(map[string][]*domain.ChatMessage),
	}
}

func (m *MockChatStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *MockChatStore) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *MockChatStore) ListSessions(ctx context.Context, userID string, limit int) ([]*domain.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ChatSession
	for _, session := range m.sessions {
		if session.UserID == userID {
			copied := *session
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivityAt.After(out[j].LastActivityAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockChatStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.sessions, id)
	delete(m.messages, id)
	return nil
}

func (m *MockChatStore) SetSessionTitle(ctx context.Context, id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	session.Title = &title
	return nil
}

func (m *MockChatStore) TouchSession(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	session.Touch(at)
	return nil
}

func (m *MockChatStore) SaveMessage(ctx context.Context, msg *domain.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *msg
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], &copied)
	return nil
}

func (m *MockChatStore) ListMessages(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.messages[sessionID]
	out := make([]*domain.ChatMessage, 0, len(msgs))
	for _, msg := range msgs {
		copied := *msg
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
