package mocks

import (
	"context"
	"sync"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// MockChatProvider is a mock implementation of ChatProvider for testing.
// Without custom Fns it replays scripted turns in order, which is enough
// to drive a multi-round tool-calling conversation.
type MockChatProvider struct {
	mu sync.Mutex

	NameFn        func() string
	ChatFn        func(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (*domain.AssistantTurn, error)
	ChatStreamFn  func(ctx context.Context, messages []domain.Message, fn func(delta string) error) error
	HealthCheckFn func(ctx context.Context) domain.ServiceHealth

	// Turns are consumed one per Chat call when ChatFn is unset.
	Turns []*domain.AssistantTurn
	// StreamDeltas are emitted by ChatStream when ChatStreamFn is unset.
	StreamDeltas []string

	// ChatCalls records the message slices passed to Chat.
	ChatCalls [][]domain.Message
	// ToolsSeen records the tool definitions passed to each Chat call.
	ToolsSeen [][]domain.ToolDefinition
	// StreamCalls counts ChatStream invocations.
	StreamCalls int
}

func NewMockChatProvider() *MockChatProvider {
	return &MockChatProvider{}
}

func (m *MockChatProvider) Name() string {
	if m.NameFn != nil {
		return m.NameFn()
	}
	return "mock"
}

func (m *MockChatProvider) Chat(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (*domain.AssistantTurn, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, messages)
	m.ToolsSeen = append(m.ToolsSeen, tools)
	m.mu.Unlock()

	if m.ChatFn != nil {
		return m.ChatFn(ctx, messages, tools)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Turns) == 0 {
		return &domain.AssistantTurn{}, nil
	}
	turn := m.Turns[0]
	m.Turns = m.Turns[1:]
	return turn, nil
}

func (m *MockChatProvider) ChatStream(ctx context.Context, messages []domain.Message, fn func(delta string) error) error {
	m.mu.Lock()
	m.StreamCalls++
	m.mu.Unlock()

	if m.ChatStreamFn != nil {
		return m.ChatStreamFn(ctx, messages, fn)
	}
	for _, delta := range m.StreamDeltas {
		if err := fn(delta); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockChatProvider) HealthCheck(ctx context.Context) domain.ServiceHealth {
	if m.HealthCheckFn != nil {
		return m.HealthCheckFn(ctx)
	}
	return domain.ServiceHealth{Status: domain.HealthConnected}
}
