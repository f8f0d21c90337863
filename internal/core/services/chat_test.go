package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven/mocks"
)

func newChatFixture(provider *mocks.MockChatProvider) (*mocks.MockChatStore, *chatService) {
	store := mocks.NewMockChatStore()
	orchestrator := NewOrchestrator(OrchestratorConfig{Provider: provider, Tools: &stubToolRunner{}})
	svc := NewChatService(store, orchestrator, nil).(*chatService)
	return store, svc
}

func drain(ch <-chan domain.StreamEvent) []domain.StreamEvent {
	var events []domain.StreamEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestChatService_CreateAndGetSession(t *testing.T) {
	_, svc := newChatFixture(mocks.NewMockChatProvider())
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if session.Title != nil {
		t.Error("expected untitled session")
	}

	got, err := svc.GetSession(ctx, "user-1", session.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.ID != session.ID {
		t.Errorf("expected session %s, got %s", session.ID, got.ID)
	}
}

func TestChatService_GetSession_WrongUser(t *testing.T) {
	_, svc := newChatFixture(mocks.NewMockChatProvider())
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	// Another user's session must look like it does not exist.
	if _, err := svc.GetSession(ctx, "user-2", session.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := svc.DeleteSession(ctx, "user-2", session.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestChatService_SendMessage_PersistsBothSides(t *testing.T) {
	provider := mocks.NewMockChatProvider()
	provider.Turns = []*domain.AssistantTurn{
		{ToolCalls: []domain.ToolCall{
			{Name: "get_recent_labs", Arguments: map[string]any{"days": 30}},
		}},
		{Content: "Your labs look fine."},
	}
	store, svc := newChatFixture(provider)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	events, err := svc.SendMessage(ctx, "user-1", session.ID, "how are my labs?")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	collected := drain(events)

	if collected[len(collected)-1].Type != domain.EventDone {
		t.Errorf("expected terminal done, got %s", collected[len(collected)-1].Type)
	}

	msgs, err := store.ListMessages(ctx, session.ID, 0)
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected user + assistant messages, got %d", len(msgs))
	}
	if msgs[0].Role != domain.RoleUser || msgs[0].Content != "how are my labs?" {
		t.Errorf("unexpected user message: %+v", msgs[0])
	}
	if msgs[1].Role != domain.RoleAssistant || msgs[1].Content != "Your labs look fine." {
		t.Errorf("unexpected assistant message: %+v", msgs[1])
	}
	if msgs[1].Metadata == nil || len(msgs[1].Metadata.ToolCalls) != 1 {
		t.Fatal("expected tool call metadata on assistant message")
	}
	if msgs[1].Metadata.ToolCalls[0].Tool != "get_recent_labs" {
		t.Errorf("unexpected metadata tool: %s", msgs[1].Metadata.ToolCalls[0].Tool)
	}
}

func TestChatService_SendMessage_RejectsInvalidContent(t *testing.T) {
	store, svc := newChatFixture(mocks.NewMockChatProvider())
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := svc.SendMessage(ctx, "user-1", session.ID, content); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("content %q: expected ErrInvalidInput, got %v", content, err)
		}
	}

	long := strings.Repeat("a", maxMessageLength+1)
	if _, err := svc.SendMessage(ctx, "user-1", session.ID, long); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for oversized content, got %v", err)
	}

	// Rejected messages must leave no trace in the session.
	msgs, err := store.ListMessages(ctx, session.ID, 0)
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected no persisted messages, got %d", len(msgs))
	}
}

func TestChatService_SendMessage_DerivesTitle(t *testing.T) {
	provider := mocks.NewMockChatProvider()
	provider.Turns = []*domain.AssistantTurn{{Content: "hi"}}
	store, svc := newChatFixture(provider)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	long := strings.Repeat("x", 60)
	events, err := svc.SendMessage(ctx, "user-1", session.ID, long)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	drain(events)

	got, err := store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.Title == nil {
		t.Fatal("expected derived title")
	}
	if *got.Title != strings.Repeat("x", 50)+"..." {
		t.Errorf("unexpected title: %q", *got.Title)
	}
}

func TestChatService_SendMessage_KeepsExplicitTitle(t *testing.T) {
	provider := mocks.NewMockChatProvider()
	provider.Turns = []*domain.AssistantTurn{{Content: "hi"}}
	store, svc := newChatFixture(provider)
	ctx := context.Background()

	title := "Sleep questions"
	session, err := svc.CreateSession(ctx, "user-1", &title)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	events, err := svc.SendMessage(ctx, "user-1", session.ID, "ignore this content")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	drain(events)

	got, _ := store.GetSession(ctx, session.ID)
	if got.Title == nil || *got.Title != "Sleep questions" {
		t.Errorf("explicit title was overwritten: %v", got.Title)
	}
}

func TestChatService_SendMessage_ProviderError(t *testing.T) {
	provider := mocks.NewMockChatProvider()
	provider.ChatFn = func(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (*domain.AssistantTurn, error) {
		return nil, errors.New("backend down")
	}
	store, svc := newChatFixture(provider)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	events, err := svc.SendMessage(ctx, "user-1", session.ID, "hello")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	collected := drain(events)

	if len(collected) != 1 || collected[0].Type != domain.EventError {
		t.Fatalf("expected single error event, got %+v", collected)
	}

	// The user message is durable, the assistant's reply is not.
	msgs, _ := store.ListMessages(ctx, session.ID, 0)
	if len(msgs) != 1 || msgs[0].Role != domain.RoleUser {
		t.Errorf("expected only the user message persisted, got %d messages", len(msgs))
	}
}

func TestChatService_SendMessage_UnknownSession(t *testing.T) {
	_, svc := newChatFixture(mocks.NewMockChatProvider())

	if _, err := svc.SendMessage(context.Background(), "user-1", "missing", "hi"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestChatService_SendMessage_SystemPromptAndHistory(t *testing.T) {
	provider := mocks.NewMockChatProvider()
	provider.Turns = []*domain.AssistantTurn{{Content: "first"}, {Content: "second"}}
	_, svc := newChatFixture(provider)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	events, err := svc.SendMessage(ctx, "user-1", session.ID, "one")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	drain(events)

	events, err = svc.SendMessage(ctx, "user-1", session.ID, "two")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	drain(events)

	if len(provider.ChatCalls) != 2 {
		t.Fatalf("expected 2 provider calls, got %d", len(provider.ChatCalls))
	}
	second := provider.ChatCalls[1]
	if second[0].Role != domain.RoleSystem {
		t.Errorf("expected system prompt first, got role %s", second[0].Role)
	}
	if !strings.Contains(second[0].Content, "health assistant") {
		t.Error("system prompt content missing")
	}
	// system + user one + assistant first + user two
	if len(second) != 4 {
		t.Errorf("expected 4 conversation messages, got %d", len(second))
	}
	if second[len(second)-1].Content != "two" {
		t.Errorf("expected latest user message last, got %q", second[len(second)-1].Content)
	}
}

func TestChatService_ListSessions_MostRecentFirst(t *testing.T) {
	provider := mocks.NewMockChatProvider()
	provider.Turns = []*domain.AssistantTurn{{Content: "reply"}}
	_, svc := newChatFixture(provider)
	ctx := context.Background()

	first, _ := svc.CreateSession(ctx, "user-1", nil)
	second, _ := svc.CreateSession(ctx, "user-1", nil)

	// Activity on the first session should move it to the front.
	events, err := svc.SendMessage(ctx, "user-1", first.ID, "hello")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	drain(events)

	sessions, err := svc.ListSessions(ctx, "user-1", 0)
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != first.ID {
		t.Errorf("expected most recently active session first, got %s (want %s, other %s)",
			sessions[0].ID, first.ID, second.ID)
	}
}
