package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
	"github.com/atria-labs/vitals-core/internal/core/ports/driving"
)

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

// History window fed to the model per request.
const conversationHistoryLimit = 50

// Longest user message accepted, in characters.
const maxMessageLength = 10000

const systemPrompt = "You are a knowledgeable and empathetic health assistant. " +
	"You help users understand their health data from wearable devices, " +
	"lab results, and symptom tracking.\n\n" +
	"## Your Capabilities\n" +
	"You have access to tools that can query:\n" +
	"- **Lab Results**: Blood tests, hormone levels, medical markers with reference ranges\n" +
	"- **Symptom History**: User-logged symptoms with severity, triggers, and duration\n" +
	"- **Wearable Data**: Heart rate, steps, sleep, workouts, HRV, weight, and more\n" +
	"- **Daily Summaries**: Combined view of all health data for a specific date\n" +
	"- **Correlations**: Statistical relationships between any two health metrics\n\n" +
	"## Guidelines\n" +
	"1. **Always use tools** to look up real data before answering. Never guess or make up data.\n" +
	"2. **Be specific**: Include actual numbers, dates, and trends.\n" +
	"3. **Highlight important findings**: Flag values outside reference ranges.\n" +
	"4. **Be honest about limitations**: You are not a doctor. " +
	"Always recommend consulting a healthcare professional for medical decisions.\n" +
	"5. **Privacy-first**: All data is stored locally. No data leaves the user's infrastructure.\n" +
	"6. **Be concise but thorough**: Provide clear answers without unnecessary verbosity.\n\n" +
	"## Safety Disclaimer\n" +
	"You provide health data analysis and insights, NOT medical advice. " +
	"Always recommend consulting a healthcare professional for:\n" +
	"- Diagnosis or treatment decisions\n" +
	"- Medication changes\n" +
	"- Concerning symptoms or trends\n" +
	"- Values significantly outside reference ranges\n\n" +
	"## Date Awareness\n" +
	"Today's date is %s. Use this to calculate relative time periods " +
	"(e.g., 'last week', 'past month')."

// chatService implements the ChatService interface
type chatService struct {
	store        driven.ChatStore
	orchestrator *Orchestrator
	logger       *slog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(store driven.ChatStore, orchestrator *Orchestrator, logger *slog.Logger) driving.ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &chatService{
		store:        store,
		orchestrator: orchestrator,
		logger:       logger.With("component", "chat"),
	}
}

func (s *chatService) CreateSession(ctx context.Context, userID string, title *string) (*domain.ChatSession, error) {
	session := domain.NewChatSession(userID, title)
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.Info("created chat session", "session_id", session.ID, "user_id", userID)
	return session, nil
}

func (s *chatService) GetSession(ctx context.Context, userID, sessionID string) (*domain.ChatSession, error) {
	return s.ownedSession(ctx, userID, sessionID)
}

func (s *chatService) ListSessions(ctx context.Context, userID string, limit int) ([]*domain.ChatSession, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListSessions(ctx, userID, limit)
}

func (s *chatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.store.DeleteSession(ctx, sessionID)
}

func (s *chatService) ListMessages(ctx context.Context, userID, sessionID string, limit int) ([]*domain.ChatMessage, error) {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 200
	}
	return s.store.ListMessages(ctx, sessionID, limit)
}

// SendMessage persists the user message, then runs the tool-calling loop in
// a goroutine feeding the returned channel. The assistant's reply is
// persisted only after the loop reaches done; an abandoned or failed stream
// loses it, which is acceptable since no partial persistence is wanted.
func (s *chatService) SendMessage(ctx context.Context, userID, sessionID, content string) (<-chan domain.StreamEvent, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: message content is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, fmt.Errorf("%w: message content exceeds %d characters", domain.ErrInvalidInput, maxMessageLength)
	}

	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg := domain.NewChatMessage(sessionID, domain.RoleUser, content, nil)
	if err := s.store.SaveMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}
	if err := s.store.TouchSession(ctx, sessionID, userMsg.CreatedAt); err != nil {
		s.logger.Warn("failed to touch session", "session_id", sessionID, "error", err)
	}

	// First exchange names the session.
	if session.Title == nil {
		title := domain.DeriveTitle(content)
		if err := s.store.SetSessionTitle(ctx, sessionID, title); err != nil {
			s.logger.Warn("failed to set session title", "session_id", sessionID, "error", err)
		}
	}

	conversation, err := s.buildConversation(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	events := make(chan domain.StreamEvent, 16)

	go func() {
		defer close(events)

		var contentParts []string
		var toolCalls []domain.ToolCallRecord

		emit := func(ev domain.StreamEvent) error {
			switch ev.Type {
			case domain.EventContent:
				contentParts = append(contentParts, ev.Content)
			case domain.EventToolCall:
				toolCalls = append(toolCalls, domain.ToolCallRecord{
					Tool:      ev.Name,
					Arguments: ev.Arguments,
				})
			}
			select {
			case events <- ev:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := s.orchestrator.Run(ctx, userID, conversation, emit); err != nil {
			s.logger.Error("chat loop ended with error",
				"session_id", sessionID,
				"error", err)
			return
		}

		full := strings.Join(contentParts, "")
		if strings.TrimSpace(full) == "" {
			return
		}

		var metadata *domain.MessageMetadata
		if len(toolCalls) > 0 {
			metadata = &domain.MessageMetadata{ToolCalls: toolCalls}
		}
		assistantMsg := domain.NewChatMessage(sessionID, domain.RoleAssistant, full, metadata)

		// Persistence uses a fresh context: the request context may be
		// cancelled the moment the consumer reads the done event.
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.store.SaveMessage(saveCtx, assistantMsg); err != nil {
			s.logger.Error("failed to save assistant message",
				"session_id", sessionID,
				"error", err)
			return
		}
		if err := s.store.TouchSession(saveCtx, sessionID, assistantMsg.CreatedAt); err != nil {
			s.logger.Warn("failed to touch session", "session_id", sessionID, "error", err)
		}
	}()

	return events, nil
}

// buildConversation assembles the dated system prompt plus recent session
// history for the provider.
func (s *chatService) buildConversation(ctx context.Context, sessionID string) ([]domain.Message, error) {
	history, err := s.store.ListMessages(ctx, sessionID, conversationHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	today := time.Now().UTC().Format("2006-01-02")
	conversation := make([]domain.Message, 0, len(history)+1)
	conversation = append(conversation, domain.Message{
		Role:    domain.RoleSystem,
		Content: fmt.Sprintf(systemPrompt, today),
	})
	for _, msg := range history {
		conversation = append(conversation, domain.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return conversation, nil
}

// ownedSession loads a session and hides its existence from other users.
func (s *chatService) ownedSession(ctx context.Context, userID, sessionID string) (*domain.ChatSession, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return session, nil
}
