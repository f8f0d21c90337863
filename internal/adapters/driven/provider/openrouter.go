package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
)

// Ensure OpenRouterProvider implements ChatProvider
var _ driven.ChatProvider = (*OpenRouterProvider)(nil)

// OpenRouterProvider implements ChatProvider against the OpenAI-compatible
// /chat/completions endpoint exposed by OpenRouter. Streaming responses
// arrive as SSE data frames terminated by [DONE].
type OpenRouterProvider struct {
	baseURL string
	apiKey  string
	model   string
	referer string
	client  *http.Client
}

// NewOpenRouterProvider creates a new OpenRouter chat client
func NewOpenRouterProvider(apiKey, model, baseURL string, timeout time.Duration) (*OpenRouterProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("OpenRouter model is required")
	}
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenRouterProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		referer: "http://localhost:3000",
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Name identifies the provider variant
func (p *OpenRouterProvider) Name() string {
	return "openrouter"
}

// openAIMessage is the OpenAI-style wire format for one conversation entry.
// Tool results carry the tool_call_id that links them to the assistant's
// request; tool-call arguments travel as a JSON-encoded string.
type openAIMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []openAIToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openAIToolCall struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Function openAIFunction `json:"function"`
}

type openAIFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// chatCompletionRequest is the request body for POST /chat/completions
type chatCompletionRequest struct {
	Model    string           `json:"model"`
	Messages []openAIMessage  `json:"messages"`
	Stream   bool             `json:"stream"`
	Tools    []map[string]any `json:"tools,omitempty"`
}

// chatCompletionResponse is the non-streaming response body.
type chatCompletionResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// streamChunk is one SSE data frame of a streaming response.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Chat sends a single non-streaming request.
func (p *OpenRouterProvider) Chat(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (*domain.AssistantTurn, error) {
	reqBody := chatCompletionRequest{
		Model:    p.model,
		Messages: toOpenAIMessages(messages),
		Stream:   false,
		Tools:    toolSchemas(tools),
	}

	resp, err := p.doRequest(ctx, reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenRouter response: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if completion.Error != nil {
		return nil, fmt.Errorf("OpenRouter API error: %s", completion.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenRouter returned status %d", resp.StatusCode)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("OpenRouter returned no choices")
	}

	msg := completion.Choices[0].Message
	turn := &domain.AssistantTurn{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			// A model occasionally emits unparseable arguments; the
			// dispatcher rejects the empty map against the tool schema.
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		}
		turn.ToolCalls = append(turn.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	return turn, nil
}

// ChatStream sends a streaming request and invokes fn per content delta.
func (p *OpenRouterProvider) ChatStream(ctx context.Context, messages []domain.Message, fn func(delta string) error) error {
	reqBody := chatCompletionRequest{
		Model:    p.model,
		Messages: toOpenAIMessages(messages),
		Stream:   true,
	}

	resp, err := p.doRequest(ctx, reqBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("OpenRouter returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return nil
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Keep-alive or malformed frame; skip it.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			if err := fn(content); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("OpenRouter stream failed: %w", err)
	}
	return nil
}

// HealthCheck probes GET /models.
func (p *OpenRouterProvider) HealthCheck(ctx context.Context) domain.ServiceHealth {
	health := domain.ServiceHealth{Host: p.baseURL, Model: p.model}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		health.Status = domain.HealthError
		health.Error = err.Error()
		return health
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		health.Status = domain.HealthUnreachable
		health.Error = fmt.Sprintf("cannot connect to OpenRouter at %s", p.baseURL)
		return health
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		health.Status = domain.HealthError
		health.Error = fmt.Sprintf("OpenRouter returned status %d", resp.StatusCode)
		return health
	}
	health.Status = domain.HealthConnected
	return health
}

func (p *OpenRouterProvider) doRequest(ctx context.Context, reqBody chatCompletionRequest) (*http.Response, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("HTTP-Referer", p.referer)
	req.Header.Set("X-Title", "Health Assistant")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OpenRouter request failed: %w", err)
	}
	return resp, nil
}

func toOpenAIMessages(messages []domain.Message) []openAIMessage {
	out := make([]openAIMessage, 0, len(messages))
	for _, m := range messages {
		msg := openAIMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
		for _, tc := range m.ToolCalls {
			args, err := json.Marshal(tc.Arguments)
			if err != nil {
				args = []byte("{}")
			}
			msg.ToolCalls = append(msg.ToolCalls, openAIToolCall{
				ID:       tc.ID,
				Type:     "function",
				Function: openAIFunction{Name: tc.Name, Arguments: string(args)},
			})
		}
		out = append(out, msg)
	}
	return out
}
