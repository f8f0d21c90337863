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

// Ensure OllamaProvider implements ChatProvider
var _ driven.ChatProvider = (*OllamaProvider)(nil)

// OllamaProvider implements ChatProvider against a local Ollama server.
// Streaming responses arrive as newline-delimited JSON chunks.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaProvider creates a new Ollama chat client
func NewOllamaProvider(baseURL, model string, timeout time.Duration) (*OllamaProvider, error) {
	if model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Name identifies the provider variant
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// ollamaMessage is the Ollama wire format for one conversation entry. Tool
// results are fed back as plain tool-role messages; Ollama does not tag
// calls with IDs.
type ollamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
}

type ollamaToolCall struct {
	Function ollamaFunction `json:"function"`
}

type ollamaFunction struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ollamaChatRequest is the request body for POST /api/chat
type ollamaChatRequest struct {
	Model    string           `json:"model"`
	Messages []ollamaMessage  `json:"messages"`
	Stream   bool             `json:"stream"`
	Tools    []map[string]any `json:"tools,omitempty"`
}

// ollamaChatResponse is one non-streaming response, or one streaming chunk.
type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

// Chat sends a single non-streaming request.
func (p *OllamaProvider) Chat(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (*domain.AssistantTurn, error) {
	reqBody := ollamaChatRequest{
		Model:    p.model,
		Messages: toOllamaMessages(messages),
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
		return nil, fmt.Errorf("failed to read ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var chatResp ollamaChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse ollama response: %w", err)
	}
	if chatResp.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", chatResp.Error)
	}

	turn := &domain.AssistantTurn{Content: chatResp.Message.Content}
	for _, tc := range chatResp.Message.ToolCalls {
		args := tc.Function.Arguments
		if args == nil {
			args = map[string]any{}
		}
		turn.ToolCalls = append(turn.ToolCalls, domain.ToolCall{
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	return turn, nil
}

// ChatStream sends a streaming request and invokes fn per content delta.
func (p *OllamaProvider) ChatStream(ctx context.Context, messages []domain.Message, fn func(delta string) error) error {
	reqBody := ollamaChatRequest{
		Model:    p.model,
		Messages: toOllamaMessages(messages),
		Stream:   true,
	}

	resp, err := p.doRequest(ctx, reqBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk ollamaChatResponse
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return fmt.Errorf("failed to parse ollama chunk: %w", err)
		}
		if chunk.Error != "" {
			return fmt.Errorf("ollama error: %s", chunk.Error)
		}
		if chunk.Message.Content != "" {
			if err := fn(chunk.Message.Content); err != nil {
				return err
			}
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ollama stream failed: %w", err)
	}
	return nil
}

// HealthCheck probes GET /api/tags and reports whether the configured model
// is pulled.
func (p *OllamaProvider) HealthCheck(ctx context.Context) domain.ServiceHealth {
	health := domain.ServiceHealth{Host: p.baseURL, Model: p.model}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		health.Status = domain.HealthError
		health.Error = err.Error()
		return health
	}

	resp, err := p.client.Do(req)
	if err != nil {
		health.Status = domain.HealthUnreachable
		health.Error = fmt.Sprintf("cannot connect to ollama at %s", p.baseURL)
		return health
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		health.Status = domain.HealthError
		health.Error = fmt.Sprintf("ollama returned status %d", resp.StatusCode)
		return health
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		health.Status = domain.HealthError
		health.Error = err.Error()
		return health
	}

	health.Status = domain.HealthConnected
	for _, m := range tags.Models {
		if m.Name == p.model {
			return health
		}
	}
	health.Error = fmt.Sprintf("model %s not pulled", p.model)
	return health
}

func (p *OllamaProvider) doRequest(ctx context.Context, reqBody ollamaChatRequest) (*http.Response, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	return resp, nil
}

func toOllamaMessages(messages []domain.Message) []ollamaMessage {
	out := make([]ollamaMessage, 0, len(messages))
	for _, m := range messages {
		msg := ollamaMessage{Role: m.Role, Content: m.Content}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, ollamaToolCall{
				Function: ollamaFunction{Name: tc.Name, Arguments: tc.Arguments},
			})
		}
		out = append(out, msg)
	}
	return out
}

func toolSchemas(tools []domain.ToolDefinition) []map[string]any {
	if len(tools) == 0 {
		return nil
	}
	schemas := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		schemas = append(schemas, t.Schema())
	}
	return schemas
}
