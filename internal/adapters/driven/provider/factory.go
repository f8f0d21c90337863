package provider

import (
	"fmt"
	"time"

	"github.com/atria-labs/vitals-core/internal/core/domain"
	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
)

// Settings selects and configures the chat backend.
type Settings struct {
	// Provider is ollama or openrouter.
	Provider string

	// Model is the chat model identifier.
	Model string

	// BaseURL overrides the backend's default endpoint.
	BaseURL string

	// APIKey authenticates hosted backends; unused for ollama.
	APIKey string

	// Timeout bounds each request.
	Timeout time.Duration
}

// New creates a chat provider from settings.
func New(settings Settings) (driven.ChatProvider, error) {
	switch settings.Provider {
	case "ollama", "":
		return NewOllamaProvider(settings.BaseURL, settings.Model, settings.Timeout)
	case "openrouter":
		return NewOpenRouterProvider(settings.APIKey, settings.Model, settings.BaseURL, settings.Timeout)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}
