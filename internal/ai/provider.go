package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/amishk599/coldreach/internal/config"
)

// LLMProvider sends a prompt to an LLM and returns the raw text response.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewProvider builds the provider selected by cfg.Provider. The returned
// handle is meant to be created once per process and shared.
// Ollama is reached through its OpenAI-compatible /v1 endpoint.
func NewProvider(ctx context.Context, cfg config.LLMConfig, httpClient *http.Client) (LLMProvider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg, httpClient), nil
	case "ollama":
		ollama := cfg
		ollama.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		if !strings.HasSuffix(ollama.BaseURL, "/v1") {
			ollama.BaseURL += "/v1"
		}
		if ollama.APIKey == "" {
			ollama.APIKey = "ollama" // ignored by the server, required by the client
		}
		return NewOpenAIProvider(ollama, httpClient), nil
	case "claude":
		return NewClaudeProvider(cfg, httpClient), nil
	case "gemini":
		p, err := NewGeminiProvider(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create gemini provider: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
