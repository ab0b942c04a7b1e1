// Package embedding turns text into vectors for the portfolio collection.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/amishk599/coldreach/internal/config"
	"github.com/amishk599/coldreach/internal/model"
)

// ErrEmptyEmbedding is returned when a backend answers without a vector.
var ErrEmptyEmbedding = errors.New("embedding backend returned an empty vector")

// Embedder is a model.Embedder that holds a client which must be released.
type Embedder interface {
	model.Embedder
	Close() error
}

// New builds the Embedder selected by cfg.Provider.
// httpClient is used by the HTTP based backends; the Gemini SDK manages its own transport.
func New(ctx context.Context, cfg config.EmbeddingsConfig, httpClient *http.Client) (Embedder, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaEmbedder(cfg.BaseURL, cfg.Model, httpClient), nil
	case "openai":
		return NewOpenAIEmbedder(cfg.APIKey, cfg.BaseURL, cfg.Model, httpClient), nil
	case "gemini":
		e, err := NewGeminiEmbedder(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("create gemini embedder: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unsupported embeddings provider: %s", cfg.Provider)
	}
}
