package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/amishk599/coldreach/internal/config"
)

var _ LLMProvider = (*GeminiProvider)(nil)

// GeminiProvider calls a Gemini generative model.
type GeminiProvider struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewGeminiProvider creates a Gemini client authenticated with cfg.APIKey.
// Close must be called to release it.
func NewGeminiProvider(ctx context.Context, cfg config.LLMConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}
	gm := client.GenerativeModel(cfg.Model)
	gm.SetTemperature(cfg.Temperature)
	if cfg.MaxTokens > 0 {
		gm.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}
	return &GeminiProvider{
		client:  client,
		model:   gm,
		timeout: cfg.Timeout,
	}, nil
}

// Complete generates content for prompt and joins the text parts of the first candidate.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("llm returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("llm returned no text content")
	}
	return b.String(), nil
}

// Close releases the underlying client.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}
