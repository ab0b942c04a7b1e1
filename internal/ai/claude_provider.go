package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/amishk599/coldreach/internal/config"
)

var _ LLMProvider = (*ClaudeProvider)(nil)

// ClaudeProvider calls the Anthropic Messages API.
type ClaudeProvider struct {
	client      *anthropic.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewClaudeProvider creates a provider from cfg.
func NewClaudeProvider(cfg config.LLMConfig, httpClient *http.Client) *ClaudeProvider {
	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, anthropic.WithHTTPClient(httpClient))
	}
	return &ClaudeProvider{
		client:      anthropic.NewClient(cfg.APIKey, opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Complete sends prompt as a user message and joins the text blocks of the reply.
func (p *ClaudeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	temperature := p.temperature
	resp, err := p.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(p.model),
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(prompt)},
		MaxTokens:   p.maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	var b strings.Builder
	for _, c := range resp.Content {
		if c.Type == anthropic.MessagesContentTypeText && c.Text != nil {
			b.WriteString(*c.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("llm returned no text content")
	}
	return b.String(), nil
}
