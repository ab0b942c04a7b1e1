package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/amishk599/coldreach/internal/config"
	"github.com/amishk599/coldreach/internal/model"
)

// FallbackMessage is the email body used when the model call fails.
const FallbackMessage = "Unable to generate email due to an error. Please try again with a shorter job description or fewer links."

var errEmptyCompletion = errors.New("llm returned an empty email")

// EmailWriter drafts outreach emails from a job description and portfolio links.
type EmailWriter struct {
	provider LLMProvider
	tmpl     *template.Template
	sender   config.SenderConfig
}

// NewEmailWriter creates a writer that renders tmpl for sender and sends it to provider.
func NewEmailWriter(provider LLMProvider, tmpl *template.Template, sender config.SenderConfig) *EmailWriter {
	return &EmailWriter{
		provider: provider,
		tmpl:     tmpl,
		sender:   sender,
	}
}

// Prompt renders the prompt without calling the model.
func (w *EmailWriter) Prompt(description string, links []string) (string, error) {
	var buf bytes.Buffer
	if err := w.tmpl.Execute(&buf, PromptData{
		JobDescription: description,
		LinkList:       FormatLinks(links),
		SenderName:     w.sender.Name,
		SenderRole:     w.sender.Role,
		Company:        w.sender.Company,
		Pitch:          w.sender.Pitch,
	}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// Write drafts an email. When the model call fails, the returned Email holds
// FallbackMessage with Fallback set, alongside the wrapped error.
func (w *EmailWriter) Write(ctx context.Context, description string, links []string) (model.Email, error) {
	prompt, err := w.Prompt(description, links)
	if err != nil {
		return model.Email{}, err
	}

	raw, err := w.provider.Complete(ctx, prompt)
	if err == nil {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			err = errEmptyCompletion
		}
	}
	if err != nil {
		return model.Email{Body: FallbackMessage, Fallback: true}, fmt.Errorf("generate email: %w", err)
	}

	return model.Email{Body: raw}, nil
}
