package ai

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amishk599/coldreach/internal/config"
)

// mockProvider records the prompt and returns a canned response.
type mockProvider struct {
	response string
	err      error
	prompt   string
	calls    int
}

func (m *mockProvider) Complete(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.prompt = prompt
	return m.response, m.err
}

var testSender = config.SenderConfig{
	Name:    "dana",
	Role:    "account executive",
	Company: "Acme Labs",
	Pitch:   "a software studio building data products.",
}

func TestPrompt_ContainsDescriptionAndLinks(t *testing.T) {
	w := NewEmailWriter(&mockProvider{}, ColdEmailTemplate, testSender)
	description := "Senior Go engineer.\nMust know gRPC and Postgres."
	links := []string{"https://example.com/go-portfolio", "https://example.com/grpc"}

	got, err := w.Prompt(description, links)
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}

	for _, want := range []string{
		description,
		"- https://example.com/go-portfolio\n- https://example.com/grpc",
		"You are dana, a account executive at Acme Labs.",
		"a software studio building data products.",
		"### EMAIL (NO PREAMBLE):",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestPrompt_NoLinks(t *testing.T) {
	w := NewEmailWriter(&mockProvider{}, ColdEmailTemplate, testSender)
	got, err := w.Prompt("desc", nil)
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if !strings.Contains(got, "(none)") {
		t.Errorf("prompt should mark the empty link list:\n%s", got)
	}
}

func TestWrite_ReturnsTrimmedEmail(t *testing.T) {
	mock := &mockProvider{response: "\n  Subject: Hello\n\nDear team,  \n"}
	w := NewEmailWriter(mock, ColdEmailTemplate, testSender)

	email, err := w.Write(context.Background(), "job text", []string{"https://example.com/a"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if email.Fallback {
		t.Error("Fallback = true, want false")
	}
	if email.Body != "Subject: Hello\n\nDear team," {
		t.Errorf("Body = %q", email.Body)
	}
	if !strings.Contains(mock.prompt, "job text") || !strings.Contains(mock.prompt, "https://example.com/a") {
		t.Errorf("provider prompt missing inputs:\n%s", mock.prompt)
	}
}

func TestWrite_FallbackOnProviderError(t *testing.T) {
	providerErr := errors.New("context length exceeded")
	w := NewEmailWriter(&mockProvider{err: providerErr}, ColdEmailTemplate, testSender)

	email, err := w.Write(context.Background(), "job text", nil)
	if !errors.Is(err, providerErr) {
		t.Fatalf("Write error = %v, want wrapped provider error", err)
	}
	if !email.Fallback || email.Body != FallbackMessage {
		t.Errorf("email = %+v, want fallback", email)
	}
}

func TestWrite_FallbackOnEmptyCompletion(t *testing.T) {
	w := NewEmailWriter(&mockProvider{response: "   \n"}, ColdEmailTemplate, testSender)

	email, err := w.Write(context.Background(), "job text", nil)
	if !errors.Is(err, errEmptyCompletion) {
		t.Fatalf("Write error = %v, want errEmptyCompletion", err)
	}
	if !email.Fallback {
		t.Error("Fallback = false, want true")
	}
}

func TestLoadTemplate(t *testing.T) {
	tmpl, err := LoadTemplate("")
	if err != nil || tmpl != ColdEmailTemplate {
		t.Fatalf("LoadTemplate(\"\") = %v, %v; want built-in template", tmpl, err)
	}

	path := filepath.Join(t.TempDir(), "prompt.md")
	if err := os.WriteFile(path, []byte("From {{.SenderName}}: {{.JobDescription}} / {{.LinkList}}"), 0644); err != nil {
		t.Fatal(err)
	}
	tmpl, err = LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	w := NewEmailWriter(&mockProvider{}, tmpl, testSender)
	got, err := w.Prompt("Go role", []string{"https://example.com"})
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if got != "From dana: Go role / - https://example.com" {
		t.Errorf("Prompt = %q", got)
	}

	bad := filepath.Join(t.TempDir(), "bad.md")
	if err := os.WriteFile(bad, []byte("{{.JobDescription"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTemplate(bad); err == nil {
		t.Error("LoadTemplate: expected parse error")
	}
}

func TestFormatLinks(t *testing.T) {
	tests := []struct {
		links []string
		want  string
	}{
		{nil, "(none)"},
		{[]string{"", "  "}, "(none)"},
		{[]string{"https://a"}, "- https://a"},
		{[]string{"https://a", "", "https://b"}, "- https://a\n- https://b"},
	}
	for _, tc := range tests {
		if got := FormatLinks(tc.links); got != tc.want {
			t.Errorf("FormatLinks(%q) = %q, want %q", tc.links, got, tc.want)
		}
	}
}
