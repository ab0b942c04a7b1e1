package ai

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"
)

//go:embed prompts/cold_email.md
var coldEmailPromptRaw string

// ColdEmailTemplate is the built-in prompt for drafting outreach emails.
// Parsed once at package init.
var ColdEmailTemplate = template.Must(template.New("cold_email").Parse(coldEmailPromptRaw))

// PromptData holds the fields available to the prompt template.
type PromptData struct {
	JobDescription string
	LinkList       string
	SenderName     string
	SenderRole     string
	Company        string
	Pitch          string
}

// LoadTemplate parses the template file at path, or returns ColdEmailTemplate
// when path is empty.
func LoadTemplate(path string) (*template.Template, error) {
	if path == "" {
		return ColdEmailTemplate, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	tmpl, err := template.New("cold_email").Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", path, err)
	}
	return tmpl, nil
}

// FormatLinks renders links one per line as a markdown list.
// Blank links are skipped; "(none)" stands in for an empty list.
func FormatLinks(links []string) string {
	var b strings.Builder
	for _, l := range links {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(l)
	}
	if b.Len() == 0 {
		return "(none)"
	}
	return b.String()
}
