package notifier

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/amishk599/coldreach/internal/model"
)

// Ensure ConsoleNotifier implements model.Notifier.
var _ model.Notifier = (*ConsoleNotifier)(nil)

// consoleWidth is the wrap width of rendered emails.
const consoleWidth = 100

// ConsoleNotifier prints drafted emails to a writer, usually stdout.
type ConsoleNotifier struct {
	w        io.Writer
	renderer *glamour.TermRenderer // nil prints plain markdown
}

// NewConsoleNotifier returns a notifier writing to w. With render set the
// email is formatted as terminal markdown.
func NewConsoleNotifier(w io.Writer, render bool) *ConsoleNotifier {
	n := &ConsoleNotifier{w: w}
	if render {
		if r, err := NewMarkdownRenderer(consoleWidth, ""); err == nil {
			n.renderer = r
		}
	}
	return n
}

// Notify prints a header, the matched links and the email.
func (n *ConsoleNotifier) Notify(_ context.Context, r model.Result) error {
	doc := FormatMarkdown(r)
	if n.renderer != nil {
		if out, err := n.renderer.Render(doc); err == nil {
			doc = out
		}
	}
	if _, err := io.WriteString(n.w, doc); err != nil {
		return fmt.Errorf("write email: %w", err)
	}
	return nil
}

// FormatMarkdown lays out a result as a markdown document.
func FormatMarkdown(r model.Result) string {
	var b strings.Builder

	b.WriteString("## Generated Email\n\n")
	if r.JobTitle != "" {
		fmt.Fprintf(&b, "**%s**  \n", r.JobTitle)
	}
	fmt.Fprintf(&b, "Job: %s\n\n", r.JobURL)

	if r.GenerationErr != nil {
		fmt.Fprintf(&b, "> An error occurred while generating the email: %v\n\n", r.GenerationErr)
	}

	b.WriteString("Portfolio links:\n\n")
	wrote := false
	for _, l := range r.Links {
		if l == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s\n", l)
		wrote = true
	}
	if !wrote {
		b.WriteString("- (none)\n")
	}

	b.WriteString("\n---\n\n")
	b.WriteString(r.Email.Body)
	b.WriteString("\n")
	return b.String()
}

// NewMarkdownRenderer returns a renderer wrapping at width columns in the named
// glamour style. An empty style detects the terminal background, which reads
// from the terminal and must not run while a bubbletea program owns it.
func NewMarkdownRenderer(width int, style string) (*glamour.TermRenderer, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return r, nil
}
