package scraper

import (
	"fmt"
	"html"
	"io"
	"strings"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"
)

// skippedElements never contribute visible text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"svg":      true,
	"iframe":   true,
	"template": true,
	"head":     true,
}

// blockElements start a new line in the extracted text.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true, "main": true,
	"tr": true, "table": true, "pre": true, "blockquote": true, "dd": true, "dt": true,
}

// ExtractText parses an HTML document and returns its <title> and visible
// text. Whitespace inside a line is collapsed and blank lines are dropped.
func ExtractText(r io.Reader) (title, text string, err error) {
	doc, err := xhtml.Parse(r)
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	title = findTitle(doc)

	var sb strings.Builder
	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		switch n.Type {
		case xhtml.TextNode:
			sb.WriteString(collapse(n.Data))
			sb.WriteString(" ")
			return
		case xhtml.ElementNode:
			if skippedElements[n.Data] {
				return
			}
			if blockElements[n.Data] {
				sb.WriteString("\n")
				defer sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return title, normalizeLines(sb.String()), nil
}

// fragmentText converts an HTML or HTML-encoded fragment to plain text.
// ATS APIs often double-encode their descriptions, so entities are
// unescaped once before parsing; on real HTML this is a no-op.
func fragmentText(content string) string {
	_, text, err := ExtractText(strings.NewReader(html.UnescapeString(content)))
	if err != nil {
		return collapse(content)
	}
	return text
}

func findTitle(n *xhtml.Node) string {
	if n.Type == xhtml.ElementNode && n.Data == "title" {
		return collapse(nodeText(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func nodeText(n *xhtml.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = collapse(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most limit runes. A non-positive limit disables it.
func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
