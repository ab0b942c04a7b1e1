// Package tui implements the interactive terminal front end.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/coldreach/internal/model"
	"github.com/amishk599/coldreach/internal/notifier"
)

// GenerateFunc drafts an email for a job URL.
type GenerateFunc func(ctx context.Context, url string) (model.Result, error)

// AddEntryFunc appends a row to the portfolio.
type AddEntryFunc func(entry model.Entry) error

const (
	fieldURL = iota
	fieldTechstack
	fieldLink
	fieldCount
)

// Lines taken by everything except the email viewport:
// title, 3 x (label + bordered input), hint line, banner, viewport border, status bar.
const chromeHeight = 1 + 3*4 + 1 + 1 + 2 + 1

type bannerKind int

const (
	bannerNone bannerKind = iota
	bannerSuccess
	bannerError
	bannerHint
)

type generatedMsg struct {
	url    string
	result model.Result
	err    error
}

type entryAddedMsg struct {
	entry model.Entry
	err   error
}

type appModel struct {
	inputs   []textinput.Model
	focus    int
	viewport viewport.Model
	width    int
	height   int
	ready    bool

	generate GenerateFunc
	addEntry AddEntryFunc
	timeout  time.Duration

	loading    bool
	frame      int
	banner     string
	bannerKind bannerKind
	email      string // markdown of the last result

	// Markdown renderer for the viewport, rebuilt only when its width changes.
	mdStyle       string
	renderer      *glamour.TermRenderer
	rendererWidth int
}

func newAppModel(generate GenerateFunc, addEntry AddEntryFunc, timeout time.Duration) appModel {
	placeholders := [fieldCount]string{
		"https://jobs.example.com/posting/123",
		"React, Node.js, MongoDB",
		"https://example.com/react-portfolio",
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.Prompt = "› "
		ti.CharLimit = 2048
		inputs[i] = ti
	}
	inputs[fieldURL].Focus()

	return appModel{
		inputs:   inputs,
		generate: generate,
		addEntry: addEntry,
		timeout:  timeout,
		mdStyle:  styles.DarkStyle,
	}
}

func (m appModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case spinnerTickMsg:
		if !m.loading {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, tick()

	case generatedMsg:
		m.loading = false
		m.handleGenerated(msg)
		return m, nil

	case entryAddedMsg:
		if msg.err != nil {
			m.setBanner(bannerError, "An error occurred: "+msg.err.Error())
			return m, nil
		}
		m.setBanner(bannerSuccess, fmt.Sprintf("Added new entry: Techstack - %s, Link - %s", msg.entry.Techstack, msg.entry.Links))
		m.inputs[fieldTechstack].SetValue("")
		m.inputs[fieldLink].SetValue("")
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m appModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "down":
		return m, m.setFocus((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	case "ctrl+g":
		return m.startGenerate()
	case "ctrl+a":
		return m.startAddEntry()
	case "enter":
		if m.focus == fieldURL {
			return m.startGenerate()
		}
		return m.startAddEntry()
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *appModel) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

func (m *appModel) setBanner(kind bannerKind, text string) {
	m.bannerKind = kind
	m.banner = text
}

func (m appModel) startGenerate() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	url := strings.TrimSpace(m.inputs[fieldURL].Value())
	if url == "" {
		m.setBanner(bannerHint, "Enter a job URL to generate an email.")
		return m, nil
	}

	m.loading = true
	m.frame = 0
	m.setBanner(bannerNone, "")
	return m, tea.Batch(m.generateCmd(url), tick())
}

func (m appModel) generateCmd(url string) tea.Cmd {
	generate, timeout := m.generate, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		result, err := generate(ctx, url)
		return generatedMsg{url: url, result: result, err: err}
	}
}

func (m appModel) startAddEntry() (tea.Model, tea.Cmd) {
	entry := model.Entry{
		Techstack: strings.TrimSpace(m.inputs[fieldTechstack].Value()),
		Links:     strings.TrimSpace(m.inputs[fieldLink].Value()),
	}
	if entry.Techstack == "" || entry.Links == "" {
		m.setBanner(bannerHint, "Enter both a techstack and a portfolio link to add an entry.")
		return m, nil
	}
	return m, m.addEntryCmd(entry)
}

func (m appModel) addEntryCmd(entry model.Entry) tea.Cmd {
	addEntry := m.addEntry
	return func() tea.Msg {
		return entryAddedMsg{entry: entry, err: addEntry(entry)}
	}
}

func (m *appModel) handleGenerated(msg generatedMsg) {
	if msg.err != nil {
		m.setBanner(bannerError, "An error occurred: "+msg.err.Error())
		m.email = ""
		m.refreshViewport()
		return
	}

	if msg.result.GenerationErr != nil {
		m.setBanner(bannerError, "An error occurred while generating the email: "+msg.result.GenerationErr.Error())
	} else {
		m.setBanner(bannerSuccess, "Generated email for "+msg.url)
	}
	m.email = notifier.FormatMarkdown(msg.result)
	m.refreshViewport()
	m.viewport.GotoTop()
}

func (m *appModel) recalcLayout() {
	width := max(m.width-4, 20)
	height := max(m.height-chromeHeight, 3)

	for i := range m.inputs {
		m.inputs[i].Width = width - 4
	}

	if !m.ready {
		m.viewport = viewport.New(width, height)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = height
	}
	m.refreshViewport()
}

func (m *appModel) refreshViewport() {
	if m.email == "" {
		m.viewport.SetContent(hintBannerStyle.Render("The generated email will appear here."))
		return
	}
	content := m.email
	if r := m.markdownRenderer(); r != nil {
		if out, err := r.Render(m.email); err == nil {
			content = out
		}
	}
	m.viewport.SetContent(content)
}

func (m *appModel) markdownRenderer() *glamour.TermRenderer {
	if m.renderer != nil && m.rendererWidth == m.viewport.Width {
		return m.renderer
	}
	r, err := notifier.NewMarkdownRenderer(m.viewport.Width, m.mdStyle)
	if err != nil {
		return nil
	}
	m.renderer = r
	m.rendererWidth = m.viewport.Width
	return r
}

func (m appModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("coldreach: cold emails from job postings"))
	b.WriteString("\n")

	labels := [fieldCount]string{"Job URL", "Techstack", "Portfolio Link"}
	for i, in := range m.inputs {
		label, border := labelStyle, inactiveBorderStyle
		if i == m.focus {
			label, border = activeLabelStyle, activeBorderStyle
		}
		b.WriteString(label.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(border.Width(m.viewport.Width).Render(in.View()))
		b.WriteString("\n")
	}

	b.WriteString(hintBannerStyle.Render("ctrl+g / enter on URL: Generate Email   ctrl+a / enter on entry: Add Entry"))
	b.WriteString("\n")
	b.WriteString(m.bannerView())
	b.WriteString("\n")

	if m.loading {
		spinner := spinnerStyle.Render(spinnerFrames[m.frame])
		body := fmt.Sprintf("%s Generating email...", spinner)
		b.WriteString(inactiveBorderStyle.Width(m.viewport.Width).Height(m.viewport.Height).Render(body))
	} else {
		b.WriteString(inactiveBorderStyle.Width(m.viewport.Width).Render(m.viewport.View()))
	}
	b.WriteString("\n")

	status := " tab/shift+tab switch field  pgup/pgdn scroll email  esc quit"
	b.WriteString(statusBarStyle.Width(m.width).Render(status))
	return b.String()
}

func (m appModel) bannerView() string {
	switch m.bannerKind {
	case bannerSuccess:
		return successBannerStyle.Render(m.banner)
	case bannerError:
		return errorBannerStyle.Render(m.banner)
	case bannerHint:
		return hintBannerStyle.Render(m.banner)
	default:
		return ""
	}
}

// Run launches the full-screen form. generate runs with the given timeout.
func Run(generate GenerateFunc, addEntry AddEntryFunc, timeout time.Duration) error {
	m := newAppModel(generate, addEntry, timeout)
	// Detect the background before bubbletea takes over the terminal.
	if !lipgloss.HasDarkBackground() {
		m.mdStyle = styles.LightStyle
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
