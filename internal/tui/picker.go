package tui

import (
	"fmt"
	"os/exec"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/coldreach/internal/model"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerLinkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

type pickerModel struct {
	entries []model.Entry
	cursor  int
	chosen  int // -1 = quit without a choice
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.chosen = -1
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "enter":
			if len(m.entries) > 0 {
				m.chosen = m.cursor
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render(fmt.Sprintf("Portfolio (%d entries)", len(m.entries)))
	s += "\n"

	for i, e := range m.entries {
		link := pickerLinkStyle.Render(e.Links)
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+e.Techstack) + "  " + link + "\n"
		} else {
			s += pickerItemStyle.Render(e.Techstack) + "  " + link + "\n"
		}
	}

	s += pickerHintStyle.Render("↑/↓/j/k navigate  enter open link  q quit")
	return s
}

// RunPortfolioPicker lists entries and returns the index the user picked,
// or -1 if they quit.
func RunPortfolioPicker(entries []model.Entry) (int, error) {
	m := pickerModel{entries: entries, chosen: -1}

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return -1, err
	}
	return result.(pickerModel).chosen, nil
}

// OpenURL opens url in the default system browser, fire-and-forget.
func OpenURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}
