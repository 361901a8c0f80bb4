package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quizdash/quizdash/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. The correct option is not known
// at render time; it is revealed after grading via Reveal.
type MultiChoice struct {
	Prompt      string
	Options     []string
	Selected    int
	Submitted   bool
	ChosenIndex int

	revealed     bool
	correctIndex int
}

// NewMultiChoice creates a multiple-choice component for the given options.
func NewMultiChoice(prompt string, options []string) MultiChoice {
	return MultiChoice{
		Prompt:       prompt,
		Options:      options,
		Selected:     0,
		ChosenIndex:  -1,
		correctIndex: -1,
	}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.Submitted = true
		m.ChosenIndex = m.Selected
	default:
		// Number keys jump straight to an option.
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			idx := int(key[0] - '1')
			if idx < len(m.Options) {
				m.Selected = idx
			}
		}
	}

	return m, nil
}

// Value returns the currently chosen option text, or "" before submission.
func (m MultiChoice) Value() string {
	if m.ChosenIndex < 0 || m.ChosenIndex >= len(m.Options) {
		return ""
	}
	return m.Options[m.ChosenIndex]
}

// Reveal marks the graded outcome. The correct option is located by value so
// the reveal works even when the submission was wrong.
func (m *MultiChoice) Reveal(correctAnswer string) {
	m.revealed = true
	m.correctIndex = -1
	for i, opt := range m.Options {
		if strings.EqualFold(opt, correctAnswer) {
			m.correctIndex = i
			return
		}
	}
}

// View renders the multiple-choice component.
func (m MultiChoice) View() string {
	promptStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	s := promptStyle.Render(m.Prompt) + "\n\n"

	for i, opt := range m.Options {
		label := string(rune('A' + i))
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%s)  %s", prefix, label, opt)

		switch {
		case m.revealed && i == m.correctIndex:
			s += lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render(line) + "\n"
		case m.revealed && i == m.ChosenIndex:
			s += lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render(line) + "\n"
		case m.revealed:
			s += lipgloss.NewStyle().Foreground(theme.TextDim).Render(line) + "\n"
		case i == m.Selected:
			s += lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(line) + "\n"
		default:
			s += lipgloss.NewStyle().Foreground(theme.Text).Render(line) + "\n"
		}
	}

	return s
}
