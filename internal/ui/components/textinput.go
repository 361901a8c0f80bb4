package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quizdash/quizdash/internal/ui/theme"
)

// TextInput wraps bubbles/textinput for free-text answers. After grading it
// shows the verdict mark next to the field.
type TextInput struct {
	Model    textinput.Model
	graded   bool
	accepted bool
}

// NewTextInput creates a focused answer input.
func NewTextInput(placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if charLimit > 0 {
		ti.CharLimit = charLimit
	}

	return TextInput{Model: ti}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. A graded input ignores further edits.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.graded {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.graded {
		if t.accepted {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the current input value with surrounding whitespace removed.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// Reveal locks the input and marks it with the grading verdict.
func (t *TextInput) Reveal(accepted bool) {
	t.graded = true
	t.accepted = accepted
}
