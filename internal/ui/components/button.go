package components

import (
	"github.com/quizdash/quizdash/internal/ui/theme"
)

// Button is a styled label for a keyboard-driven choice. Danger marks
// destructive options such as forfeiting a match.
type Button struct {
	Label  string
	Active bool
	Danger bool
}

// NewButton creates a new button.
func NewButton(label string, active, danger bool) Button {
	return Button{
		Label:  label,
		Active: active,
		Danger: danger,
	}
}

// View renders the button.
func (b Button) View() string {
	label := "  ▸ " + b.Label + " "
	switch {
	case b.Active && b.Danger:
		return theme.ButtonDanger.Render(label)
	case b.Active:
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}
