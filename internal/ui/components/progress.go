package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/quizdash/quizdash/internal/ui/theme"
)

// ProgressBar shows how far through a question sequence the player is.
type ProgressBar struct {
	Label     string
	Current   int
	Total     int
	ShowCount bool
	Width     int
}

// NewProgressBar creates a progress bar over current of total steps.
func NewProgressBar(label string, current, total int, showCount bool, width int) ProgressBar {
	return ProgressBar{
		Label:     label,
		Current:   current,
		Total:     total,
		ShowCount: showCount,
		Width:     width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	countWidth := 0
	if p.ShowCount {
		countWidth = len(fmt.Sprintf("  %d/%d", p.Total, p.Total))
	}

	barWidth := p.Width - labelWidth - countWidth
	if barWidth < 4 {
		barWidth = 4
	}

	total := p.Total
	if total < 1 {
		total = 1
	}
	filled := barWidth * p.Current / total
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	filledStr := theme.ProgressFilled.Render(strings.Repeat(" ", filled))
	emptyStr := theme.ProgressEmpty.Render(strings.Repeat(" ", empty))

	result += filledStr + emptyStr

	if p.ShowCount {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d/%d", p.Current, p.Total))
	}

	return result
}
