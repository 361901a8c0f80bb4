// Package summary renders the terminal report of a finished session.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quizdash/quizdash/internal/match"
	"github.com/quizdash/quizdash/internal/router"
	"github.com/quizdash/quizdash/internal/screen"
	"github.com/quizdash/quizdash/internal/ui/layout"
	"github.com/quizdash/quizdash/internal/ui/theme"
)

// SummaryScreen displays a match summary.
type SummaryScreen struct {
	summary *match.Summary
	mode    match.Mode
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.EscHandler = (*SummaryScreen)(nil)

// HandlesEsc makes Esc unwind to home instead of back to the finished match
// screen beneath.
func (s *SummaryScreen) HandlesEsc() bool { return true }

// New creates a summary screen for a finished session.
func New(summary *match.Summary, mode match.Mode) *SummaryScreen {
	return &SummaryScreen{summary: summary, mode: mode}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	var b strings.Builder

	title := "Match complete!"
	if s.mode == match.ModePractice {
		title = "Practice complete!"
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render(title))
	b.WriteString("\n\n")

	// Headline score.
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render(fmt.Sprintf("Score: %d / %d", sum.Score, sum.TotalQuestions)))
	b.WriteString("\n")

	// Scoring breakdown, authoritative modes only.
	if s.mode.Authoritative() && sum.DifficultyMultiplier > 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("Base %d x %.1f difficulty", sum.BaseScore, sum.DifficultyMultiplier)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(sum.Records) > 0 {
		divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
			strings.Repeat("─", min(width-8, 60)))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("Questions")))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n\n")

		for _, rec := range sum.Records {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderRecord(rec)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderRecord(rec match.AnswerRecord) string {
	var mark, detail string
	style := lipgloss.NewStyle()

	switch {
	case rec.Correct:
		mark = "✓"
		style = style.Foreground(theme.Success)
		detail = rec.Submitted
	case rec.TimedOut:
		mark = "⏱"
		style = style.Foreground(theme.Error)
		detail = fmt.Sprintf("timed out, answer was %s", rec.CorrectAnswer)
	default:
		mark = "✗"
		style = style.Foreground(theme.Error)
		detail = fmt.Sprintf("%s, answer was %s", rec.Submitted, rec.CorrectAnswer)
	}

	return style.Render(fmt.Sprintf("  %s Q%d  %s", mark, rec.QuestionIndex+1, detail))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
