package match

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/quizdash/quizdash/internal/gateway"
	domain "github.com/quizdash/quizdash/internal/match"
	"github.com/quizdash/quizdash/internal/ui/components"
	"github.com/quizdash/quizdash/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	if s.ctrl.ExitPending() {
		return renderExitConfirm(width)
	}

	switch s.ctrl.State() {
	case domain.StateIdle, domain.StateLoading:
		return renderLoading(width, s.params.Mode)
	case domain.StateAwaitingAnswer:
		return s.renderQuestion(width)
	case domain.StateGrading:
		return s.renderGrading(width)
	case domain.StateFeedback:
		return s.renderFeedback(width)
	case domain.StateFinished:
		return s.renderFinished(width)
	case domain.StateAborted:
		return s.renderAborted(width)
	}
	return ""
}

func (s *Screen) renderQuestion(width int) string {
	q := s.ctrl.Current()
	if q == nil {
		return renderLoading(width, s.params.Mode)
	}

	var b strings.Builder

	// Status line: question progress, score, countdown.
	progress := components.NewProgressBar(
		fmt.Sprintf("Q %d/%d", s.ctrl.Cursor()+1, s.ctrl.Total()),
		s.ctrl.Cursor(),
		s.ctrl.Total(),
		false,
		min(width-30, 40),
	)
	left := "  " + progress.View()

	right := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Score %d", s.ctrl.Score()))
	if s.params.Mode.Authoritative() {
		remaining := s.ctrl.Remaining()
		timerStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
		if remaining <= 5 {
			timerStyle = theme.TimerLow
		}
		right += "   " + timerStyle.Render(fmt.Sprintf("%2ds", remaining))
	}

	pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if pad < 1 {
		pad = 1
	}
	b.WriteString(left + strings.Repeat(" ", pad) + right)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	if s.notice != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Warning).
			Render(s.notice))
		b.WriteString("\n\n")
	}

	if s.mcActive {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.mc.View()))
	} else {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Text).
			Bold(true).
			Render(q.Prompt))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Render("Answer: " + s.input.View()))
	}

	return b.String()
}

func (s *Screen) renderGrading(width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  Checking your answer...")
}

func (s *Screen) renderFeedback(width int) string {
	rec := s.ctrl.LastRecord()
	if rec == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n")

	switch {
	case rec.Correct:
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Success).
			Bold(true).
			Render("Correct!"))
	case rec.TimedOut:
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Bold(true).
			Render("Time's up!"))
	default:
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Bold(true).
			Render("Not quite"))
	}

	if !rec.Correct && rec.CorrectAnswer != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("Correct answer: %s", rec.CorrectAnswer)))
	}

	if s.mcActive {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.mc.View()))
	} else if !rec.TimedOut {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Render("Answer: " + s.input.View()))
	}

	return b.String()
}

func (s *Screen) renderFinished(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	if err := s.ctrl.SummaryErr(); err != nil {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render("Couldn't fetch your results"))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render(err.Error()))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Primary).
			Render("[R] Retry    [Esc] Home"))
		return b.String()
	}

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Fetching your results..."))
	return b.String()
}

func (s *Screen) renderAborted(width int) string {
	err := s.ctrl.Err()

	var msg, detail string
	switch {
	case errors.Is(err, gateway.ErrNoAttempts):
		msg = "No attempts left"
		detail = "You've used all your match attempts for now."
	case errors.Is(err, domain.ErrExited):
		msg = "Session ended"
	case err != nil:
		msg = "Match ended unexpectedly"
		detail = err.Error()
	default:
		msg = "Match ended"
	}

	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Bold(true).
		Render(msg))
	if detail != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render(detail))
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Press any key to go back."))
	return b.String()
}

func renderExitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Leave the match?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("The match will be forfeited and scored as it stands. The clock keeps running."))
	b.WriteString("\n\n")
	yes := components.NewButton("[Y] Yes, forfeit", true, true)
	no := components.NewButton("[N] No, keep playing", true, false)
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(yes.View() + "  " + no.View()))
	return b.String()
}

func renderLoading(width int, mode domain.Mode) string {
	label := "Preparing your match..."
	if mode == domain.ModePractice {
		label = "Loading practice questions..."
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  " + label)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
