// Package history lists past matches from the local store, with expandable
// per-question detail.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/quizdash/quizdash/internal/history"
	"github.com/quizdash/quizdash/internal/match"
	"github.com/quizdash/quizdash/internal/router"
	"github.com/quizdash/quizdash/internal/screen"
	"github.com/quizdash/quizdash/internal/ui/layout"
	"github.com/quizdash/quizdash/internal/ui/theme"
)

type historyLoadedMsg struct {
	Matches []history.MatchRecord
	Err     error
}

type answersLoadedMsg struct {
	Index   int
	Answers []match.AnswerRecord
}

// HistoryScreen displays past matches.
type HistoryScreen struct {
	store    *history.Store
	matches  []history.MatchRecord
	answers  map[int][]match.AnswerRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a history screen. A nil store renders as empty history.
func New(store *history.Store) *HistoryScreen {
	return &HistoryScreen{
		store:    store,
		answers:  make(map[int][]match.AnswerRecord),
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	if s.store == nil {
		return func() tea.Msg { return historyLoadedMsg{} }
	}
	store := s.store
	return func() tea.Msg {
		matches, err := store.RecentMatches(context.Background(), 50)
		return historyLoadedMsg{Matches: matches, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.matches = msg.Matches
		}
		s.loaded = true
		return s, nil

	case answersLoadedMsg:
		s.answers[msg.Index] = msg.Answers
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.matches)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			return s, s.toggleDetails()
		}
	}
	return s, nil
}

// toggleDetails expands the selected match, loading its answers on first
// expansion.
func (s *HistoryScreen) toggleDetails() tea.Cmd {
	if s.selected >= len(s.matches) {
		return nil
	}
	s.expanded[s.selected] = !s.expanded[s.selected]

	if !s.expanded[s.selected] || s.store == nil {
		return nil
	}
	if _, ok := s.answers[s.selected]; ok {
		return nil
	}

	idx := s.selected
	sessionID := s.matches[idx].SessionID
	store := s.store
	return func() tea.Msg {
		answers, err := store.Answers(context.Background(), sessionID)
		if err != nil {
			return answersLoadedMsg{Index: idx}
		}
		return answersLoadedMsg{Index: idx, Answers: answers}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.matches) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No matches yet. Go play one!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, rec := range s.matches {
		dateStr := rec.CreatedAt.Format("Jan 02, 2006")
		mins := rec.DurationSecs / 60
		secs := rec.DurationSecs % 60
		durationStr := fmt.Sprintf("%d:%02d", mins, secs)

		outcomeStr := ""
		if rec.Outcome == history.OutcomeAborted {
			outcomeStr = "  aborted"
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %s  %s  %d/%d%s",
			prefix, dateStr, rec.Mode, durationStr, rec.Score, rec.TotalQuestions, outcomeStr)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		if rec.Outcome == history.OutcomeAborted {
			style = style.Foreground(theme.TextDim)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			answers := s.answers[i]
			if len(answers) == 0 {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
						Render("    No answers recorded")))
				b.WriteString("\n")
			}
			for _, a := range answers {
				mark := "✗"
				markStyle := lipgloss.NewStyle().Foreground(theme.Error)
				if a.Correct {
					mark = "✓"
					markStyle = lipgloss.NewStyle().Foreground(theme.Success)
				}
				detail := a.Submitted
				if !a.Correct {
					detail = fmt.Sprintf("%s (answer: %s)", a.Submitted, a.CorrectAnswer)
				}
				answerLine := fmt.Sprintf("    %s Q%d  %s", mark, a.QuestionIndex+1, detail)
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					markStyle.Render(answerLine)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}
