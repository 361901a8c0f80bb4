// Package home is the application entry screen: the game mode menu plus a
// small lifetime stats bar.
package home

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quizdash/quizdash/internal/gateway"
	"github.com/quizdash/quizdash/internal/history"
	"github.com/quizdash/quizdash/internal/match"
	"github.com/quizdash/quizdash/internal/router"
	"github.com/quizdash/quizdash/internal/screen"
	historyscreen "github.com/quizdash/quizdash/internal/screens/history"
	matchscreen "github.com/quizdash/quizdash/internal/screens/match"
	"github.com/quizdash/quizdash/internal/ui/components"
	"github.com/quizdash/quizdash/internal/ui/theme"
)

// Deps bundles what the home screen needs to launch sessions.
type Deps struct {
	Gateway       gateway.Gateway
	Grader        match.Grader
	Store         *history.Store
	Logger        *slog.Logger
	Controller    match.Config
	FeedbackDwell time.Duration
	PracticeCount int
	Category      string
	GameMode      string
}

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	menu    components.Menu
	played  int
	correct int
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen. Lifetime stats come from the local history
// store and are best effort.
func New(deps Deps) *HomeScreen {
	var played, correct int
	if deps.Store != nil {
		played, correct, _ = deps.Store.Totals(context.Background())
	}

	launch := func(mode match.Mode) func() tea.Cmd {
		return func() tea.Cmd {
			params := match.StartParams{
				Mode:     mode,
				Count:    deps.PracticeCount,
				Category: deps.Category,
				GameMode: deps.GameMode,
			}
			opts := matchscreen.Options{
				Gateway:       deps.Gateway,
				Grader:        deps.Grader,
				Store:         deps.Store,
				Logger:        deps.Logger,
				Controller:    deps.Controller,
				FeedbackDwell: deps.FeedbackDwell,
			}
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: matchscreen.New(opts, params)}
			}
		}
	}

	items := []components.MenuItem{
		{Label: "PRACTICE", Desc: "Untimed warmup, graded locally", Action: launch(match.ModePractice)},
		{Label: "CASUAL MATCH", Desc: "Timed questions, server scored", Action: launch(match.ModeCasual)},
		{Label: "TOURNAMENT", Desc: "Ranked, limited attempts", Action: launch(match.ModeTournament)},
		{Label: "HISTORY", Desc: "Your recent matches", Action: func() tea.Cmd {
			store := deps.Store
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: historyscreen.New(store)}
			}
		}},
		{Label: "EXIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		menu:    components.NewMenu(items),
		played:  played,
		correct: correct,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Q U I Z D A S H"))

	sections = append(sections, lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Matches played: %d    Correct answers: %d", h.played, h.correct)))

	sections = append(sections, lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))

	return "\n\n" + strings.Join(sections, "\n\n")
}

func (h *HomeScreen) Title() string {
	return "Home"
}
