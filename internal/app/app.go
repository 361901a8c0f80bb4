// Package app hosts the root Bubble Tea model: frame rendering, global key
// handling, and screen navigation via the router.
package app

import (
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quizdash/quizdash/internal/config"
	"github.com/quizdash/quizdash/internal/gateway"
	"github.com/quizdash/quizdash/internal/grader"
	"github.com/quizdash/quizdash/internal/history"
	"github.com/quizdash/quizdash/internal/match"
	"github.com/quizdash/quizdash/internal/router"
	"github.com/quizdash/quizdash/internal/screen"
	"github.com/quizdash/quizdash/internal/screens/home"
	"github.com/quizdash/quizdash/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

func newAppModel(deps home.Deps) AppModel {
	return AppModel{
		router: router.New(home.New(deps)),
	}
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			// Screens that run their own exit flow get Esc forwarded.
			if h, ok := m.router.Active().(screen.EscHandler); ok && h.HandlesEsc() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, "", m.width)

	footerHints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		if hints := hp.KeyHints(); len(hints) > 0 {
			footerHints = hints
		}
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run wires the dependencies and starts the Bubble Tea program.
func Run(cfg *config.Config, log *slog.Logger) error {
	gw := gateway.NewClient(cfg.APIBaseURL, cfg.APIToken, log)

	var store *history.Store
	dbPath := cfg.DBPath
	if dbPath == "" {
		var err error
		dbPath, err = history.DefaultDBPath()
		if err != nil {
			log.Warn("history disabled", "error", err)
		}
	}
	if dbPath != "" {
		var err error
		if err = history.EnsureDir(dbPath); err == nil {
			store, err = history.Open(dbPath)
		}
		if err != nil {
			log.Warn("history disabled", "error", err, "path", dbPath)
			store = nil
		} else {
			defer store.Close()
		}
	}

	deps := home.Deps{
		Gateway: gw,
		Grader:  grader.NewLocal(cfg.FuzzyThreshold),
		Store:   store,
		Logger:  log,
		Controller: match.Config{
			QuestionSeconds: cfg.QuestionSeconds,
			SubmitRetries:   cfg.SubmitRetries,
		},
		FeedbackDwell: cfg.FeedbackDwell,
		PracticeCount: cfg.PracticeCount,
	}

	p := tea.NewProgram(newAppModel(deps))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
