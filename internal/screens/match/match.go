// Package match is the interactive shell around the match controller: it
// renders its state, maps player keys to controller events, and runs the
// effects the controller returns as bubbletea commands.
package match

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/quizdash/quizdash/internal/gateway"
	"github.com/quizdash/quizdash/internal/history"
	domain "github.com/quizdash/quizdash/internal/match"
	"github.com/quizdash/quizdash/internal/router"
	"github.com/quizdash/quizdash/internal/screen"
	"github.com/quizdash/quizdash/internal/screens/summary"
	"github.com/quizdash/quizdash/internal/ui/components"
	"github.com/quizdash/quizdash/internal/ui/layout"
)

const requestTimeout = 15 * time.Second

// Options bundles the injected dependencies of a match screen. Store may be
// nil when local history is unavailable.
type Options struct {
	Gateway       gateway.Gateway
	Grader        domain.Grader
	Store         *history.Store
	Logger        *slog.Logger
	Controller    domain.Config
	FeedbackDwell time.Duration
}

// Screen drives one session from start to summary.
type Screen struct {
	opts Options
	ctrl *domain.Controller

	params    domain.StartParams
	startedAt time.Time

	input    components.TextInput
	mc       components.MultiChoice
	mcActive bool
	notice   string

	lastCursor    int
	lastSessionID string
	recorded      bool
	navigated     bool
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.EscHandler = (*Screen)(nil)

// HandlesEsc keeps Esc out of the default back navigation: leaving a live
// session goes through the exit confirmation flow.
func (s *Screen) HandlesEsc() bool { return true }

// New creates a match screen for the given start parameters.
func New(opts Options, params domain.StartParams) *Screen {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.FeedbackDwell <= 0 {
		opts.FeedbackDwell = 2 * time.Second
	}
	return &Screen{
		opts:       opts,
		ctrl:       domain.NewController(opts.Controller, opts.Grader),
		params:     params,
		lastCursor: -1,
	}
}

func (s *Screen) Init() tea.Cmd {
	s.startedAt = time.Now()
	return s.runEffects(s.ctrl.Start(s.params))
}

func (s *Screen) Title() string {
	switch s.params.Mode {
	case domain.ModePractice:
		return "Practice"
	case domain.ModeTournament:
		return "Tournament"
	default:
		return "Casual Match"
	}
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.ctrl.ExitPending() {
		return []layout.KeyHint{
			{Key: "Y", Description: "Forfeit match"},
			{Key: "N", Description: "Keep playing"},
		}
	}
	switch s.ctrl.State() {
	case domain.StateAwaitingAnswer:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Exit"},
		}
	case domain.StateFinished:
		if s.ctrl.SummaryErr() != nil {
			return []layout.KeyHint{
				{Key: "R", Description: "Retry"},
				{Key: "Esc", Description: "Home"},
			}
		}
		return nil
	case domain.StateAborted:
		return []layout.KeyHint{
			{Key: "any key", Description: "Back"},
		}
	}
	return nil
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case practiceLoadedMsg:
		cmd := s.runEffects(s.ctrl.PracticeLoaded(msg.epoch, msg.questions, msg.err))
		return s, tea.Batch(cmd, s.syncQuestion())

	case matchStartedMsg:
		cmd := s.runEffects(s.ctrl.MatchStarted(msg.epoch, msg.started, msg.err))
		return s, tea.Batch(cmd, s.syncQuestion())

	case gradedMsg:
		return s.handleGraded(msg)

	case timerTickMsg:
		cont, effects := s.ctrl.TimerTick(msg.gen)
		cmd := s.runEffects(effects)
		if cont {
			cmd = tea.Batch(cmd, tickCmd(msg.gen))
		} else {
			cmd = tea.Batch(cmd, s.revealFeedback(), s.afterTransition())
		}
		return s, cmd

	case feedbackDoneMsg:
		cmd := s.runEffects(s.ctrl.FeedbackElapsed(msg.epoch))
		return s, tea.Batch(cmd, s.syncQuestion(), s.afterTransition())

	case forfeitDoneMsg:
		cmd := s.runEffects(s.ctrl.ForfeitDone(msg.epoch, msg.err))
		return s, tea.Batch(cmd, s.afterTransition())

	case summaryMsg:
		cmd := s.runEffects(s.ctrl.SummaryFetched(msg.epoch, msg.summary, msg.err))
		return s, tea.Batch(cmd, s.afterTransition())

	case scoreReportedMsg:
		if msg.err != nil {
			s.opts.Logger.Warn("practice score report failed", "error", msg.err)
		}
		return s, nil

	case historySavedMsg:
		if msg.err != nil {
			s.opts.Logger.Warn("history write failed", "error", msg.err)
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	// Everything else feeds the text input while it is live.
	if s.ctrl.State() == domain.StateAwaitingAnswer && !s.mcActive && !s.ctrl.ExitPending() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	return s, nil
}

func (s *Screen) handleGraded(msg gradedMsg) (screen.Screen, tea.Cmd) {
	cmd := s.runEffects(s.ctrl.Graded(msg.epoch, msg.outcome, msg.err, msg.transient))

	switch s.ctrl.State() {
	case domain.StateAwaitingAnswer:
		// Transient failure absorbed: same question, fresh attempt.
		s.notice = "Connection hiccup, answer again"
		s.resetComponents()
	case domain.StateFeedback:
		return s, tea.Batch(cmd, s.revealFeedback())
	}
	return s, tea.Batch(cmd, s.afterTransition())
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.ctrl.ExitPending() {
		switch key {
		case "y", "Y":
			return s, tea.Batch(s.runEffects(s.ctrl.ConfirmExit()), s.afterTransition())
		case "n", "N", "esc":
			s.ctrl.CancelExitPrompt()
		}
		return s, nil
	}

	switch s.ctrl.State() {
	case domain.StateAwaitingAnswer:
		switch key {
		case "esc":
			return s, tea.Batch(s.runEffects(s.ctrl.RequestExit()), s.afterTransition())
		case "enter":
			return s, s.submit()
		}
		if s.mcActive {
			s.mc, _ = s.mc.Update(msg)
			if s.mc.Submitted {
				return s, s.submit()
			}
			return s, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case domain.StateFinished:
		if s.ctrl.SummaryErr() != nil {
			switch key {
			case "r", "R":
				return s, s.runEffects(s.ctrl.RetrySummary())
			case "esc", "enter":
				s.ctrl.Teardown()
				return s, popCmd()
			}
			return s, nil
		}
		// Summary still in flight; allow bailing out.
		if key == "esc" {
			s.ctrl.Teardown()
			return s, popCmd()
		}
		return s, nil

	case domain.StateAborted:
		return s, popCmd()
	}

	return s, nil
}

// submit sends the current answer to the controller.
func (s *Screen) submit() tea.Cmd {
	var value string
	if s.mcActive {
		if !s.mc.Submitted {
			s.mc.Submitted = true
			s.mc.ChosenIndex = s.mc.Selected
		}
		value = s.mc.Value()
	} else {
		value = s.input.Value()
	}
	s.notice = ""
	return tea.Batch(s.runEffects(s.ctrl.Submit(value)), s.afterTransition())
}

// syncQuestion rebuilds the answer components when the controller moved to a
// new question. The controller's cursor is the position of record; the wire
// index is display metadata and nothing stops a server from repeating it.
func (s *Screen) syncQuestion() tea.Cmd {
	if s.ctrl.Current() == nil || s.ctrl.State() != domain.StateAwaitingAnswer {
		return nil
	}
	if s.ctrl.Cursor() == s.lastCursor {
		return nil
	}
	s.lastCursor = s.ctrl.Cursor()
	s.notice = ""
	return s.resetComponents()
}

func (s *Screen) resetComponents() tea.Cmd {
	q := s.ctrl.Current()
	if q == nil {
		return nil
	}
	if q.Kind == domain.AnswerChoose {
		s.mcActive = true
		s.mc = components.NewMultiChoice(q.Prompt, q.Choices)
		return nil
	}
	s.mcActive = false
	s.input = components.NewTextInput("Type your answer...", 80)
	return s.input.Init()
}

// revealFeedback marks the graded outcome on the choice component.
func (s *Screen) revealFeedback() tea.Cmd {
	if s.ctrl.State() != domain.StateFeedback {
		return nil
	}
	if rec := s.ctrl.LastRecord(); rec != nil {
		if s.mcActive {
			s.mc.Reveal(rec.CorrectAnswer)
		} else {
			s.input.Reveal(rec.Correct)
		}
	}
	return nil
}

// afterTransition handles terminal-state bookkeeping: persist local history
// once and navigate to the summary when it is available.
func (s *Screen) afterTransition() tea.Cmd {
	var cmds []tea.Cmd

	if s.ctrl.State().Terminal() && !s.recorded {
		s.recorded = true
		if cmd := s.recordHistory(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if s.ctrl.State() == domain.StateAborted && !s.navigated {
		if errors.Is(s.ctrl.Err(), domain.ErrExited) {
			s.navigated = true
			cmds = append(cmds, popCmd())
		}
	}

	if s.ctrl.State() == domain.StateFinished && s.ctrl.Summary() != nil && !s.navigated {
		s.navigated = true
		sum := s.ctrl.Summary()
		cmds = append(cmds, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: summary.New(sum, s.params.Mode)}
		})
	}

	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (s *Screen) recordHistory() tea.Cmd {
	if s.opts.Store == nil {
		return nil
	}

	sessionID := s.sessionIDForHistory()
	outcome := history.OutcomeFinished
	if s.ctrl.State() == domain.StateAborted {
		outcome = history.OutcomeAborted
	}
	records := s.ctrl.Records()
	answers := make([]domain.AnswerRecord, len(records))
	copy(answers, records)

	rec := history.MatchRecord{
		SessionID:      sessionID,
		Mode:           s.ctrl.Mode(),
		Outcome:        outcome,
		Score:          s.ctrl.Score(),
		TotalQuestions: s.ctrl.Total(),
		DurationSecs:   int(time.Since(s.startedAt).Seconds()),
		CreatedAt:      time.Now(),
		Answers:        answers,
	}

	store := s.opts.Store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return historySavedMsg{err: store.RecordMatch(ctx, rec)}
	}
}

// sessionIDForHistory returns the server session ID observed on the wire, or
// a locally minted one for practice and for sessions the authority never
// created.
func (s *Screen) sessionIDForHistory() string {
	if s.lastSessionID != "" {
		return s.lastSessionID
	}
	return uuid.New().String()
}

// runEffects converts controller effects into commands.
func (s *Screen) runEffects(effects []domain.Effect) tea.Cmd {
	if len(effects) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(effects))
	for _, eff := range effects {
		if cmd := s.runEffect(eff); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (s *Screen) runEffect(eff domain.Effect) tea.Cmd {
	gw := s.opts.Gateway

	switch eff.Kind {
	case domain.EffectLoadPractice:
		params := gateway.PracticeParams{
			Count:    eff.Params.Count,
			Category: eff.Params.Category,
			GameMode: eff.Params.GameMode,
			Tags:     eff.Params.Tags,
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			qs, err := gw.CreatePracticeSet(ctx, params)
			return practiceLoadedMsg{epoch: eff.Epoch, questions: qs, err: err}
		}

	case domain.EffectStartMatch:
		params := gateway.MatchParams{
			Mode:     eff.Params.Mode,
			Count:    eff.Params.Count,
			Category: eff.Params.Category,
			GameMode: eff.Params.GameMode,
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			// An interrupted session takes priority over creating a new one.
			snap, err := gw.ActiveMatch(ctx)
			if err == nil && snap == nil {
				snap, err = gw.StartMatch(ctx, params)
			}
			if err != nil {
				return matchStartedMsg{epoch: eff.Epoch, err: err}
			}
			return matchStartedMsg{epoch: eff.Epoch, started: domain.Started{
				SessionID: snap.SessionID,
				Total:     snap.TotalQuestions,
				Cursor:    snap.Cursor,
				Question:  snap.Question,
			}}
		}

	case domain.EffectSubmitRemote:
		s.lastSessionID = eff.SessionID
		sessionID, value := eff.SessionID, eff.Value
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			res, err := gw.SubmitAnswer(ctx, sessionID, value)
			if err != nil {
				return gradedMsg{epoch: eff.Epoch, err: err, transient: gateway.IsTransient(err)}
			}
			return gradedMsg{epoch: eff.Epoch, outcome: domain.GradeOutcome{
				Correct:       res.Correct,
				CorrectAnswer: res.CorrectAnswer,
				Finished:      res.Finished,
				Next:          res.NextQuestion,
			}}
		}

	case domain.EffectStartTimer:
		return tickCmd(eff.TimerGen)

	case domain.EffectScheduleFeedback:
		epoch := eff.Epoch
		return tea.Tick(s.opts.FeedbackDwell, func(time.Time) tea.Msg {
			return feedbackDoneMsg{epoch: epoch}
		})

	case domain.EffectForfeit:
		s.lastSessionID = eff.SessionID
		sessionID := eff.SessionID
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			return forfeitDoneMsg{epoch: eff.Epoch, err: gw.Forfeit(ctx, sessionID)}
		}

	case domain.EffectFetchSummary:
		s.lastSessionID = eff.SessionID
		sessionID := eff.SessionID
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			sum, err := gw.Summary(ctx, sessionID)
			return summaryMsg{epoch: eff.Epoch, summary: sum, err: err}
		}

	case domain.EffectReportScore:
		score, total := eff.Score, eff.Total
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			return scoreReportedMsg{err: gw.ReportPracticeScore(ctx, score, total)}
		}
	}

	return nil
}

func tickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{gen: gen}
	})
}

func popCmd() tea.Cmd {
	return func() tea.Msg { return router.PopScreenMsg{} }
}
