package match

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/quizdash/quizdash/internal/gateway"
	"github.com/quizdash/quizdash/internal/grader"
	domain "github.com/quizdash/quizdash/internal/match"
	"github.com/quizdash/quizdash/internal/screen"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func chooseQuestion(idx int) domain.Question {
	return domain.Question{
		Index:   idx,
		Prompt:  "Capital of France?",
		Kind:    domain.AnswerChoose,
		Choices: []string{"Paris", "Lyon", "Nice", "Lille"},
		Answer:  "Paris",
	}
}

func testScreen(gw *gateway.Mock, mode domain.Mode) *Screen {
	opts := Options{
		Gateway:       gw,
		Grader:        grader.NewLocal(0),
		FeedbackDwell: time.Millisecond,
	}
	return New(opts, domain.StartParams{Mode: mode, Count: 3})
}

// drive runs a command synchronously and feeds the resulting message back.
func drive(t *testing.T, s *Screen, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				drive(t, s, c)
			}
			return
		}
		switch msg.(type) {
		case practiceLoadedMsg, matchStartedMsg, gradedMsg, forfeitDoneMsg,
			summaryMsg, scoreReportedMsg, historySavedMsg:
			_, cmd = s.Update(msg)
		default:
			// Timer ticks and dwell timers are tested through the
			// controller; don't spin on them here.
			return
		}
	}
}

func startedCasual(t *testing.T, gw *gateway.Mock) *Screen {
	t.Helper()
	gw.StartMatchFn = func(_ context.Context, p gateway.MatchParams) (*gateway.MatchSnapshot, error) {
		return &gateway.MatchSnapshot{
			SessionID:      "sess-1",
			TotalQuestions: 3,
			Cursor:         0,
			Question:       chooseQuestion(0),
		}, nil
	}
	s := testScreen(gw, domain.ModeCasual)
	drive(t, s, s.Init())
	if s.ctrl.State() != domain.StateAwaitingAnswer {
		t.Fatalf("setup: state = %v, want AwaitingAnswer", s.ctrl.State())
	}
	return s
}

func TestMatchScreen_Titles(t *testing.T) {
	tests := []struct {
		mode domain.Mode
		want string
	}{
		{domain.ModePractice, "Practice"},
		{domain.ModeCasual, "Casual Match"},
		{domain.ModeTournament, "Tournament"},
	}
	for _, tt := range tests {
		s := testScreen(&gateway.Mock{}, tt.mode)
		if got := s.Title(); got != tt.want {
			t.Errorf("Title(%v) = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestMatchScreen_PracticeLoads(t *testing.T) {
	gw := &gateway.Mock{
		CreatePracticeSetFn: func(_ context.Context, p gateway.PracticeParams) ([]domain.Question, error) {
			return []domain.Question{chooseQuestion(0), chooseQuestion(1)}, nil
		},
	}
	s := testScreen(gw, domain.ModePractice)
	drive(t, s, s.Init())

	if s.ctrl.State() != domain.StateAwaitingAnswer {
		t.Fatalf("state = %v, want AwaitingAnswer", s.ctrl.State())
	}
	if !s.mcActive {
		t.Error("expected multi-choice component for a choose question")
	}
	if gw.CallCount("CreatePracticeSet") != 1 {
		t.Errorf("CreatePracticeSet calls = %d, want 1", gw.CallCount("CreatePracticeSet"))
	}
}

func TestMatchScreen_ResumeTakesPriority(t *testing.T) {
	gw := &gateway.Mock{
		ActiveMatchFn: func(_ context.Context) (*gateway.MatchSnapshot, error) {
			return &gateway.MatchSnapshot{
				SessionID:      "sess-old",
				TotalQuestions: 5,
				Cursor:         3,
				Question:       chooseQuestion(3),
			}, nil
		},
	}
	s := testScreen(gw, domain.ModeCasual)
	drive(t, s, s.Init())

	if s.ctrl.Cursor() != 3 {
		t.Errorf("cursor = %d, want 3 after resume", s.ctrl.Cursor())
	}
	if gw.CallCount("StartMatch") != 0 {
		t.Error("expected no StartMatch call when an active session exists")
	}
}

func TestMatchScreen_SubmitChoiceGoesRemote(t *testing.T) {
	gw := &gateway.Mock{}
	s := startedCasual(t, gw)

	var submitted string
	gw.SubmitAnswerFn = func(_ context.Context, sessionID, value string) (*gateway.SubmitResult, error) {
		submitted = value
		return &gateway.SubmitResult{Correct: true, CorrectAnswer: "Paris"}, nil
	}

	var scr screen.Screen = s
	scr, cmd := scr.Update(specialKey(tea.KeyEnter))
	drive(t, scr.(*Screen), cmd)

	if submitted != "Paris" {
		t.Errorf("submitted %q, want %q", submitted, "Paris")
	}
	if s.ctrl.State() != domain.StateFeedback {
		t.Errorf("state = %v, want Feedback", s.ctrl.State())
	}
}

func TestMatchScreen_ExitConfirmFlow(t *testing.T) {
	gw := &gateway.Mock{}
	s := startedCasual(t, gw)

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyEscape))
	if !s.ctrl.ExitPending() {
		t.Fatal("expected exit prompt after Esc")
	}

	// N keeps playing.
	scr, _ = scr.Update(keyPress('n'))
	if s.ctrl.ExitPending() {
		t.Fatal("expected prompt dismissed after N")
	}

	// Esc then Y forfeits and fetches the summary.
	gw.ForfeitFn = func(_ context.Context, sessionID string) error { return nil }
	gw.SummaryFn = func(_ context.Context, sessionID string) (*domain.Summary, error) {
		return &domain.Summary{Score: 1, TotalQuestions: 3}, nil
	}
	scr, _ = scr.Update(specialKey(tea.KeyEscape))
	_, cmd := scr.Update(keyPress('y'))
	drive(t, s, cmd)

	if gw.CallCount("Forfeit") != 1 {
		t.Errorf("Forfeit calls = %d, want 1", gw.CallCount("Forfeit"))
	}
	if s.ctrl.State() != domain.StateFinished {
		t.Errorf("state = %v, want Finished", s.ctrl.State())
	}
	if s.ctrl.Summary() == nil {
		t.Error("expected summary after forfeit")
	}
}

func TestMatchScreen_AdvanceResetsOnRepeatedWireIndex(t *testing.T) {
	gw := &gateway.Mock{}
	s := startedCasual(t, gw)

	// Some servers restart the wire index per batch. Advancement keys on the
	// session position, so the components must still reset.
	next := domain.Question{
		Index:   0,
		Prompt:  "Largest ocean?",
		Kind:    domain.AnswerChoose,
		Choices: []string{"Pacific", "Atlantic"},
		Answer:  "Pacific",
	}
	gw.SubmitAnswerFn = func(_ context.Context, sessionID, value string) (*gateway.SubmitResult, error) {
		return &gateway.SubmitResult{Correct: true, CorrectAnswer: "Paris", NextQuestion: &next}, nil
	}

	var scr screen.Screen = s
	scr, cmd := scr.Update(specialKey(tea.KeyEnter))
	drive(t, scr.(*Screen), cmd)
	if s.ctrl.State() != domain.StateFeedback {
		t.Fatalf("state = %v, want Feedback", s.ctrl.State())
	}

	_, cmd = s.Update(feedbackDoneMsg{epoch: epochOf(s)})
	drive(t, s, cmd)

	if s.ctrl.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", s.ctrl.Cursor())
	}
	if s.mc.Submitted {
		t.Error("expected a fresh choice component for the next question")
	}
	if s.mc.Prompt != "Largest ocean?" {
		t.Errorf("prompt = %q, want the next question's", s.mc.Prompt)
	}
}

func TestMatchScreen_TransientSubmitFailureShowsNotice(t *testing.T) {
	gw := &gateway.Mock{}
	s := startedCasual(t, gw)

	gw.SubmitAnswerFn = func(_ context.Context, sessionID, value string) (*gateway.SubmitResult, error) {
		return nil, &gateway.TransientError{Op: "submit answer", Err: context.DeadlineExceeded}
	}

	var scr screen.Screen = s
	scr, cmd := scr.Update(specialKey(tea.KeyEnter))
	drive(t, scr.(*Screen), cmd)

	if s.ctrl.State() != domain.StateAwaitingAnswer {
		t.Fatalf("state = %v, want AwaitingAnswer after transient failure", s.ctrl.State())
	}
	if s.notice == "" {
		t.Error("expected a retry notice")
	}
	if s.mc.Submitted {
		t.Error("expected choice component reset for the retry")
	}
}

func TestMatchScreen_NoAttemptsAborts(t *testing.T) {
	gw := &gateway.Mock{
		StartMatchFn: func(_ context.Context, p gateway.MatchParams) (*gateway.MatchSnapshot, error) {
			return nil, gateway.ErrNoAttempts
		},
	}
	s := testScreen(gw, domain.ModeTournament)
	drive(t, s, s.Init())

	if s.ctrl.State() != domain.StateAborted {
		t.Fatalf("state = %v, want Aborted", s.ctrl.State())
	}
	view := s.View(80, 24)
	if view == "" {
		t.Error("expected non-empty aborted view")
	}
}

func TestMatchScreen_SummaryRetry(t *testing.T) {
	gw := &gateway.Mock{}
	s := startedCasual(t, gw)

	failing := true
	gw.SubmitAnswerFn = func(_ context.Context, sessionID, value string) (*gateway.SubmitResult, error) {
		next := chooseQuestion(1)
		return &gateway.SubmitResult{Correct: true, CorrectAnswer: "Paris", NextQuestion: &next}, nil
	}
	gw.SummaryFn = func(_ context.Context, sessionID string) (*domain.Summary, error) {
		if failing {
			return nil, &gateway.TransientError{Op: "fetch summary", Err: context.DeadlineExceeded}
		}
		return &domain.Summary{Score: 3, TotalQuestions: 3}, nil
	}

	// Walk the whole match through the controller directly; the screen's
	// effect runner maps the same events.
	for i := 0; i < 3; i++ {
		drive(t, s, s.runEffects(s.ctrl.Submit("Paris")))
		drive(t, s, s.runEffects(s.ctrl.FeedbackElapsed(epochOf(s))))
	}

	if s.ctrl.State() != domain.StateFinished {
		t.Fatalf("state = %v, want Finished", s.ctrl.State())
	}
	if s.ctrl.SummaryErr() == nil {
		t.Fatal("expected summary error while gateway failing")
	}

	failing = false
	var scr screen.Screen = s
	_, cmd := scr.Update(keyPress('r'))
	drive(t, s, cmd)

	if s.ctrl.Summary() == nil {
		t.Error("expected summary after retry")
	}
}

func TestMatchScreen_KeyHints(t *testing.T) {
	gw := &gateway.Mock{}
	s := startedCasual(t, gw)
	if len(s.KeyHints()) == 0 {
		t.Error("expected key hints while awaiting answer")
	}
}

func TestMatchScreen_HandlesEsc(t *testing.T) {
	s := testScreen(&gateway.Mock{}, domain.ModeCasual)
	if !s.HandlesEsc() {
		t.Error("match screen must own Esc handling")
	}
}

// epochOf extracts the live epoch by issuing a no-op effect batch.
func epochOf(s *Screen) int {
	return s.ctrl.Epoch()
}
