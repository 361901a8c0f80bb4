package match

import (
	"errors"
	"strings"
	"testing"
)

// exactGrader accepts only exact matches; good enough for controller tests.
type exactGrader struct{}

func (exactGrader) Grade(submitted string, q *Question) (bool, string) {
	return strings.EqualFold(strings.TrimSpace(submitted), q.Answer), q.Answer
}

func practiceQuestions(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{
			Index:   i,
			Prompt:  "prompt",
			Kind:    AnswerChoose,
			Choices: []string{"right", "wrong"},
			Answer:  "right",
		}
	}
	return qs
}

func effectKinds(effects []Effect) []EffectKind {
	kinds := make([]EffectKind, len(effects))
	for i, e := range effects {
		kinds[i] = e.Kind
	}
	return kinds
}

func mustSingle(t *testing.T, effects []Effect, kind EffectKind) Effect {
	t.Helper()
	if len(effects) != 1 || effects[0].Kind != kind {
		t.Fatalf("effects = %v, want exactly one of kind %d", effectKinds(effects), kind)
	}
	return effects[0]
}

func startPractice(t *testing.T, ctrl *Controller, n int) {
	t.Helper()
	eff := ctrl.Start(StartParams{Mode: ModePractice, Count: n})
	load := mustSingle(t, eff, EffectLoadPractice)
	if eff := ctrl.PracticeLoaded(load.Epoch, practiceQuestions(n), nil); eff != nil {
		t.Fatalf("unexpected effects after load: %v", effectKinds(eff))
	}
	if ctrl.State() != StateAwaitingAnswer {
		t.Fatalf("state = %v, want awaiting-answer", ctrl.State())
	}
}

func startCasual(t *testing.T, ctrl *Controller, total int) (epoch, gen int) {
	t.Helper()
	eff := ctrl.Start(StartParams{Mode: ModeCasual, Count: total})
	start := mustSingle(t, eff, EffectStartMatch)
	q := Question{Index: 0, Prompt: "q0", Kind: AnswerChoose, Choices: []string{"a", "b"}}
	eff = ctrl.MatchStarted(start.Epoch, Started{SessionID: "s-1", Total: total, Question: q}, nil)
	timer := mustSingle(t, eff, EffectStartTimer)
	return start.Epoch, timer.TimerGen
}

func TestPractice_AllCorrect(t *testing.T) {
	ctrl := NewController(Config{}, exactGrader{})
	startPractice(t, ctrl, 5)

	for i := 0; i < 5; i++ {
		eff := ctrl.Submit("right")
		fb := mustSingle(t, eff, EffectScheduleFeedback)
		if ctrl.State() != StateFeedback {
			t.Fatalf("q%d: state = %v, want feedback", i, ctrl.State())
		}
		ctrl.FeedbackElapsed(fb.Epoch)
	}

	if ctrl.State() != StateFinished {
		t.Fatalf("state = %v, want finished", ctrl.State())
	}
	sum := ctrl.Summary()
	if sum == nil {
		t.Fatal("summary is nil")
	}
	if sum.Score != 5 {
		t.Errorf("Score = %d, want 5", sum.Score)
	}
	if sum.TotalQuestions != 5 || len(sum.Records) != 5 {
		t.Errorf("TotalQuestions = %d, records = %d, want 5/5", sum.TotalQuestions, len(sum.Records))
	}
	if sum.Score > sum.TotalQuestions {
		t.Error("score exceeds total questions")
	}
}

func TestPractice_ScoreReportedOnFinish(t *testing.T) {
	ctrl := NewController(Config{}, exactGrader{})
	startPractice(t, ctrl, 1)

	eff := ctrl.Submit("wrong")
	fb := mustSingle(t, eff, EffectScheduleFeedback)
	eff = ctrl.FeedbackElapsed(fb.Epoch)
	report := mustSingle(t, eff, EffectReportScore)
	if report.Score != 0 || report.Total != 1 {
		t.Errorf("report = %d/%d, want 0/1", report.Score, report.Total)
	}
}

func TestPractice_EmptySubmissionRejected(t *testing.T) {
	ctrl := NewController(Config{}, exactGrader{})
	startPractice(t, ctrl, 1)

	if eff := ctrl.Submit("   "); eff != nil {
		t.Fatalf("blank submit produced effects: %v", effectKinds(eff))
	}
	if ctrl.State() != StateAwaitingAnswer {
		t.Errorf("state = %v, want awaiting-answer", ctrl.State())
	}
}

func TestCasual_TimeoutSubmitsSentinelOnce(t *testing.T) {
	ctrl := NewController(Config{QuestionSeconds: 2}, nil)
	epoch, gen := startCasual(t, ctrl, 2)

	cont, eff := ctrl.TimerTick(gen)
	if !cont || eff != nil {
		t.Fatalf("first tick: cont=%v effects=%v", cont, effectKinds(eff))
	}
	cont, eff = ctrl.TimerTick(gen)
	if cont {
		t.Error("tick loop continued past expiry")
	}
	submit := mustSingle(t, eff, EffectSubmitRemote)
	if submit.Value != TimeExpiredSentinel {
		t.Errorf("submitted %q, want %q", submit.Value, TimeExpiredSentinel)
	}

	// A stale tick after expiry must not synthesize a second submission.
	if _, eff := ctrl.TimerTick(gen); eff != nil {
		t.Fatalf("stale tick produced effects: %v", effectKinds(eff))
	}

	// Server grades the sentinel incorrect; progression continues.
	next := &Question{Index: 1, Prompt: "q1", Kind: AnswerChoose, Choices: []string{"a", "b"}}
	eff = ctrl.Graded(epoch, GradeOutcome{Correct: false, CorrectAnswer: "a", Next: next}, nil, false)
	fb := mustSingle(t, eff, EffectScheduleFeedback)
	rec := ctrl.LastRecord()
	if rec == nil || !rec.TimedOut || rec.Correct {
		t.Fatalf("record = %+v, want timed-out incorrect", rec)
	}

	eff = ctrl.FeedbackElapsed(fb.Epoch)
	mustSingle(t, eff, EffectStartTimer)
	if ctrl.Cursor() != 1 || ctrl.Current().Prompt != "q1" {
		t.Errorf("cursor = %d current = %+v, want next question", ctrl.Cursor(), ctrl.Current())
	}
}

func TestCasual_SubmitAndExpiryRace(t *testing.T) {
	ctrl := NewController(Config{QuestionSeconds: 1}, nil)
	_, gen := startCasual(t, ctrl, 1)

	eff := ctrl.Submit("a")
	mustSingle(t, eff, EffectSubmitRemote)

	// The racing expiry arrives after the submission was observed: dropped.
	if _, eff := ctrl.TimerTick(gen); eff != nil {
		t.Fatalf("expiry after submit produced effects: %v", effectKinds(eff))
	}
	// Re-entrant submit while grading is also dropped.
	if eff := ctrl.Submit("b"); eff != nil {
		t.Fatalf("re-entrant submit produced effects: %v", effectKinds(eff))
	}
	if got := len(ctrl.Records()); got != 0 {
		t.Fatalf("records before verdict = %d, want 0", got)
	}
}

func TestCasual_TransientGradingFailureReturnsToAwaiting(t *testing.T) {
	ctrl := NewController(Config{SubmitRetries: 1}, nil)
	epoch, _ := startCasual(t, ctrl, 2)

	eff := ctrl.Submit("a")
	mustSingle(t, eff, EffectSubmitRemote)

	netErr := errors.New("connection reset")
	eff = ctrl.Graded(epoch, GradeOutcome{}, netErr, true)
	mustSingle(t, eff, EffectStartTimer)
	if ctrl.State() != StateAwaitingAnswer {
		t.Fatalf("state = %v, want awaiting-answer", ctrl.State())
	}
	if len(ctrl.Records()) != 0 {
		t.Error("failed grading consumed the attempt")
	}

	// Budget exhausted: the next transient failure is fatal.
	eff = ctrl.Submit("a")
	mustSingle(t, eff, EffectSubmitRemote)
	ctrl.Graded(epoch, GradeOutcome{}, netErr, true)
	if ctrl.State() != StateAborted {
		t.Fatalf("state = %v, want aborted", ctrl.State())
	}
	if ctrl.Err() == nil {
		t.Error("aborted without an error")
	}
}

func TestCasual_TimeoutSubmissionFailureAborts(t *testing.T) {
	ctrl := NewController(Config{QuestionSeconds: 1, SubmitRetries: 3}, nil)
	epoch, gen := startCasual(t, ctrl, 2)

	_, eff := ctrl.TimerTick(gen)
	mustSingle(t, eff, EffectSubmitRemote)

	// Even a transient failure aborts a synthetic submission.
	ctrl.Graded(epoch, GradeOutcome{}, errors.New("timeout"), true)
	if ctrl.State() != StateAborted {
		t.Fatalf("state = %v, want aborted", ctrl.State())
	}
}

func TestCasual_ExitFlow(t *testing.T) {
	ctrl := NewController(Config{}, nil)
	epoch, _ := startCasual(t, ctrl, 3)

	stateBefore := ctrl.State()
	cursorBefore := ctrl.Cursor()

	if eff := ctrl.RequestExit(); eff != nil {
		t.Fatalf("request exit produced effects: %v", effectKinds(eff))
	}
	if !ctrl.ExitPending() {
		t.Fatal("exit prompt not pending")
	}
	// Second request while pending is a no-op.
	ctrl.RequestExit()

	// Decline leaves the controller exactly where it was.
	ctrl.CancelExitPrompt()
	if ctrl.ExitPending() || ctrl.State() != stateBefore || ctrl.Cursor() != cursorBefore {
		t.Fatal("cancel exit prompt changed controller state")
	}

	// Confirm forfeits once, fetches the summary once, finishes.
	ctrl.RequestExit()
	eff := ctrl.ConfirmExit()
	forfeit := mustSingle(t, eff, EffectForfeit)
	if forfeit.SessionID != "s-1" {
		t.Errorf("forfeit session = %q, want s-1", forfeit.SessionID)
	}
	eff = ctrl.ForfeitDone(epoch, nil)
	mustSingle(t, eff, EffectFetchSummary)
	if ctrl.State() != StateFinished {
		t.Fatalf("state = %v, want finished", ctrl.State())
	}

	sum := &Summary{Score: 10, TotalQuestions: 3, BaseScore: 10, DifficultyMultiplier: 1.5}
	ctrl.SummaryFetched(epoch, sum, nil)
	if ctrl.Summary() != sum {
		t.Error("summary not stored")
	}
}

func TestCasual_SummaryRetry(t *testing.T) {
	ctrl := NewController(Config{}, nil)
	epoch, _ := startCasual(t, ctrl, 1)

	eff := ctrl.Submit("a")
	mustSingle(t, eff, EffectSubmitRemote)
	eff = ctrl.Graded(epoch, GradeOutcome{Correct: true, CorrectAnswer: "a"}, nil, false)
	fb := mustSingle(t, eff, EffectScheduleFeedback)
	eff = ctrl.FeedbackElapsed(fb.Epoch)
	mustSingle(t, eff, EffectFetchSummary)

	ctrl.SummaryFetched(epoch, nil, errors.New("503"))
	if ctrl.State() != StateFinished || ctrl.SummaryErr() == nil {
		t.Fatalf("state = %v err = %v, want finished with summary error", ctrl.State(), ctrl.SummaryErr())
	}

	eff = ctrl.RetrySummary()
	mustSingle(t, eff, EffectFetchSummary)
	ctrl.SummaryFetched(epoch, &Summary{Score: 1, TotalQuestions: 1}, nil)
	if ctrl.Summary() == nil || ctrl.SummaryErr() != nil {
		t.Error("retried summary not stored")
	}
}

func TestCasual_ConfirmExitDuringFeedback(t *testing.T) {
	ctrl := NewController(Config{}, nil)
	epoch, _ := startCasual(t, ctrl, 3)

	eff := ctrl.Submit("a")
	mustSingle(t, eff, EffectSubmitRemote)
	next := &Question{Index: 1, Prompt: "q1", Kind: AnswerChoose, Choices: []string{"a", "b"}}
	eff = ctrl.Graded(epoch, GradeOutcome{Correct: true, CorrectAnswer: "a", Next: next}, nil, false)
	fb := mustSingle(t, eff, EffectScheduleFeedback)

	ctrl.RequestExit()
	mustSingle(t, ctrl.ConfirmExit(), EffectForfeit)

	// The dwell scheduled before the confirm still fires while the forfeit
	// is in flight. It must not advance the session or restart the clock.
	if eff := ctrl.FeedbackElapsed(fb.Epoch); eff != nil {
		t.Fatalf("dwell after confirm produced effects: %v", effectKinds(eff))
	}
	if ctrl.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", ctrl.Cursor())
	}

	eff = ctrl.ForfeitDone(epoch, nil)
	mustSingle(t, eff, EffectFetchSummary)
	if ctrl.State() != StateFinished {
		t.Fatalf("state = %v, want finished", ctrl.State())
	}
}

func TestCasual_ConfirmExitStopsQuestionClock(t *testing.T) {
	ctrl := NewController(Config{QuestionSeconds: 1}, nil)
	epoch, gen := startCasual(t, ctrl, 2)

	ctrl.RequestExit()
	mustSingle(t, ctrl.ConfirmExit(), EffectForfeit)

	// A tick the runner already had queued must not synthesize a timeout
	// submission against the dying session.
	if cont, eff := ctrl.TimerTick(gen); cont || eff != nil {
		t.Fatalf("tick after confirm: cont = %v, effects = %v", cont, effectKinds(eff))
	}

	mustSingle(t, ctrl.ForfeitDone(epoch, nil), EffectFetchSummary)
	if ctrl.State() != StateFinished {
		t.Fatalf("state = %v, want finished", ctrl.State())
	}
}

func TestCasual_AuthorityFinishedFlagEndsMatchEarly(t *testing.T) {
	ctrl := NewController(Config{}, nil)
	epoch, _ := startCasual(t, ctrl, 5)

	eff := ctrl.Submit("a")
	mustSingle(t, eff, EffectSubmitRemote)
	eff = ctrl.Graded(epoch, GradeOutcome{Correct: true, CorrectAnswer: "a", Finished: true}, nil, false)
	fb := mustSingle(t, eff, EffectScheduleFeedback)

	// The server may close a match before the announced count. Its verdict
	// wins over local cursor arithmetic.
	eff = ctrl.FeedbackElapsed(fb.Epoch)
	mustSingle(t, eff, EffectFetchSummary)
	if ctrl.State() != StateFinished {
		t.Fatalf("state = %v, want finished", ctrl.State())
	}
	if len(ctrl.Records()) != 1 {
		t.Errorf("records = %d, want 1", len(ctrl.Records()))
	}
}

func TestEntitlementFailureAborts(t *testing.T) {
	ctrl := NewController(Config{}, nil)
	eff := ctrl.Start(StartParams{Mode: ModeTournament, Count: 5})
	start := mustSingle(t, eff, EffectStartMatch)

	wantErr := errors.New("no attempts remaining")
	ctrl.MatchStarted(start.Epoch, Started{}, wantErr)
	if ctrl.State() != StateAborted || !errors.Is(ctrl.Err(), wantErr) {
		t.Fatalf("state = %v err = %v, want aborted with entitlement error", ctrl.State(), ctrl.Err())
	}
}

func TestRestartDiscardsStaleResponses(t *testing.T) {
	ctrl := NewController(Config{}, exactGrader{})
	eff := ctrl.Start(StartParams{Mode: ModeCasual, Count: 3})
	oldStart := mustSingle(t, eff, EffectStartMatch)

	// Rapid restart into practice before the first session resolves.
	startPractice(t, ctrl, 2)

	// The stale create-response must not clobber the new session.
	q := Question{Index: 0, Prompt: "stale"}
	if eff := ctrl.MatchStarted(oldStart.Epoch, Started{SessionID: "old", Total: 3, Question: q}, nil); eff != nil {
		t.Fatalf("stale response produced effects: %v", effectKinds(eff))
	}
	if ctrl.Mode() != ModePractice || ctrl.Current().Prompt == "stale" {
		t.Fatal("stale response mutated the new session")
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	ctrl := NewController(Config{}, exactGrader{})
	startPractice(t, ctrl, 3)

	answers := []string{"right", "wrong", "right"}
	for _, a := range answers {
		fb := mustSingle(t, ctrl.Submit(a), EffectScheduleFeedback)
		ctrl.FeedbackElapsed(fb.Epoch)
	}

	sum := ctrl.Summary()
	if sum.TotalQuestions != ctrl.Total() {
		t.Errorf("summary total = %d, controller total = %d", sum.TotalQuestions, ctrl.Total())
	}
	if len(sum.Records) != sum.TotalQuestions {
		t.Errorf("record count = %d, want %d", len(sum.Records), sum.TotalQuestions)
	}
	if sum.Score != 2 {
		t.Errorf("score = %d, want 2", sum.Score)
	}
	for i, rec := range sum.Records {
		if rec.QuestionIndex != i {
			t.Errorf("record %d has index %d", i, rec.QuestionIndex)
		}
	}
}

func TestPracticeExitDiscardsImmediately(t *testing.T) {
	ctrl := NewController(Config{}, exactGrader{})
	startPractice(t, ctrl, 2)

	ctrl.RequestExit()
	if ctrl.State() != StateAborted || !errors.Is(ctrl.Err(), ErrExited) {
		t.Fatalf("state = %v err = %v, want aborted with ErrExited", ctrl.State(), ctrl.Err())
	}
}
