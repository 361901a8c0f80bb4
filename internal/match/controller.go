package match

import (
	"errors"
	"strings"
)

// TimeExpiredSentinel is the synthetic submission produced by timer expiry.
const TimeExpiredSentinel = "Time expired"

// ErrExited marks a session the player abandoned deliberately (practice
// exit). It is an abort cause, not a failure.
var ErrExited = errors.New("session exited")

// Config carries the policy constants of a controller. Zero values are
// replaced with the defaults the product shipped with.
type Config struct {
	// QuestionSeconds is the fixed per-question countdown for
	// authoritative modes.
	QuestionSeconds int

	// SubmitRetries is how many transient remote-grading failures per
	// question are absorbed silently (returning to AwaitingAnswer) before
	// the next one aborts the match.
	SubmitRetries int
}

func (c Config) withDefaults() Config {
	if c.QuestionSeconds <= 0 {
		c.QuestionSeconds = 15
	}
	if c.SubmitRetries < 0 {
		c.SubmitRetries = 0
	}
	return c
}

// EffectKind enumerates the async work a controller transition requests.
type EffectKind int

const (
	// EffectLoadPractice fetches the full practice question list.
	EffectLoadPractice EffectKind = iota
	// EffectStartMatch creates or resumes an authoritative session.
	EffectStartMatch
	// EffectSubmitRemote sends the pending submission for server grading.
	EffectSubmitRemote
	// EffectStartTimer schedules the tick loop for the given generation.
	EffectStartTimer
	// EffectScheduleFeedback schedules the feedback dwell.
	EffectScheduleFeedback
	// EffectForfeit forfeits the authoritative session.
	EffectForfeit
	// EffectFetchSummary requests the authoritative summary.
	EffectFetchSummary
	// EffectReportScore reports a practice score, fire-and-forget.
	EffectReportScore
)

// Effect describes one piece of async work for the shell driving the
// controller. Results come back as events stamped with the same epoch;
// events from an older epoch are discarded.
type Effect struct {
	Kind      EffectKind
	Epoch     int
	Params    StartParams // EffectLoadPractice, EffectStartMatch
	SessionID string      // EffectSubmitRemote, EffectForfeit, EffectFetchSummary
	Value     string      // EffectSubmitRemote
	TimerGen  int         // EffectStartTimer
	Score     int         // EffectReportScore
	Total     int         // EffectReportScore
}

// Started is the result of creating or resuming an authoritative session.
type Started struct {
	SessionID string
	Total     int
	Cursor    int
	Question  Question
}

// GradeOutcome is the server's verdict for one submission. Next carries the
// question streamed back with the verdict, nil on the last question.
type GradeOutcome struct {
	Correct       bool
	CorrectAnswer string
	Finished      bool
	Next          *Question
}

type pendingSubmission struct {
	value    string
	timedOut bool
}

// Controller owns one match session from start request to summary. It is a
// single-goroutine state machine: every method must be called from the same
// event loop, mutates state synchronously, and returns the effects the shell
// must run. It performs no I/O itself.
//
// On resume, records of questions answered before the interruption are not
// reconstructed; the server's summary remains complete regardless.
type Controller struct {
	cfg    Config
	grader Grader

	epoch     int
	state     State
	mode      Mode
	sessionID string
	total     int
	cursor    int
	score     int

	questions []Question // practice: the whole ordered set
	current   *Question
	next      *Question // authoritative: streamed with the previous verdict
	records   []AnswerRecord

	timer          *Countdown
	pending        *pendingSubmission
	submitFailures int // transient grading failures on the current question

	exitPending    bool
	forfeitPending bool
	remoteDone     bool // authority declared the match finished with the last verdict
	summary        *Summary
	summaryPending bool
	summaryErr     error
	abortErr       error
}

// NewController creates an idle controller. The grader is only consulted for
// practice sessions and may be nil when only authoritative modes are played.
func NewController(cfg Config, grader Grader) *Controller {
	cfg = cfg.withDefaults()
	return &Controller{
		cfg:    cfg,
		grader: grader,
		state:  StateIdle,
		timer:  NewCountdown(cfg.QuestionSeconds),
	}
}

// Observations exposed to the shell. All read-only.

func (c *Controller) State() State             { return c.state }
func (c *Controller) Epoch() int               { return c.epoch }
func (c *Controller) Mode() Mode               { return c.mode }
func (c *Controller) Cursor() int              { return c.cursor }
func (c *Controller) Total() int               { return c.total }
func (c *Controller) Score() int               { return c.score }
func (c *Controller) Current() *Question       { return c.current }
func (c *Controller) Remaining() int           { return c.timer.Remaining() }
func (c *Controller) ExitPending() bool        { return c.exitPending }
func (c *Controller) ForfeitPending() bool     { return c.forfeitPending }
func (c *Controller) Summary() *Summary        { return c.summary }
func (c *Controller) Err() error               { return c.abortErr }
func (c *Controller) SummaryErr() error        { return c.summaryErr }
func (c *Controller) SummaryPending() bool     { return c.summaryPending }

// Records returns the append-only graded answers so far.
func (c *Controller) Records() []AnswerRecord { return c.records }

// LastRecord returns the most recent graded answer for feedback rendering,
// nil before the first grading.
func (c *Controller) LastRecord() *AnswerRecord {
	if len(c.records) == 0 {
		return nil
	}
	return &c.records[len(c.records)-1]
}

// Start begins a new session, tearing down whatever came before. Only one
// session is ever active: the epoch bump makes any in-flight response of the
// previous session stale.
func (c *Controller) Start(p StartParams) []Effect {
	c.teardown()
	c.epoch++
	c.state = StateLoading
	c.mode = p.Mode
	c.sessionID = ""
	c.total = p.Count
	c.cursor = 0
	c.score = 0
	c.questions = nil
	c.records = nil
	c.summary = nil
	c.abortErr = nil

	if p.Mode == ModePractice {
		return []Effect{{Kind: EffectLoadPractice, Epoch: c.epoch, Params: p}}
	}
	return []Effect{{Kind: EffectStartMatch, Epoch: c.epoch, Params: p}}
}

// PracticeLoaded resolves the Loading state of a practice session.
func (c *Controller) PracticeLoaded(epoch int, qs []Question, err error) []Effect {
	if epoch != c.epoch || c.state != StateLoading {
		return nil
	}
	if err != nil {
		return c.abort(err)
	}
	if len(qs) == 0 {
		return c.abort(errors.New("empty practice set"))
	}
	c.questions = qs
	c.total = len(qs)
	c.cursor = 0
	c.current = &c.questions[0]
	c.state = StateAwaitingAnswer
	// Practice has no countdown.
	return nil
}

// MatchStarted resolves the Loading state of an authoritative session,
// whether freshly created or resumed.
func (c *Controller) MatchStarted(epoch int, s Started, err error) []Effect {
	if epoch != c.epoch || c.state != StateLoading {
		return nil
	}
	if err != nil {
		return c.abort(err)
	}
	c.sessionID = s.SessionID
	c.total = s.Total
	c.cursor = s.Cursor
	q := s.Question
	c.current = &q
	c.state = StateAwaitingAnswer
	return c.startTimer()
}

// Submit handles a player submission. Free text must be non-empty once
// trimmed; the UI blocks empty submits but the controller rejects them too.
// A submission observed outside AwaitingAnswer is dropped, which makes the
// race between player input and timer expiry first-observed-wins.
func (c *Controller) Submit(value string) []Effect {
	if c.state != StateAwaitingAnswer || c.current == nil || c.forfeitPending {
		return nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return c.beginGrading(value, false)
}

// TimerTick consumes one tick of the question clock. cont tells the shell
// whether to schedule the next tick for this generation.
func (c *Controller) TimerTick(gen int) (cont bool, effects []Effect) {
	_, expired, ok := c.timer.Tick(gen)
	if !ok {
		return false, nil
	}
	if !expired {
		return true, nil
	}
	// The timer is stopped on every transition out of AwaitingAnswer, so an
	// expiring tick should only ever arrive there. Guard anyway: a tick that
	// slipped through must not regress a later state.
	if c.state != StateAwaitingAnswer || c.forfeitPending {
		return false, nil
	}
	// Expiry synthesizes a sentinel submission.
	return false, c.beginGrading(TimeExpiredSentinel, true)
}

func (c *Controller) beginGrading(value string, timedOut bool) []Effect {
	c.timer.Stop()
	c.state = StateGrading

	if c.mode == ModePractice {
		correct, answer := c.grader.Grade(value, c.current)
		if correct {
			c.score++
		}
		c.appendRecord(value, correct, answer, timedOut)
		c.state = StateFeedback
		return []Effect{{Kind: EffectScheduleFeedback, Epoch: c.epoch}}
	}

	c.pending = &pendingSubmission{value: value, timedOut: timedOut}
	return []Effect{{
		Kind:      EffectSubmitRemote,
		Epoch:     c.epoch,
		SessionID: c.sessionID,
		Value:     value,
	}}
}

// Graded resolves a remote grading call. transient marks errors the player
// may retry by resubmitting.
func (c *Controller) Graded(epoch int, outcome GradeOutcome, err error, transient bool) []Effect {
	if epoch != c.epoch || c.state != StateGrading || c.pending == nil || c.forfeitPending {
		return nil
	}
	pending := c.pending
	c.pending = nil

	if err != nil {
		// A synthetic submission the server rejected cannot be retyped
		// by the player; the match would stall. Abort.
		if pending.timedOut {
			return c.abort(err)
		}
		if transient && c.submitFailures < c.cfg.SubmitRetries {
			c.submitFailures++
			c.state = StateAwaitingAnswer
			return c.startTimer()
		}
		return c.abort(err)
	}

	c.appendRecord(pending.value, outcome.Correct, outcome.CorrectAnswer, pending.timedOut)
	c.next = outcome.Next
	c.remoteDone = outcome.Finished
	c.state = StateFeedback
	return []Effect{{Kind: EffectScheduleFeedback, Epoch: c.epoch}}
}

// FeedbackElapsed ends the feedback dwell: advance to the next question or
// finish the session.
func (c *Controller) FeedbackElapsed(epoch int) []Effect {
	if epoch != c.epoch || c.state != StateFeedback || c.forfeitPending {
		return nil
	}
	c.submitFailures = 0

	if c.mode == ModePractice {
		if c.cursor+1 < c.total {
			c.cursor++
			c.current = &c.questions[c.cursor]
			c.state = StateAwaitingAnswer
			return nil
		}
		return c.finish()
	}

	// The authority decides when its match ends: the finished flag on the
	// last verdict ends the session even mid-count. The announced length
	// still caps progress when a verdict omits the flag.
	if c.remoteDone || c.cursor+1 >= c.total {
		return c.finish()
	}
	if c.next != nil {
		c.cursor++
		c.current = c.next
		c.next = nil
		c.state = StateAwaitingAnswer
		return c.startTimer()
	}
	return c.abort(errors.New("authority did not stream the next question"))
}

func (c *Controller) finish() []Effect {
	c.state = StateFinished
	c.current = nil

	if c.mode == ModePractice {
		records := make([]AnswerRecord, len(c.records))
		copy(records, c.records)
		c.summary = &Summary{
			Score:          c.score,
			TotalQuestions: c.total,
			Records:        records,
		}
		return []Effect{{
			Kind:  EffectReportScore,
			Epoch: c.epoch,
			Score: c.score,
			Total: c.total,
		}}
	}

	c.summaryPending = true
	return []Effect{{Kind: EffectFetchSummary, Epoch: c.epoch, SessionID: c.sessionID}}
}

// SummaryFetched resolves the summary request of a finished authoritative
// session. A failure leaves the session Finished but summary-less; the
// player retries via RetrySummary. No partial summary is fabricated.
func (c *Controller) SummaryFetched(epoch int, s *Summary, err error) []Effect {
	if epoch != c.epoch || c.state != StateFinished || !c.summaryPending {
		return nil
	}
	if err != nil {
		c.summaryErr = err
		return nil
	}
	c.summaryPending = false
	c.summaryErr = nil
	c.summary = s
	return nil
}

// RetrySummary re-issues the summary request after a failed fetch.
func (c *Controller) RetrySummary() []Effect {
	if c.state != StateFinished || !c.summaryPending || c.summaryErr == nil {
		return nil
	}
	c.summaryErr = nil
	return []Effect{{Kind: EffectFetchSummary, Epoch: c.epoch, SessionID: c.sessionID}}
}

// RequestExit raises the exit flow. Practice sessions just discard local
// state; authoritative sessions gate the forfeit behind confirmation, and
// the question clock keeps running while the prompt is up. A second request
// while one is pending, or while a forfeit is already in flight, is a no-op.
func (c *Controller) RequestExit() []Effect {
	if c.state.Terminal() || c.state == StateIdle || c.forfeitPending {
		return nil
	}
	if c.mode == ModePractice {
		return c.abort(ErrExited)
	}
	c.exitPending = true
	return nil
}

// ConfirmExit forfeits the match and converts it into a summary. While the
// forfeit is in flight every other progression event (grading verdicts,
// feedback dwell, timer expiry) is suppressed: the session's only remaining
// transition is ForfeitDone.
func (c *Controller) ConfirmExit() []Effect {
	if !c.exitPending {
		return nil
	}
	c.exitPending = false
	c.timer.Stop()
	c.pending = nil
	c.next = nil
	if c.sessionID == "" {
		// Confirmed before the authority ever created the session;
		// nothing to forfeit.
		return c.abort(ErrExited)
	}
	c.forfeitPending = true
	return []Effect{{Kind: EffectForfeit, Epoch: c.epoch, SessionID: c.sessionID}}
}

// CancelExitPrompt dismisses the confirmation, leaving everything else
// untouched.
func (c *Controller) CancelExitPrompt() {
	c.exitPending = false
}

// ForfeitDone resolves the forfeit call. Success finishes the session with
// whatever partial score the authority reports; failure aborts, since the
// server-side fate of the match is unknown and resume is the recovery path.
func (c *Controller) ForfeitDone(epoch int, err error) []Effect {
	if epoch != c.epoch || c.state.Terminal() || !c.forfeitPending {
		return nil
	}
	c.forfeitPending = false
	c.timer.Stop()
	if err != nil {
		return c.abort(err)
	}
	c.state = StateFinished
	c.current = nil
	c.summaryPending = true
	return []Effect{{Kind: EffectFetchSummary, Epoch: c.epoch, SessionID: c.sessionID}}
}

// Teardown cancels the session without recording an outcome. Used when the
// shell is discarded while a session is live.
func (c *Controller) Teardown() {
	c.teardown()
	c.epoch++
}

func (c *Controller) startTimer() []Effect {
	gen := c.timer.Start()
	return []Effect{{Kind: EffectStartTimer, Epoch: c.epoch, TimerGen: gen}}
}

func (c *Controller) appendRecord(value string, correct bool, answer string, timedOut bool) {
	rec := AnswerRecord{
		QuestionIndex: c.cursor,
		Submitted:     value,
		Correct:       correct,
		CorrectAnswer: answer,
		TimedOut:      timedOut,
	}
	c.records = append(c.records, rec)
}

func (c *Controller) abort(err error) []Effect {
	c.teardown()
	c.state = StateAborted
	c.abortErr = err
	// Terminal states invalidate every outstanding effect.
	c.epoch++
	return nil
}

func (c *Controller) teardown() {
	c.timer.Stop()
	c.pending = nil
	c.next = nil
	c.current = nil
	c.exitPending = false
	c.forfeitPending = false
	c.remoteDone = false
	c.summaryPending = false
	c.summaryErr = nil
	c.submitFailures = 0
}
