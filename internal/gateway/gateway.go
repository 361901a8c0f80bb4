// Package gateway is the client of the quizdash match service. It is the
// only component that talks to the network: the controller sees the narrow
// Gateway interface and the error taxonomy in errors.go, never transport
// details.
package gateway

import (
	"context"

	"github.com/quizdash/quizdash/internal/match"
)

// PracticeParams selects the content of a practice set.
type PracticeParams struct {
	Count    int
	Category string
	GameMode string
	Tags     []string
}

// MatchParams selects the content of an authoritative match.
type MatchParams struct {
	Mode     match.Mode
	Count    int
	Category string
	GameMode string
}

// MatchSnapshot is the authority's view of a session: the first question on
// create, the current question and cursor on resume.
type MatchSnapshot struct {
	SessionID      string
	TotalQuestions int
	Cursor         int
	Question       match.Question
}

// SubmitResult is the authority's verdict for one answer. NextQuestion is
// streamed back with the verdict and is nil when the match is finished.
type SubmitResult struct {
	Correct       bool
	CorrectAnswer string
	Finished      bool
	NextQuestion  *match.Question
}

// Gateway is the remote match authority. Implementations hold no session
// state between calls; the server is the source of truth.
type Gateway interface {
	// CreatePracticeSet fetches an ordered question list, answers included.
	CreatePracticeSet(ctx context.Context, p PracticeParams) ([]match.Question, error)

	// StartMatch creates an authoritative session and returns its first
	// question. Fails with ErrNoAttempts when the player has no remaining
	// entitlement.
	StartMatch(ctx context.Context, p MatchParams) (*MatchSnapshot, error)

	// ActiveMatch returns the interrupted session to resume, or nil when
	// there is none.
	ActiveMatch(ctx context.Context) (*MatchSnapshot, error)

	// SubmitAnswer grades a submission server-side.
	SubmitAnswer(ctx context.Context, sessionID, value string) (*SubmitResult, error)

	// Forfeit abandons the session, converting it into a partial result.
	Forfeit(ctx context.Context, sessionID string) error

	// Summary fetches the terminal report of a finished session.
	Summary(ctx context.Context, sessionID string) (*match.Summary, error)

	// ReportPracticeScore records a practice result. Fire-and-forget:
	// callers log failures and move on.
	ReportPracticeScore(ctx context.Context, score, totalQuestions int) error
}
