package match

import (
	domain "github.com/quizdash/quizdash/internal/match"
)

// practiceLoadedMsg resolves the practice set fetch.
type practiceLoadedMsg struct {
	epoch     int
	questions []domain.Question
	err       error
}

// matchStartedMsg resolves session creation or resume.
type matchStartedMsg struct {
	epoch   int
	started domain.Started
	err     error
}

// gradedMsg resolves a remote grading call.
type gradedMsg struct {
	epoch     int
	outcome   domain.GradeOutcome
	err       error
	transient bool
}

// timerTickMsg is one second of the question clock for a timer generation.
type timerTickMsg struct {
	gen int
}

// feedbackDoneMsg ends the feedback dwell.
type feedbackDoneMsg struct {
	epoch int
}

// forfeitDoneMsg resolves the forfeit call.
type forfeitDoneMsg struct {
	epoch int
	err   error
}

// summaryMsg resolves the summary fetch.
type summaryMsg struct {
	epoch   int
	summary *domain.Summary
	err     error
}

// scoreReportedMsg confirms the practice score report. Failures are logged
// and otherwise ignored.
type scoreReportedMsg struct {
	err error
}

// historySavedMsg confirms the local history write.
type historySavedMsg struct {
	err error
}
