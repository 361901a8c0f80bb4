package gateway

import (
	"context"

	"github.com/quizdash/quizdash/internal/match"
)

// Mock is a scriptable Gateway for tests. Unset functions fail loudly so a
// test exercising an unexpected call doesn't pass by accident.
type Mock struct {
	CreatePracticeSetFn   func(ctx context.Context, p PracticeParams) ([]match.Question, error)
	StartMatchFn          func(ctx context.Context, p MatchParams) (*MatchSnapshot, error)
	ActiveMatchFn         func(ctx context.Context) (*MatchSnapshot, error)
	SubmitAnswerFn        func(ctx context.Context, sessionID, value string) (*SubmitResult, error)
	ForfeitFn             func(ctx context.Context, sessionID string) error
	SummaryFn             func(ctx context.Context, sessionID string) (*match.Summary, error)
	ReportPracticeScoreFn func(ctx context.Context, score, totalQuestions int) error

	// Calls records the method names invoked, in order.
	Calls []string
}

var _ Gateway = (*Mock)(nil)

func (m *Mock) CreatePracticeSet(ctx context.Context, p PracticeParams) ([]match.Question, error) {
	m.Calls = append(m.Calls, "CreatePracticeSet")
	if m.CreatePracticeSetFn == nil {
		panic("gateway.Mock: unexpected CreatePracticeSet call")
	}
	return m.CreatePracticeSetFn(ctx, p)
}

func (m *Mock) StartMatch(ctx context.Context, p MatchParams) (*MatchSnapshot, error) {
	m.Calls = append(m.Calls, "StartMatch")
	if m.StartMatchFn == nil {
		panic("gateway.Mock: unexpected StartMatch call")
	}
	return m.StartMatchFn(ctx, p)
}

func (m *Mock) ActiveMatch(ctx context.Context) (*MatchSnapshot, error) {
	m.Calls = append(m.Calls, "ActiveMatch")
	if m.ActiveMatchFn == nil {
		return nil, nil
	}
	return m.ActiveMatchFn(ctx)
}

func (m *Mock) SubmitAnswer(ctx context.Context, sessionID, value string) (*SubmitResult, error) {
	m.Calls = append(m.Calls, "SubmitAnswer")
	if m.SubmitAnswerFn == nil {
		panic("gateway.Mock: unexpected SubmitAnswer call")
	}
	return m.SubmitAnswerFn(ctx, sessionID, value)
}

func (m *Mock) Forfeit(ctx context.Context, sessionID string) error {
	m.Calls = append(m.Calls, "Forfeit")
	if m.ForfeitFn == nil {
		panic("gateway.Mock: unexpected Forfeit call")
	}
	return m.ForfeitFn(ctx, sessionID)
}

func (m *Mock) Summary(ctx context.Context, sessionID string) (*match.Summary, error) {
	m.Calls = append(m.Calls, "Summary")
	if m.SummaryFn == nil {
		panic("gateway.Mock: unexpected Summary call")
	}
	return m.SummaryFn(ctx, sessionID)
}

func (m *Mock) ReportPracticeScore(ctx context.Context, score, totalQuestions int) error {
	m.Calls = append(m.Calls, "ReportPracticeScore")
	if m.ReportPracticeScoreFn == nil {
		return nil
	}
	return m.ReportPracticeScoreFn(ctx, score, totalQuestions)
}

// CallCount returns how many times the named method was invoked.
func (m *Mock) CallCount(name string) int {
	n := 0
	for _, c := range m.Calls {
		if c == name {
			n++
		}
	}
	return n
}
