// Package grader implements the practice-mode grading strategy: answers are
// resolved locally against the question's stored answer, with fuzzy matching
// for typed input. Authoritative modes never grade locally; the match
// service's verdict is ground truth and reaches the controller through the
// gateway instead.
package grader

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/quizdash/quizdash/internal/match"
)

// DefaultThreshold is the similarity (0-100) at or above which a typed
// answer counts as correct.
const DefaultThreshold = 75

// Local grades practice answers.
type Local struct {
	// Threshold is the fuzzy-accept similarity in [0,100].
	Threshold int
}

var _ match.Grader = (*Local)(nil)

// NewLocal creates a local grader. A non-positive threshold falls back to
// DefaultThreshold.
func NewLocal(threshold int) *Local {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Local{Threshold: threshold}
}

// Grade resolves a submission against the question's answer. Closed-choice
// questions require (case-insensitive) equality with the correct choice;
// typed answers accept similarity at or above the threshold. The timeout
// sentinel is compared like any other value and fails both paths.
func (g *Local) Grade(submitted string, q *match.Question) (bool, string) {
	submitted = strings.TrimSpace(submitted)
	answer := strings.TrimSpace(q.Answer)
	if submitted == "" {
		return false, q.Answer
	}

	if q.Kind == match.AnswerChoose {
		return strings.EqualFold(submitted, answer), q.Answer
	}

	return Similarity(submitted, answer) >= g.Threshold, q.Answer
}

// Similarity returns the case-insensitive similarity of two strings on a
// 0-100 scale. Jaro-Winkler tolerates the transposition typos trivia answers
// attract ("Frnace" scores well against "France") where raw edit distance
// does not.
func Similarity(a, b string) int {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 100
	}
	return int(strutil.Similarity(a, b, jaroWinkler) * 100)
}

var jaroWinkler = metrics.NewJaroWinkler()
