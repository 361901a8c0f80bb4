package history

import (
	"context"
	"fmt"
	"time"

	"github.com/quizdash/quizdash/internal/match"
)

// MatchRecord is one finished or aborted match as stored locally.
type MatchRecord struct {
	SessionID      string
	Mode           match.Mode
	Outcome        string
	Score          int
	TotalQuestions int
	DurationSecs   int
	CreatedAt      time.Time
	Answers        []match.AnswerRecord
}

// Outcomes stored in match_events.
const (
	OutcomeFinished = "finished"
	OutcomeAborted  = "aborted"
)

// RecordMatch appends a match and its per-question answers in one
// transaction.
func (s *Store) RecordMatch(ctx context.Context, rec MatchRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO match_events
			(session_id, mode, outcome, score, total_questions, duration_secs, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Mode.String(), rec.Outcome, rec.Score,
		rec.TotalQuestions, rec.DurationSecs, rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	for _, a := range rec.Answers {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO answer_events
				(session_id, question_index, submitted, correct, correct_answer, timed_out)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rec.SessionID, a.QuestionIndex, a.Submitted,
			boolToInt(a.Correct), a.CorrectAnswer, boolToInt(a.TimedOut),
		)
		if err != nil {
			return fmt.Errorf("insert answer %d: %w", a.QuestionIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RecentMatches returns up to limit matches, newest first. Answers are not
// populated; use Answers for a specific session.
func (s *Store) RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, mode, outcome, score, total_questions, duration_secs, created_at
		 FROM match_events
		 ORDER BY id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		var rec MatchRecord
		var mode, created string
		if err := rows.Scan(&rec.SessionID, &mode, &rec.Outcome, &rec.Score,
			&rec.TotalQuestions, &rec.DurationSecs, &created); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		rec.Mode = parseMode(mode)
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			rec.CreatedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Answers returns the per-question records of one session in question order.
func (s *Store) Answers(ctx context.Context, sessionID string) ([]match.AnswerRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_index, submitted, correct, correct_answer, timed_out
		 FROM answer_events
		 WHERE session_id = ?
		 ORDER BY question_index ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var out []match.AnswerRecord
	for rows.Next() {
		var a match.AnswerRecord
		var correct, timedOut int
		if err := rows.Scan(&a.QuestionIndex, &a.Submitted, &correct,
			&a.CorrectAnswer, &timedOut); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		a.Correct = correct != 0
		a.TimedOut = timedOut != 0
		out = append(out, a)
	}
	return out, rows.Err()
}

// Totals reports lifetime played matches and correctly answered questions.
func (s *Store) Totals(ctx context.Context) (played, correct int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM match_events`).Scan(&played)
	if err != nil {
		return 0, 0, fmt.Errorf("count matches: %w", err)
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM answer_events WHERE correct = 1`).Scan(&correct)
	if err != nil {
		return 0, 0, fmt.Errorf("count correct: %w", err)
	}
	return played, correct, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseMode(s string) match.Mode {
	switch s {
	case match.ModeCasual.String():
		return match.ModeCasual
	case match.ModeTournament.String():
		return match.ModeTournament
	default:
		return match.ModePractice
	}
}
