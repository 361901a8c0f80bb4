package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/quizdash/quizdash/internal/match"
)

const defaultTimeout = 10 * time.Second

// Client is the HTTP implementation of Gateway for the quizdash match
// service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient creates a Client for the service at baseURL. The token is sent
// as a bearer credential on every request.
func NewClient(baseURL, token string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

// Wire formats. Field names follow the service contract, camelCase like the
// rest of the quizdash API.

type wireQuestion struct {
	Index    int      `json:"index"`
	Prompt   string   `json:"prompt"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Kind     string   `json:"kind"`
	Choices  []string `json:"choices,omitempty"`
	Answer   string   `json:"answer,omitempty"`
}

func (w wireQuestion) toQuestion() match.Question {
	kind := match.AnswerChoose
	if w.Kind == "enter" {
		kind = match.AnswerEnter
	}
	return match.Question{
		Index:    w.Index,
		Prompt:   w.Prompt,
		ImageURL: w.ImageURL,
		Kind:     kind,
		Choices:  w.Choices,
		Answer:   w.Answer,
	}
}

type wireSnapshot struct {
	SessionID      string       `json:"sessionId"`
	TotalQuestions int          `json:"totalQuestions"`
	Cursor         int          `json:"cursor"`
	Question       wireQuestion `json:"question"`
}

func (w wireSnapshot) toSnapshot() *MatchSnapshot {
	return &MatchSnapshot{
		SessionID:      w.SessionID,
		TotalQuestions: w.TotalQuestions,
		Cursor:         w.Cursor,
		Question:       w.Question.toQuestion(),
	}
}

type wireError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) CreatePracticeSet(ctx context.Context, p PracticeParams) ([]match.Question, error) {
	body := map[string]any{
		"count":    p.Count,
		"category": p.Category,
		"gamemode": p.GameMode,
	}
	if len(p.Tags) > 0 {
		body["tags"] = p.Tags
	}

	var resp struct {
		Questions []wireQuestion `json:"questions"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/practice/sets", body, practiceSetSchema, &resp); err != nil {
		return nil, err
	}

	qs := make([]match.Question, len(resp.Questions))
	for i, wq := range resp.Questions {
		qs[i] = wq.toQuestion()
	}
	return qs, nil
}

func (c *Client) StartMatch(ctx context.Context, p MatchParams) (*MatchSnapshot, error) {
	body := map[string]any{
		"mode":     p.Mode.String(),
		"count":    p.Count,
		"category": p.Category,
		"gamemode": p.GameMode,
	}
	var resp wireSnapshot
	if err := c.do(ctx, http.MethodPost, "/v1/matches", body, matchSnapshotSchema, &resp); err != nil {
		return nil, err
	}
	return resp.toSnapshot(), nil
}

func (c *Client) ActiveMatch(ctx context.Context) (*MatchSnapshot, error) {
	var resp wireSnapshot
	err := c.do(ctx, http.MethodGet, "/v1/matches/active", nil, matchSnapshotSchema, &resp)
	if errors.Is(err, errNoContent) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return resp.toSnapshot(), nil
}

func (c *Client) SubmitAnswer(ctx context.Context, sessionID, value string) (*SubmitResult, error) {
	var resp struct {
		IsCorrect     bool          `json:"isCorrect"`
		CorrectAnswer string        `json:"correctAnswer"`
		Finished      bool          `json:"finished"`
		NextQuestion  *wireQuestion `json:"nextQuestion"`
	}
	path := fmt.Sprintf("/v1/matches/%s/answers", sessionID)
	if err := c.do(ctx, http.MethodPost, path, map[string]any{"answer": value}, submitResultSchema, &resp); err != nil {
		return nil, err
	}

	result := &SubmitResult{
		Correct:       resp.IsCorrect,
		CorrectAnswer: resp.CorrectAnswer,
		Finished:      resp.Finished,
	}
	if resp.NextQuestion != nil {
		q := resp.NextQuestion.toQuestion()
		result.NextQuestion = &q
	}
	return result, nil
}

func (c *Client) Forfeit(ctx context.Context, sessionID string) error {
	path := fmt.Sprintf("/v1/matches/%s/forfeit", sessionID)
	err := c.do(ctx, http.MethodPost, path, nil, nil, nil)
	if errors.Is(err, errNoContent) {
		return nil
	}
	return err
}

func (c *Client) Summary(ctx context.Context, sessionID string) (*match.Summary, error) {
	var resp struct {
		Score                int     `json:"score"`
		TotalQuestions       int     `json:"totalQuestions"`
		BaseScore            int     `json:"baseScore"`
		DifficultyMultiplier float64 `json:"difficultyMultiplier"`
		Answers              []struct {
			QuestionIndex int    `json:"questionIndex"`
			Submitted     string `json:"submitted"`
			IsCorrect     bool   `json:"isCorrect"`
			CorrectAnswer string `json:"correctAnswer"`
			TimedOut      bool   `json:"timedOut"`
		} `json:"answers"`
	}
	path := fmt.Sprintf("/v1/matches/%s/summary", sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, summarySchema, &resp); err != nil {
		return nil, err
	}

	sum := &match.Summary{
		Score:                resp.Score,
		TotalQuestions:       resp.TotalQuestions,
		BaseScore:            resp.BaseScore,
		DifficultyMultiplier: resp.DifficultyMultiplier,
	}
	for _, a := range resp.Answers {
		sum.Records = append(sum.Records, match.AnswerRecord{
			QuestionIndex: a.QuestionIndex,
			Submitted:     a.Submitted,
			Correct:       a.IsCorrect,
			CorrectAnswer: a.CorrectAnswer,
			TimedOut:      a.TimedOut,
		})
	}
	return sum, nil
}

func (c *Client) ReportPracticeScore(ctx context.Context, score, totalQuestions int) error {
	body := map[string]any{"score": score, "totalQuestions": totalQuestions}
	err := c.do(ctx, http.MethodPost, "/v1/practice/scores", body, nil, nil)
	if errors.Is(err, errNoContent) {
		return nil
	}
	return err
}

// errNoContent signals a 204; callers that expect one swallow it.
var errNoContent = errors.New("no content")

// do performs one API call: request, status classification, schema
// validation, decode. Every error leaving here is ErrNoAttempts, a
// *TransientError, or a *FatalError.
func (c *Client) do(ctx context.Context, method, path string, body any, s *schema, out any) error {
	op := method + " " + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &FatalError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &FatalError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "op", op, "err", err)
		return &TransientError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransientError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return errNoContent
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		c.log.Warn("service unavailable", "op", op, "status", resp.StatusCode)
		return &TransientError{Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		var we wireError
		_ = json.Unmarshal(raw, &we)
		if we.Error == "no_attempts" {
			return ErrNoAttempts
		}
		return &FatalError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, we.Message)}
	}

	if s != nil {
		if err := validatePayload(s, raw); err != nil {
			c.log.Error("malformed response", "op", op, "err", err)
			return &FatalError{Op: op, Err: err}
		}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &FatalError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}
