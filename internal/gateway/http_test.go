package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizdash/quizdash/internal/match"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, "tok-123", nil), srv
}

func TestStartMatch_Success(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/matches", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"sessionId": "m-42",
			"totalQuestions": 10,
			"question": {"index": 0, "prompt": "flag.png", "kind": "choose", "choices": ["France", "Italy"]}
		}`))
	})
	defer srv.Close()

	snap, err := client.StartMatch(context.Background(), MatchParams{Mode: match.ModeCasual, Count: 10})
	require.NoError(t, err)
	assert.Equal(t, "m-42", snap.SessionID)
	assert.Equal(t, 10, snap.TotalQuestions)
	assert.Equal(t, match.AnswerChoose, snap.Question.Kind)
	assert.Empty(t, snap.Question.Answer, "authoritative questions never carry the answer")
}

func TestStartMatch_NoAttempts(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error": "no_attempts", "message": "no attempts remaining"}`))
	})
	defer srv.Close()

	_, err := client.StartMatch(context.Background(), MatchParams{Mode: match.ModeTournament, Count: 10})
	assert.ErrorIs(t, err, ErrNoAttempts)
	assert.False(t, IsTransient(err))
}

func TestStartMatch_SchemaViolationIsFatal(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		// sessionId missing entirely.
		_, _ = w.Write([]byte(`{"totalQuestions": 10, "question": {"index": 0, "prompt": "p", "kind": "choose"}}`))
	})
	defer srv.Close()

	_, err := client.StartMatch(context.Background(), MatchParams{Mode: match.ModeCasual, Count: 10})
	require.Error(t, err)
	var fatal *FatalError
	assert.ErrorAs(t, err, &fatal)
	assert.False(t, IsTransient(err))
}

func TestSubmitAnswer_StreamsNextQuestion(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/matches/m-42/answers", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"isCorrect": false,
			"correctAnswer": "France",
			"finished": false,
			"nextQuestion": {"index": 1, "prompt": "capital of Peru", "kind": "enter"}
		}`))
	})
	defer srv.Close()

	res, err := client.SubmitAnswer(context.Background(), "m-42", "Italy")
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, "France", res.CorrectAnswer)
	require.NotNil(t, res.NextQuestion)
	assert.Equal(t, match.AnswerEnter, res.NextQuestion.Kind)
}

func TestSubmitAnswer_ServerErrorIsTransient(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := client.SubmitAnswer(context.Background(), "m-42", "Italy")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestSubmitAnswer_RateLimitIsTransient(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := client.SubmitAnswer(context.Background(), "m-42", "Italy")
	assert.True(t, IsTransient(err))
}

func TestActiveMatch_None(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	defer srv.Close()

	snap, err := client.ActiveMatch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestActiveMatch_Resume(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"sessionId": "m-7",
			"totalQuestions": 10,
			"cursor": 4,
			"question": {"index": 4, "prompt": "p", "kind": "choose", "choices": ["a", "b"]}
		}`))
	})
	defer srv.Close()

	snap, err := client.ActiveMatch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 4, snap.Cursor)
}

func TestSummary_RoundTrip(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/matches/m-42/summary", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"score": 180,
			"totalQuestions": 2,
			"baseScore": 120,
			"difficultyMultiplier": 1.5,
			"answers": [
				{"questionIndex": 0, "submitted": "France", "isCorrect": true, "correctAnswer": "France", "timedOut": false},
				{"questionIndex": 1, "submitted": "Time expired", "isCorrect": false, "correctAnswer": "Lima", "timedOut": true}
			]
		}`))
	})
	defer srv.Close()

	sum, err := client.Summary(context.Background(), "m-42")
	require.NoError(t, err)
	assert.Equal(t, 180, sum.Score)
	assert.Equal(t, 2, sum.TotalQuestions)
	assert.Len(t, sum.Records, sum.TotalQuestions)
	assert.True(t, sum.Records[1].TimedOut)
}

func TestCreatePracticeSet_IncludesAnswers(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"questions": [
				{"index": 0, "prompt": "flag.png", "kind": "choose", "choices": ["France", "Italy"], "answer": "France"},
				{"index": 1, "prompt": "capital", "kind": "enter", "answer": "Lima"}
			]
		}`))
	})
	defer srv.Close()

	qs, err := client.CreatePracticeSet(context.Background(), PracticeParams{Count: 2, Category: "geo"})
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "France", qs[0].Answer)
	assert.Equal(t, match.AnswerEnter, qs[1].Kind)
}

func TestForfeit_Ack(t *testing.T) {
	calls := 0
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v1/matches/m-42/forfeit", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	defer srv.Close()

	require.NoError(t, client.Forfeit(context.Background(), "m-42"))
	assert.Equal(t, 1, calls)
}

func TestNetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on
	client := NewClient(srv.URL, "", nil)

	_, err := client.ActiveMatch(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransient(err))

	var te *TransientError
	require.True(t, errors.As(err, &te))
	assert.NotNil(t, te.Unwrap())
}
