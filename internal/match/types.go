package match

// Mode identifies how a session is created, graded, and scored.
type Mode int

const (
	// ModePractice runs entirely locally: the full question list is fetched
	// once (answers included) and grading never touches the network.
	ModePractice Mode = iota
	// ModeCasual is server-authoritative with casual scoring.
	ModeCasual
	// ModeTournament is server-authoritative with tournament scoring.
	ModeTournament
)

// Authoritative reports whether the remote service owns grading and scoring
// for this mode.
func (m Mode) Authoritative() bool {
	return m == ModeCasual || m == ModeTournament
}

func (m Mode) String() string {
	switch m {
	case ModePractice:
		return "practice"
	case ModeCasual:
		return "casual"
	case ModeTournament:
		return "tournament"
	}
	return "unknown"
}

// AnswerKind is how the player answers a question.
type AnswerKind int

const (
	// AnswerChoose presents a closed option set.
	AnswerChoose AnswerKind = iota
	// AnswerEnter takes free text.
	AnswerEnter
)

// Question is a single prompt in a match. Authoritative modes stream
// questions one at a time and never populate Answer; practice sets carry the
// answer so the local grader can resolve it.
type Question struct {
	Index    int
	Prompt   string
	ImageURL string
	Kind     AnswerKind
	Choices  []string
	Answer   string
}

// AnswerRecord is the graded outcome of one question. Records are appended
// in question order and never modified afterwards.
type AnswerRecord struct {
	QuestionIndex int
	Submitted     string
	Correct       bool
	CorrectAnswer string
	TimedOut      bool
}

// Summary is the terminal artifact of a session. BaseScore and
// DifficultyMultiplier are only set for authoritative modes.
type Summary struct {
	Score                int
	TotalQuestions       int
	Records              []AnswerRecord
	BaseScore            int
	DifficultyMultiplier float64
}

// Grader decides correctness for practice mode. Authoritative modes bypass
// it entirely: the submit call's response is the verdict.
type Grader interface {
	// Grade returns the verdict and the revealed correct answer.
	Grade(submitted string, q *Question) (correct bool, correctAnswer string)
}

// StartParams carries the mode-specific inputs of a start request.
type StartParams struct {
	Mode      Mode
	Count     int
	Category  string
	GameMode  string
	Tags      []string // practice only
}
