package match

// State is the controller's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateAwaitingAnswer
	StateGrading
	StateFeedback
	StateFinished
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateAwaitingAnswer:
		return "awaiting-answer"
	case StateGrading:
		return "grading"
	case StateFeedback:
		return "feedback"
	case StateFinished:
		return "finished"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// Terminal reports whether no further transitions are possible from s.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateAborted
}
