package session

import (
	"errors"
	"time"

	"github.com/abhisek/devquest/internal/progress"
	"github.com/abhisek/devquest/internal/question"
	"github.com/abhisek/devquest/internal/xp"
)

// Phase is the controller's position in a question's lifecycle.
type Phase int

const (
	PhaseIdle       Phase = iota // No active question
	PhaseLoading                 // Waiting for the next adaptive question
	PhasePresenting              // Question shown, accepting hints and one answer
	PhaseSubmitting              // Answer sent for grading
	PhaseReviewing               // Evaluation shown
	PhaseLoadFailed              // Question request failed; retry or exit
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhasePresenting:
		return "presenting"
	case PhaseSubmitting:
		return "submitting"
	case PhaseReviewing:
		return "reviewing"
	case PhaseLoadFailed:
		return "load_failed"
	default:
		return "unknown"
	}
}

var (
	// ErrWrongPhase is returned when an operation is not valid in the current phase.
	ErrWrongPhase = errors.New("operation not allowed in current phase")

	// ErrAlreadySubmitting rejects a second submit while one is outstanding.
	ErrAlreadySubmitting = errors.New("already submitting")

	// ErrHintsExhausted is returned once every hint has been revealed.
	ErrHintsExhausted = errors.New("no more hints available")

	// ErrSessionClosed marks a response that arrived after the question it
	// belonged to was replaced or the session was exited.
	ErrSessionClosed = errors.New("session closed")
)

// HintState is the number of hints revealed for the active question and the
// text of the latest one.
type HintState struct {
	Index int
	Text  string
}

// Feedback is what a successful submit hands back to the renderer.
type Feedback struct {
	Evaluation question.Evaluation

	// LevelUp is set at most once per award and is never replayed.
	LevelUp *xp.LevelUpEvent

	// Progress is the topic snapshot returned with the evaluation, if any.
	Progress *progress.TopicProgress
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	Phase    Phase
	TopicID  string
	Question *question.Question
	Hints    HintState
	Feedback *Feedback

	// LoadErr is the failure that put the controller in PhaseLoadFailed.
	LoadErr error
}

// HintsRemaining reports how many hints are left for the active question.
func (s Snapshot) HintsRemaining() int {
	if s.Question == nil {
		return 0
	}
	return s.Question.HintCount() - s.Hints.Index
}

// Tally accumulates results across the questions answered in one session.
type Tally struct {
	StartedAt time.Time
	Answered  int
	Correct   int
	XPEarned  int
	HintsUsed int
	LevelUps  int
}

// Accuracy returns the fraction of answered questions that were correct.
func (t Tally) Accuracy() float64 {
	if t.Answered == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Answered)
}
