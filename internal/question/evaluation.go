package question

import (
	"github.com/abhisek/devquest/internal/progress"
	"github.com/abhisek/devquest/internal/xp"
)

// Mistake is one structured issue found in a submitted answer.
type Mistake struct {
	Type        string // minor, major, conceptual
	Description string
	ConceptGap  string
	Suggestion  string
}

// Evaluation is the graded result of a submission.
type Evaluation struct {
	Correct   bool
	Score     int // 0-100
	XPAwarded int
	Feedback  string

	// CorrectAnswer is empty when the service does not reveal it.
	CorrectAnswer string

	Mistakes          []Mistake
	RecommendedAction string

	// LevelUp is set when the service reports that this award crossed a level.
	LevelUp *xp.LevelUpEvent
}

// Outcome is everything one submit round trip returns.
type Outcome struct {
	Evaluation Evaluation

	// Progress is the topic snapshot computed alongside the evaluation, if any.
	Progress *progress.TopicProgress
}
