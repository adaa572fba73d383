package question

import (
	"fmt"

	"github.com/abhisek/devquest/internal/progress"
)

// Kind discriminates the question payload and the answer it accepts.
type Kind string

const (
	KindMCQ     Kind = "mcq"
	KindSnippet Kind = "snippet"
	KindCoding  Kind = "coding"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindMCQ, KindSnippet, KindCoding:
		return true
	}
	return false
}

// TakesOption reports whether answers for k are a selected option id.
func (k Kind) TakesOption() bool {
	return k == KindMCQ || k == KindSnippet
}

// Option is one selectable answer of an mcq or snippet question.
type Option struct {
	ID   string
	Text string
}

// Question is an adaptively generated practice question. It is immutable
// once received; the next question replaces it entirely.
type Question struct {
	ID         string
	TopicID    string
	Kind       Kind
	Difficulty progress.Difficulty
	Text       string

	// Options is set for mcq and snippet questions.
	Options []Option

	// CodeSnippet is the code shown with a snippet question.
	CodeSnippet string

	// StarterCode and Language are set for coding questions.
	StarterCode string
	Language    string

	// Hints are revealed one at a time, in order.
	Hints []string

	XPReward int
}

// HintCount returns the number of hints available.
func (q *Question) HintCount() int {
	return len(q.Hints)
}

// Option returns the option with the given id.
func (q *Question) Option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Validate checks that the payload matches the question kind.
func (q *Question) Validate() error {
	if q.ID == "" {
		return &ValidationError{Field: "id", Reason: "missing"}
	}
	if !q.Kind.Valid() {
		return &ValidationError{Field: "question_type", Reason: fmt.Sprintf("unknown kind %q", q.Kind)}
	}
	if q.Text == "" {
		return &ValidationError{Field: "question_text", Reason: "missing"}
	}
	switch q.Kind {
	case KindMCQ, KindSnippet:
		if len(q.Options) == 0 {
			return &ValidationError{Field: "options", Reason: fmt.Sprintf("%s question has no options", q.Kind)}
		}
		seen := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if o.ID == "" {
				return &ValidationError{Field: "options.id", Reason: "missing"}
			}
			if seen[o.ID] {
				return &ValidationError{Field: "options.id", Reason: fmt.Sprintf("duplicate option %q", o.ID)}
			}
			seen[o.ID] = true
		}
	case KindCoding:
		if q.Language == "" {
			return &ValidationError{Field: "language", Reason: "coding question has no language"}
		}
	}
	return nil
}

// ValidationError reports a malformed question, submission, or response field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
