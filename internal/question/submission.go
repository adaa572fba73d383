package question

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var submissionValidate = validator.New()

// Answer is the tagged union of answer payloads. Its concrete type is fixed by
// the question kind: OptionAnswer for mcq/snippet, CodeAnswer for coding.
type Answer interface {
	answerKind() string
}

// OptionAnswer selects one option of an mcq or snippet question.
type OptionAnswer struct {
	OptionID string `validate:"required"`
}

func (OptionAnswer) answerKind() string { return "option" }

// CodeAnswer is a code solution for a coding question.
type CodeAnswer struct {
	Code     string `validate:"required"`
	Language string `validate:"required"`
}

func (CodeAnswer) answerKind() string { return "code" }

// Submission is one answer attempt. Build it with NewSubmission; it is never
// reused across questions.
type Submission struct {
	QuestionID string `validate:"required"`
	UserID     string `validate:"required"`
	Answer     Answer `validate:"required"`
}

// NewSubmission validates answer against q's kind and builds a submission.
func NewSubmission(q *Question, userID string, answer Answer) (Submission, error) {
	if q == nil {
		return Submission{}, &ValidationError{Field: "question", Reason: "no active question"}
	}

	switch a := answer.(type) {
	case OptionAnswer:
		if !q.Kind.TakesOption() {
			return Submission{}, &ValidationError{Field: "answer", Reason: fmt.Sprintf("option answer given for %s question", q.Kind)}
		}
		if err := submissionValidate.Struct(a); err != nil {
			return Submission{}, &ValidationError{Field: "selected_option_id", Reason: "missing"}
		}
		if _, ok := q.Option(a.OptionID); !ok {
			return Submission{}, &ValidationError{Field: "selected_option_id", Reason: fmt.Sprintf("unknown option %q", a.OptionID)}
		}
	case CodeAnswer:
		if q.Kind != KindCoding {
			return Submission{}, &ValidationError{Field: "answer", Reason: fmt.Sprintf("code answer given for %s question", q.Kind)}
		}
		if a.Language == "" {
			a.Language = q.Language
			answer = a
		}
		if err := submissionValidate.Struct(a); err != nil {
			return Submission{}, &ValidationError{Field: "code_solution", Reason: "missing"}
		}
	case nil:
		return Submission{}, &ValidationError{Field: "answer", Reason: "missing"}
	default:
		return Submission{}, &ValidationError{Field: "answer", Reason: fmt.Sprintf("unsupported answer type %T", answer)}
	}

	s := Submission{QuestionID: q.ID, UserID: userID, Answer: answer}
	if err := submissionValidate.Struct(s); err != nil {
		return Submission{}, &ValidationError{Field: "submission", Reason: err.Error()}
	}
	return s, nil
}
