package quiz

import (
	"fmt"
	"strings"
)

// Validator checks one generated question. Implementations are stateless
// and safe for concurrent use.
type Validator interface {
	// Name is a short identifier used in error messages, e.g. "structural".
	Name() string

	Validate(q *Question) *CheckError
}

// CheckError describes why a question failed validation.
type CheckError struct {
	Validator string
	Index     int
	Message   string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("question %d: validator %q: %s", e.Index+1, e.Validator, e.Message)
}

// StructuralValidator checks the question text and option list.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question) *CheckError {
	if strings.TrimSpace(q.Text) == "" {
		return &CheckError{Validator: v.Name(), Message: "question text is empty"}
	}
	if len(q.Options) != OptionCount {
		return &CheckError{Validator: v.Name(), Message: fmt.Sprintf("expected %d options, got %d", OptionCount, len(q.Options))}
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return &CheckError{Validator: v.Name(), Message: fmt.Sprintf("option %d is empty", i)}
		}
	}
	return nil
}

// AnswerKeyValidator checks that the correct index points at an option.
type AnswerKeyValidator struct{}

func (v *AnswerKeyValidator) Name() string { return "answer-key" }

func (v *AnswerKeyValidator) Validate(q *Question) *CheckError {
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return &CheckError{Validator: v.Name(), Message: fmt.Sprintf("correct index %d out of range [0,%d)", q.Correct, len(q.Options))}
	}
	return nil
}

// DefaultValidators is the chain every generated quiz goes through.
func DefaultValidators() []Validator {
	return []Validator{&StructuralValidator{}, &AnswerKeyValidator{}}
}

// Check verifies that questions holds exactly count items and that each one
// passes every validator. The first failure is returned.
func Check(questions []Question, count int, validators []Validator) error {
	if len(questions) != count {
		return fmt.Errorf("expected %d questions, got %d", count, len(questions))
	}
	for i := range questions {
		for _, v := range validators {
			if cerr := v.Validate(&questions[i]); cerr != nil {
				cerr.Index = i
				return cerr
			}
		}
	}
	return nil
}
