// Package quiz holds the multiple-choice quiz model and the state machine
// that takes one topic's quiz from generation through answers to a score.
package quiz

import "context"

// OptionCount is the number of options every question carries.
const OptionCount = 4

// Question is one multiple-choice item with exactly one correct option.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	// Correct indexes Options.
	Correct int `json:"correct"`
}

// Generator produces quiz questions about a subject. Implementations return
// whatever the model produced; count and shape are checked by State.
type Generator interface {
	GenerateQuiz(ctx context.Context, subject string, count int) ([]Question, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, subject string, count int) ([]Question, error)

func (f GeneratorFunc) GenerateQuiz(ctx context.Context, subject string, count int) ([]Question, error) {
	return f(ctx, subject, count)
}

// Phase is the externally visible quiz state.
type Phase string

const (
	// PhaseInert means no quiz is awaiting answers. Questions and answers
	// of the last quiz, if any, remain readable for review.
	PhaseInert Phase = "inert"
	// PhaseActive means a generated quiz is collecting answers.
	PhaseActive Phase = "active"
)

// ReviewItem describes one question of the current or last quiz.
type ReviewItem struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	// Chosen is nil for an unanswered question.
	Chosen    *int `json:"chosen"`
	Correct   int  `json:"correct"`
	IsCorrect bool `json:"is_correct"`
}

// Result is the outcome of a submitted quiz.
type Result struct {
	Score  int          `json:"score"`
	Total  int          `json:"total"`
	Review []ReviewItem `json:"review"`
}

// Accuracy returns Score/Total, or 0 for an empty result.
func (r Result) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total)
}
