package quiz

import (
	"context"
	"strings"

	"github.com/abhisek/studyscout/internal/apperr"
)

// State is one topic's quiz. It starts inert, becomes active on a
// successful Generate, and returns to inert on Submit or Cancel. State is
// not safe for concurrent use; the owning topic session serializes access.
type State struct {
	Active bool

	// CustomTopic is the subject override of the latest generation; empty
	// means the whole document.
	CustomTopic string

	Questions []Question

	// Answers has one entry per question while active; nil is unanswered.
	Answers []*int

	// Score and Total describe the last submitted quiz, 0/0 before any.
	Score int
	Total int
}

// NewState returns an inert state with no quiz history.
func NewState() *State {
	return &State{}
}

// Phase reports the current state machine phase.
func (s *State) Phase() Phase {
	if s.Active {
		return PhaseActive
	}
	return PhaseInert
}

// EffectiveSubject is the subject sent to the generator: the override
// when given, otherwise the topic name.
func EffectiveSubject(topic, override string) string {
	if o := strings.TrimSpace(override); o != "" {
		return o
	}
	return topic
}

// Generate asks gen for count questions and, if they are well formed,
// replaces the current quiz with them. A quiz already active is discarded
// without scoring. On any failure the state is left exactly as it was.
func (s *State) Generate(ctx context.Context, gen Generator, topic, subjectOverride string, count int) error {
	if count < 1 {
		return apperr.Invalid("count", "must be at least 1, got %d", count)
	}

	questions, err := gen.GenerateQuiz(ctx, EffectiveSubject(topic, subjectOverride), count)
	if err != nil {
		if apperr.IsGeneration(err) {
			return err
		}
		return apperr.Generation("generate quiz", err)
	}
	if err := Check(questions, count, DefaultValidators()); err != nil {
		return apperr.Generation("generate quiz", err)
	}

	s.Questions = cloneQuestions(questions)
	s.Answers = make([]*int, count)
	s.Active = true
	s.CustomTopic = strings.TrimSpace(subjectOverride)
	return nil
}

// SetAnswer records option as the answer to question index. Selecting
// again overwrites.
func (s *State) SetAnswer(index, option int) error {
	if !s.Active {
		return apperr.Invalid("quiz", "no active quiz")
	}
	if index < 0 || index >= len(s.Questions) {
		return apperr.Invalid("index", "question %d out of range [0,%d)", index, len(s.Questions))
	}
	if n := len(s.Questions[index].Options); option < 0 || option >= n {
		return apperr.Invalid("option", "option %d out of range [0,%d)", option, n)
	}
	s.Answers[index] = &option
	return nil
}

// ClearAnswer marks question index as unanswered again.
func (s *State) ClearAnswer(index int) error {
	if !s.Active {
		return apperr.Invalid("quiz", "no active quiz")
	}
	if index < 0 || index >= len(s.Questions) {
		return apperr.Invalid("index", "question %d out of range [0,%d)", index, len(s.Questions))
	}
	s.Answers[index] = nil
	return nil
}

// Submit scores the active quiz and ends it. Unanswered questions count as
// incorrect. Questions and answers stay readable for review.
func (s *State) Submit() (Result, error) {
	if !s.Active {
		return Result{}, apperr.Invalid("quiz", "no active quiz")
	}
	s.Score = Grade(s.Questions, s.Answers)
	s.Total = len(s.Questions)
	s.Active = false
	return Result{Score: s.Score, Total: s.Total, Review: s.Review()}, nil
}

// Cancel ends the active quiz without scoring it. Score and Total keep
// describing the last submitted quiz.
func (s *State) Cancel() error {
	if !s.Active {
		return apperr.Invalid("quiz", "no active quiz")
	}
	s.Active = false
	return nil
}

// Grade counts answers matching the correct option.
func Grade(questions []Question, answers []*int) int {
	score := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] != nil && *answers[i] == q.Correct {
			score++
		}
	}
	return score
}

// Review lists every question with its chosen and correct option.
func (s *State) Review() []ReviewItem {
	items := make([]ReviewItem, len(s.Questions))
	for i, q := range s.Questions {
		item := ReviewItem{
			Index:    i,
			Question: q.Text,
			Options:  append([]string(nil), q.Options...),
			Correct:  q.Correct,
		}
		if i < len(s.Answers) && s.Answers[i] != nil {
			chosen := *s.Answers[i]
			item.Chosen = &chosen
			item.IsCorrect = chosen == q.Correct
		}
		items[i] = item
	}
	return items
}

// Answered returns how many questions of the active quiz have an answer.
func (s *State) Answered() int {
	n := 0
	for _, a := range s.Answers {
		if a != nil {
			n++
		}
	}
	return n
}

// Accuracy returns Score/Total of the last submitted quiz.
func (s *State) Accuracy() float64 {
	return Result{Score: s.Score, Total: s.Total}.Accuracy()
}

// Snapshot returns a deep copy safe to read after the session lock is
// released.
func (s *State) Snapshot() State {
	out := State{
		Active:      s.Active,
		CustomTopic: s.CustomTopic,
		Questions:   cloneQuestions(s.Questions),
		Score:       s.Score,
		Total:       s.Total,
	}
	if s.Answers != nil {
		out.Answers = make([]*int, len(s.Answers))
		for i, a := range s.Answers {
			if a != nil {
				v := *a
				out.Answers[i] = &v
			}
		}
	}
	return out
}

func cloneQuestions(in []Question) []Question {
	if in == nil {
		return nil
	}
	out := make([]Question, len(in))
	for i, q := range in {
		out[i] = Question{Text: q.Text, Options: append([]string(nil), q.Options...), Correct: q.Correct}
	}
	return out
}
