package study

import (
	"context"
	"math"

	"github.com/abhisek/studyscout/internal/store"
)

// comprehensionPerTurn is the comprehension credit for each chat turn.
const comprehensionPerTurn = 0.1

// maxQuizHistory bounds Progress.QuizHistory.
const maxQuizHistory = 10

// Progress summarises a learner's activity on one topic.
type Progress struct {
	// Comprehension grows with chat activity and saturates at 1.
	Comprehension float64 `json:"comprehension"`
	Turns         int     `json:"turns"`

	// LastScore and LastTotal describe the last submitted quiz.
	LastScore    int     `json:"last_score"`
	LastTotal    int     `json:"last_total"`
	LastAccuracy float64 `json:"last_accuracy"`

	// QuizHistory holds accuracies of recorded quizzes, oldest first.
	// Empty when the store has no event log.
	QuizHistory []float64 `json:"quiz_history,omitempty"`
}

// Comprehension maps a transcript length to [0, 1].
func Comprehension(turns int) float64 {
	return math.Min(comprehensionPerTurn*float64(turns), 1)
}

// Progress reports the topic's progress.
func (s *Store) Progress(ctx context.Context, topic string) (Progress, error) {
	ts, err := s.Lookup(topic)
	if err != nil {
		return Progress{}, err
	}

	ts.mu.Lock()
	p := Progress{
		Comprehension: Comprehension(len(ts.History)),
		Turns:         len(ts.History),
		LastScore:     ts.Quiz.Score,
		LastTotal:     ts.Quiz.Total,
		LastAccuracy:  ts.Quiz.Accuracy(),
	}
	ts.mu.Unlock()

	if s.opts.Events == nil {
		return p, nil
	}
	events, err := s.opts.Events.QueryQuizEvents(ctx, store.QueryOpts{Topic: topic, Limit: maxQuizHistory})
	if err != nil {
		s.log.Warn("failed to load quiz history", "topic", topic, "error", err)
		return p, nil
	}
	// Events come newest first.
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if e.Total > 0 {
			p.QuizHistory = append(p.QuizHistory, float64(e.Score)/float64(e.Total))
		}
	}
	return p, nil
}

// SuggestedPrompts returns canned chat prompts for topic.
func (s *Store) SuggestedPrompts(topic string) ([]string, error) {
	if _, err := s.Lookup(topic); err != nil {
		return nil, err
	}
	return suggestedPrompts(topic), nil
}

func suggestedPrompts(topic string) []string {
	return []string{
		"Key concepts in " + topic,
		"Practical applications of " + topic,
		"YouTube tutorials on " + topic,
		"Create a study plan for " + topic,
	}
}
