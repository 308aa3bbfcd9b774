package study

import (
	"context"
	"encoding/json"

	"github.com/abhisek/studyscout/internal/apperr"
	"github.com/abhisek/studyscout/internal/quiz"
	"github.com/abhisek/studyscout/internal/store"
)

// GenerateQuiz replaces the topic's quiz with count fresh questions about
// subject, or about the whole topic when subject is empty. An active quiz
// is discarded unless the store was built with StrictRegenerate. On failure
// the previous quiz state is untouched.
func (s *Store) GenerateQuiz(ctx context.Context, topic, subject string, count int) (quiz.State, error) {
	ts, err := s.Lookup(topic)
	if err != nil {
		return quiz.State{}, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if s.opts.StrictRegenerate && ts.Quiz.Active {
		return quiz.State{}, apperr.Invalid("quiz", "a quiz is already active, cancel or submit it first")
	}
	discarding := ts.Quiz.Active

	if err := ts.Quiz.Generate(ctx, ts.QA, ts.Name, subject, count); err != nil {
		s.log.Warn("quiz generation failed", "topic", topic, "count", count, "error", err)
		return quiz.State{}, err
	}

	s.log.Info("quiz generated", "topic", topic, "subject", quiz.EffectiveSubject(ts.Name, subject),
		"count", count, "discarded_active", discarding)
	return ts.Quiz.Snapshot(), nil
}

// SetAnswer selects option for question index of the active quiz.
func (s *Store) SetAnswer(topic string, index, option int) error {
	return s.withQuiz(topic, func(q *quiz.State) error {
		return q.SetAnswer(index, option)
	})
}

// ClearAnswer marks question index of the active quiz unanswered.
func (s *Store) ClearAnswer(topic string, index int) error {
	return s.withQuiz(topic, func(q *quiz.State) error {
		return q.ClearAnswer(index)
	})
}

// SubmitQuiz scores and ends the active quiz.
func (s *Store) SubmitQuiz(ctx context.Context, topic string) (quiz.Result, error) {
	ts, err := s.Lookup(topic)
	if err != nil {
		return quiz.Result{}, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	subject := quiz.EffectiveSubject(ts.Name, ts.Quiz.CustomTopic)
	res, err := ts.Quiz.Submit()
	if err != nil {
		return quiz.Result{}, err
	}

	s.log.Info("quiz submitted", "topic", topic, "score", res.Score, "total", res.Total)
	s.recordQuiz(ctx, topic, subject, res)
	return res, nil
}

// CancelQuiz ends the active quiz without scoring it.
func (s *Store) CancelQuiz(topic string) error {
	return s.withQuiz(topic, func(q *quiz.State) error {
		return q.Cancel()
	})
}

// Review lists the questions of the active or last quiz with the chosen
// and correct options.
func (s *Store) Review(topic string) ([]quiz.ReviewItem, error) {
	var items []quiz.ReviewItem
	err := s.withQuiz(topic, func(q *quiz.State) error {
		items = q.Review()
		return nil
	})
	return items, err
}

func (s *Store) withQuiz(topic string, fn func(*quiz.State) error) error {
	ts, err := s.Lookup(topic)
	if err != nil {
		return err
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return fn(ts.Quiz)
}

func (s *Store) recordQuiz(ctx context.Context, topic, subject string, res quiz.Result) {
	if s.opts.Events == nil {
		return
	}
	review, err := json.Marshal(res.Review)
	if err != nil {
		s.log.Warn("failed to encode quiz review", "topic", topic, "error", err)
		review = []byte("[]")
	}
	err = s.opts.Events.AppendQuizEvent(context.WithoutCancel(ctx), store.QuizEventData{
		Topic:   topic,
		Subject: subject,
		Score:   res.Score,
		Total:   res.Total,
		Review:  string(review),
	})
	if err != nil {
		s.log.Warn("failed to record quiz event", "topic", topic, "error", err)
	}
}
