package topic

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyscout/internal/quiz"
	"github.com/abhisek/studyscout/internal/study"
)

// loadedMsg carries a fresh snapshot of the topic. Store calls run inside
// commands so the UI never waits on a topic lock held by a slow request.
type loadedMsg struct {
	View     study.View
	Progress study.Progress
	Err      error
}

type chatDoneMsg struct {
	loadedMsg
	ChatErr error
}

type quizGeneratedMsg struct {
	loadedMsg
	QuizErr error
}

type quizSubmittedMsg struct {
	loadedMsg
	Result  quiz.Result
	QuizErr error
}

// answerSavedMsg reports the outcome of a set, clear or cancel.
type answerSavedMsg struct {
	loadedMsg
	QuizErr error
}

func (s *TopicScreen) snapshot(ctx context.Context) loadedMsg {
	v, err := s.store.Session(s.topic)
	if err != nil {
		return loadedMsg{Err: err}
	}
	p, err := s.store.Progress(ctx, s.topic)
	if err != nil {
		return loadedMsg{Err: err}
	}
	return loadedMsg{View: v, Progress: p}
}

func (s *TopicScreen) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return s.snapshot(context.Background())
	}
}

func (s *TopicScreen) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.requestContext()
		defer cancel()
		_, err := s.store.SendMessage(ctx, s.topic, text)
		return chatDoneMsg{loadedMsg: s.snapshot(context.Background()), ChatErr: err}
	}
}

func (s *TopicScreen) generateCmd(subject string, count int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := s.requestContext()
		defer cancel()
		_, err := s.store.GenerateQuiz(ctx, s.topic, subject, count)
		return quizGeneratedMsg{loadedMsg: s.snapshot(context.Background()), QuizErr: err}
	}
}

func (s *TopicScreen) answerCmd(index int, option *int) tea.Cmd {
	return func() tea.Msg {
		var err error
		if option == nil {
			err = s.store.ClearAnswer(s.topic, index)
		} else {
			err = s.store.SetAnswer(s.topic, index, *option)
		}
		return answerSavedMsg{loadedMsg: s.snapshot(context.Background()), QuizErr: err}
	}
}

func (s *TopicScreen) cancelCmd() tea.Cmd {
	return func() tea.Msg {
		err := s.store.CancelQuiz(s.topic)
		return answerSavedMsg{loadedMsg: s.snapshot(context.Background()), QuizErr: err}
	}
}

func (s *TopicScreen) submitCmd() tea.Cmd {
	return func() tea.Msg {
		res, err := s.store.SubmitQuiz(context.Background(), s.topic)
		return quizSubmittedMsg{loadedMsg: s.snapshot(context.Background()), Result: res, QuizErr: err}
	}
}

func (s *TopicScreen) requestContext() (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout > 0 {
		return context.WithTimeout(context.Background(), s.opts.RequestTimeout)
	}
	return context.WithCancel(context.Background())
}
