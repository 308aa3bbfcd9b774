package server

import (
	"github.com/abhisek/studyscout/internal/quiz"
	"github.com/abhisek/studyscout/internal/study"
)

type questionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	// Correct is omitted while the quiz is active.
	Correct *int `json:"correct,omitempty"`
}

type quizView struct {
	Phase       quiz.Phase     `json:"phase"`
	CustomTopic string         `json:"custom_topic,omitempty"`
	Questions   []questionView `json:"questions"`
	Answers     []*int         `json:"answers"`
	Answered    int            `json:"answered"`
	Score       int            `json:"score"`
	Total       int            `json:"total"`
}

func newQuizView(st quiz.State) quizView {
	v := quizView{
		Phase:       st.Phase(),
		CustomTopic: st.CustomTopic,
		Questions:   make([]questionView, len(st.Questions)),
		Answers:     st.Answers,
		Answered:    st.Answered(),
		Score:       st.Score,
		Total:       st.Total,
	}
	if v.Answers == nil {
		v.Answers = []*int{}
	}
	for i, q := range st.Questions {
		qv := questionView{Question: q.Text, Options: q.Options}
		if !st.Active {
			correct := q.Correct
			qv.Correct = &correct
		}
		v.Questions[i] = qv
	}
	return v
}

type topicView struct {
	Name        string         `json:"name"`
	Table       string         `json:"table"`
	Pages       int            `json:"pages"`
	Chunks      int            `json:"chunks"`
	History     []study.Turn   `json:"history"`
	Quiz        quizView       `json:"quiz"`
	Progress    study.Progress `json:"progress"`
	Suggestions []string       `json:"suggestions"`
}

type topicSummary struct {
	Name   string `json:"name"`
	Pages  int    `json:"pages"`
	Chunks int    `json:"chunks"`
}
