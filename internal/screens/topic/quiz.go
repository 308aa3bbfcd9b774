package topic

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyscout/internal/quiz"
	"github.com/abhisek/studyscout/internal/router"
	"github.com/abhisek/studyscout/internal/screens/summary"
	"github.com/abhisek/studyscout/internal/ui/components"
	"github.com/abhisek/studyscout/internal/ui/layout"
	"github.com/abhisek/studyscout/internal/ui/theme"
)

const (
	fieldSubject = iota
	fieldCount
)

type quizPane struct {
	subject components.TextInput
	count   components.TextInput
	field   int

	defaultCount int
	generating   bool
	saving       bool
	confirming   bool
	errMsg       string

	current    int
	mc         components.MultiChoice
	lastResult *quiz.Result
}

func newQuizPane(defaultCount int) quizPane {
	p := quizPane{
		subject:      components.NewTextInput("Whole document, or a subject like \"eigenvectors\"", false, 200),
		count:        components.NewTextInput(fmt.Sprint(defaultCount), true, 2),
		defaultCount: defaultCount,
	}
	p.subject.Blur()
	p.count.Blur()
	return p
}

func (q *quizPane) capturesEscape() bool {
	return q.confirming || (!q.generating && q.subject.Focused() && q.subject.Value() != "")
}

func (q *quizPane) keyHints(st quiz.State) []layout.KeyHint {
	switch {
	case q.confirming:
		return []layout.KeyHint{{Key: "Y", Description: "Submit anyway"}, {Key: "N", Description: "Keep answering"}}
	case st.Active:
		return []layout.KeyHint{
			{Key: "1-4", Description: "Answer"},
			{Key: "←→", Description: "Question"},
			{Key: "X", Description: "Clear"},
			{Key: "S", Description: "Submit"},
			{Key: "C", Description: "Cancel"},
		}
	}
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Field"}, {Key: "Enter", Description: "Generate"}}
	if q.lastResult != nil {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "Last review"})
	}
	return hints
}

func (q *quizPane) focus(st quiz.State) tea.Cmd {
	if st.Active || q.generating {
		return nil
	}
	if q.field == fieldCount {
		return q.count.Focus()
	}
	return q.subject.Focus()
}

func (q *quizPane) blur() {
	q.subject.Blur()
	q.count.Blur()
}

func (q *quizPane) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if q.field == fieldCount {
		q.count, cmd = q.count.Update(msg)
	} else {
		q.subject, cmd = q.subject.Update(msg)
	}
	return cmd
}

func (q *quizPane) handleKey(s *TopicScreen, msg tea.KeyMsg) tea.Cmd {
	st := s.view.Quiz
	key := msg.String()

	if q.confirming {
		switch key {
		case "y", "Y":
			q.confirming = false
			q.saving = true
			return s.submitCmd()
		case "n", "N", "esc":
			q.confirming = false
		}
		return nil
	}
	if q.generating || q.saving {
		return nil
	}
	if st.Active {
		return q.handleActiveKey(s, st, key, msg)
	}

	switch key {
	case "esc":
		q.subject.Reset()
		return nil
	case "up", "down":
		q.blur()
		q.field = 1 - q.field
		return q.focus(st)
	case "ctrl+r":
		if q.lastResult == nil {
			return nil
		}
		res := *q.lastResult
		return func() tea.Msg {
			return router.PushScreenMsg{Screen: summary.New(s.topic, res)}
		}
	case "enter":
		n, err := q.count.IntValue(q.defaultCount)
		if err != nil {
			q.errMsg = "Question count must be a number"
			return nil
		}
		q.errMsg = ""
		q.generating = true
		q.blur()
		return s.generateCmd(q.subject.Value(), n)
	}
	return q.forward(msg)
}

func (q *quizPane) handleActiveKey(s *TopicScreen, st quiz.State, key string, msg tea.KeyMsg) tea.Cmd {
	switch key {
	case "left", "h":
		q.show(st, q.current-1)
		return nil
	case "right", "l":
		q.show(st, q.current+1)
		return nil
	case "x", "backspace":
		if st.Answers[q.current] == nil {
			return nil
		}
		q.saving = true
		return s.answerCmd(q.current, nil)
	case "c":
		q.saving = true
		return s.cancelCmd()
	case "s":
		if answered := st.Answered(); answered < len(st.Questions) {
			q.confirming = true
			return nil
		}
		q.saving = true
		return s.submitCmd()
	}

	var cmd tea.Cmd
	q.mc, cmd = q.mc.Update(msg)
	return cmd
}

func (q *quizPane) choose(s *TopicScreen, option int) tea.Cmd {
	if q.saving || !s.view.Quiz.Active {
		return nil
	}
	q.saving = true
	return s.answerCmd(q.current, &option)
}

func (q *quizPane) generated(err error, st quiz.State) tea.Cmd {
	q.generating = false
	if err != nil {
		q.errMsg = err.Error()
		return q.focus(st)
	}
	q.errMsg = ""
	q.show(st, 0)
	return nil
}

func (q *quizPane) saved(err error, st quiz.State) tea.Cmd {
	q.saving = false
	q.errMsg = ""
	if err != nil {
		q.errMsg = err.Error()
	}
	if !st.Active {
		return q.focus(st)
	}

	cursor := q.mc.Cursor
	q.show(st, q.current)
	if st.Answers[q.current] == nil {
		q.mc.Cursor = min(cursor, max(len(q.mc.Options)-1, 0))
		return nil
	}
	// Move on after answering, unless this was the last question.
	if err == nil && q.current < len(st.Questions)-1 {
		q.show(st, q.current+1)
	}
	return nil
}

func (q *quizPane) show(st quiz.State, i int) {
	if len(st.Questions) == 0 {
		return
	}
	q.current = min(max(i, 0), len(st.Questions)-1)
	question := st.Questions[q.current]
	q.mc = components.NewMultiChoice(question.Text, question.Options, st.Answers[q.current])
}

func (q *quizPane) view(st quiz.State, width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case q.generating:
		b.WriteString(center(width, theme.Hint.Render("Generating quiz...")))
	case st.Active:
		b.WriteString(q.activeView(st, width))
	default:
		b.WriteString(q.setupView(st, width))
	}

	if q.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(center(width, theme.ErrorText.Render("Error: "+q.errMsg)))
	}
	return lipgloss.NewStyle().MaxHeight(height).Render(b.String())
}

func (q *quizPane) setupView(st quiz.State, width int) string {
	cardWidth := min(width-4, 80)
	var b strings.Builder

	b.WriteString(center(width, theme.Title.Render("Test yourself")))
	b.WriteString("\n\n")
	if st.Total > 0 {
		b.WriteString(center(width, theme.Hint.Render(
			fmt.Sprintf("Last quiz: %d / %d (%.0f%%)", st.Score, st.Total, st.Accuracy()*100))))
		b.WriteString("\n\n")
	}

	field := func(label string, in components.TextInput, active bool) string {
		style := theme.Card.Width(cardWidth)
		if active {
			style = style.BorderForeground(theme.Primary)
		}
		return lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(theme.Hint.Render(label)+"\n"+in.View()))
	}
	b.WriteString(field("Subject", q.subject, q.field == fieldSubject))
	b.WriteString("\n")
	b.WriteString(field("Questions", q.count, q.field == fieldCount))
	return b.String()
}

func (q *quizPane) activeView(st quiz.State, width int) string {
	cardWidth := min(width-4, 90)
	var b strings.Builder

	subject := "the whole document"
	if st.CustomTopic != "" {
		subject = st.CustomTopic
	}
	b.WriteString(center(width, theme.Hint.Render(
		fmt.Sprintf("Question %d of %d about %s   %d answered", q.current+1, len(st.Questions), subject, st.Answered()))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Card.Width(cardWidth).Render(q.mc.View())))
	b.WriteString("\n")
	b.WriteString(center(width, answerDots(st, q.current)))

	if q.confirming {
		b.WriteString("\n\n")
		b.WriteString(center(width, theme.ErrorText.Render(
			fmt.Sprintf("%d question(s) unanswered. Submit anyway? (y/n)", len(st.Questions)-st.Answered()))))
	}
	return b.String()
}

// answerDots renders one dot per question: filled when answered, ringed
// for the current one.
func answerDots(st quiz.State, current int) string {
	dots := make([]string, len(st.Answers))
	for i, a := range st.Answers {
		d := "○"
		if a != nil {
			d = "●"
		}
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if i == current {
			style = theme.Selected
		}
		dots[i] = style.Render(d)
	}
	return strings.Join(dots, " ")
}

func center(width int, s string) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
