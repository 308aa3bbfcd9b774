// Package topic is the study screen for one topic: chat with the document,
// take quizzes and watch progress.
package topic

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyscout/internal/router"
	"github.com/abhisek/studyscout/internal/screen"
	"github.com/abhisek/studyscout/internal/screens/summary"
	"github.com/abhisek/studyscout/internal/study"
	"github.com/abhisek/studyscout/internal/ui/components"
	"github.com/abhisek/studyscout/internal/ui/layout"
	"github.com/abhisek/studyscout/internal/ui/theme"
)

type tab int

const (
	tabChat tab = iota
	tabQuiz
	tabProgress
)

var tabNames = []string{"Chat", "Quiz", "Progress"}

// Options tunes the topic screen.
type Options struct {
	DefaultQuizCount int
	// RequestTimeout bounds chat and quiz generation; 0 leaves it to the
	// provider.
	RequestTimeout time.Duration
}

// TopicScreen implements screen.Screen for one topic session.
type TopicScreen struct {
	store *study.Store
	topic string
	opts  Options

	tab      tab
	view     study.View
	progress study.Progress
	loaded   bool
	errMsg   string

	chat chatPane
	quiz quizPane
}

var _ screen.Screen = (*TopicScreen)(nil)
var _ screen.KeyHintProvider = (*TopicScreen)(nil)
var _ screen.EscapeHandler = (*TopicScreen)(nil)
var _ screen.TopicProvider = (*TopicScreen)(nil)

func New(store *study.Store, topic string, opts Options) *TopicScreen {
	if opts.DefaultQuizCount <= 0 {
		opts.DefaultQuizCount = 5
	}
	return &TopicScreen{
		store: store,
		topic: topic,
		opts:  opts,
		chat:  newChatPane(),
		quiz:  newQuizPane(opts.DefaultQuizCount),
	}
}

func (s *TopicScreen) Init() tea.Cmd {
	return tea.Batch(s.loadCmd(), s.chat.input.Init())
}

// Refresh reloads after a pushed screen, such as the quiz review, closes.
func (s *TopicScreen) Refresh() tea.Cmd {
	return s.loadCmd()
}

func (s *TopicScreen) Title() string {
	return s.topic
}

func (s *TopicScreen) HeaderInfo() layout.HeaderInfo {
	return layout.HeaderInfo{Topic: s.topic, Comprehension: s.progress.Comprehension}
}

func (s *TopicScreen) CapturesEscape() bool {
	switch s.tab {
	case tabChat:
		return s.chat.input.Value() != ""
	case tabQuiz:
		return s.quiz.capturesEscape()
	}
	return false
}

func (s *TopicScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Tab", Description: "Switch"}}
	switch s.tab {
	case tabChat:
		hints = append(hints, s.chat.keyHints()...)
	case tabQuiz:
		hints = append(hints, s.quiz.keyHints(s.view.Quiz)...)
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Topics"})
}

func (s *TopicScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.apply(msg)
		return s, nil

	case chatDoneMsg:
		s.apply(msg.loadedMsg)
		s.chat.finish(msg.ChatErr)
		return s, nil

	case quizGeneratedMsg:
		s.apply(msg.loadedMsg)
		return s, s.quiz.generated(msg.QuizErr, s.view.Quiz)

	case answerSavedMsg:
		s.apply(msg.loadedMsg)
		return s, s.quiz.saved(msg.QuizErr, s.view.Quiz)

	case quizSubmittedMsg:
		s.apply(msg.loadedMsg)
		cmd := s.quiz.saved(msg.QuizErr, s.view.Quiz)
		if msg.QuizErr != nil {
			return s, cmd
		}
		s.quiz.lastResult = &msg.Result
		res := msg.Result
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: summary.New(s.topic, res)}
		}

	case components.ChooseMsg:
		if s.tab == tabQuiz {
			return s, s.quiz.choose(s, msg.Option)
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	// Cursor blink and other input messages.
	return s, s.forwardToInput(msg)
}

func (s *TopicScreen) apply(msg loadedMsg) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return
	}
	s.errMsg = ""
	s.view = msg.View
	s.progress = msg.Progress
	s.loaded = true
}

func (s *TopicScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "tab":
		return s, s.switchTab((s.tab + 1) % tab(len(tabNames)))
	case "shift+tab":
		return s, s.switchTab((s.tab + tab(len(tabNames)) - 1) % tab(len(tabNames)))
	case "esc":
		if !s.CapturesEscape() {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}

	switch s.tab {
	case tabChat:
		return s, s.chat.handleKey(s, msg)
	case tabQuiz:
		return s, s.quiz.handleKey(s, msg)
	}
	return s, nil
}

func (s *TopicScreen) switchTab(t tab) tea.Cmd {
	s.tab = t
	s.chat.input.Blur()
	s.quiz.blur()
	switch t {
	case tabChat:
		return s.chat.input.Focus()
	case tabQuiz:
		return s.quiz.focus(s.view.Quiz)
	case tabProgress:
		return s.loadCmd()
	}
	return nil
}

func (s *TopicScreen) forwardToInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s.tab {
	case tabChat:
		s.chat.input, cmd = s.chat.input.Update(msg)
	case tabQuiz:
		cmd = s.quiz.forward(msg)
	}
	return cmd
}

func (s *TopicScreen) View(width, height int) string {
	tabs := renderTabs(s.tab)
	if s.errMsg != "" && !s.loaded {
		return tabs + "\n\n" + lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Foreground(theme.Error).Render("Error: "+s.errMsg)
	}
	if !s.loaded {
		return tabs + "\n\n" + lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Foreground(theme.TextDim).Render("Loading topic...")
	}

	bodyHeight := max(height-lipgloss.Height(tabs)-1, 0)
	var body string
	switch s.tab {
	case tabChat:
		body = s.chat.view(s, width, bodyHeight)
	case tabQuiz:
		body = s.quiz.view(s.view.Quiz, width, bodyHeight)
	case tabProgress:
		body = renderProgress(s.view, s.progress, width)
	}
	return tabs + "\n" + body
}

func renderTabs(active tab) string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		if tab(i) == active {
			parts[i] = theme.TabActive.Render(name)
		} else {
			parts[i] = theme.TabInactive.Render(name)
		}
	}
	return "  " + strings.Join(parts, " ")
}
