// Package history lists submitted quizzes across topics.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyscout/internal/quiz"
	"github.com/abhisek/studyscout/internal/router"
	"github.com/abhisek/studyscout/internal/screen"
	"github.com/abhisek/studyscout/internal/store"
	"github.com/abhisek/studyscout/internal/ui/components"
	"github.com/abhisek/studyscout/internal/ui/layout"
	"github.com/abhisek/studyscout/internal/ui/theme"
)

const historyLimit = 50

type historyLoadedMsg struct {
	Quizzes []store.QuizEvent
	Err     error
}

// HistoryScreen displays past quizzes, newest first.
type HistoryScreen struct {
	eventRepo store.EventRepo
	quizzes   []store.QuizEvent
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		quizzes, err := s.eventRepo.QueryQuizEvents(context.Background(), store.QueryOpts{Limit: historyLimit})
		return historyLoadedMsg{Quizzes: quizzes, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Quiz History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.quizzes = msg.Quizzes
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.quizzes)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.quizzes) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No quizzes yet. Open a topic and test yourself!")
	}

	var b strings.Builder
	b.WriteString("\n")

	trend := make([]float64, 0, len(s.quizzes))
	for i := len(s.quizzes) - 1; i >= 0; i-- {
		if q := s.quizzes[i]; q.Total > 0 {
			trend = append(trend, float64(q.Score)/float64(q.Total))
		}
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Hint.Render("Trend ")+lipgloss.NewStyle().Foreground(theme.Secondary).Render(components.Sparkline(trend))))
	b.WriteString("\n\n")

	for i, q := range s.quizzes {
		var accuracy float64
		if q.Total > 0 {
			accuracy = float64(q.Score) / float64(q.Total) * 100
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		subject := ""
		if q.Subject != "" && q.Subject != q.Topic {
			subject = " / " + q.Subject
		}
		line := fmt.Sprintf("%s%s  %s%s  %d/%d  %.0f%%",
			prefix, q.Timestamp.Format("Jan 02 15:04"), q.Topic, subject, q.Score, q.Total, accuracy)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, detail := range reviewLines(q.Review) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, detail))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// reviewLines renders the stored per-question review. Events written
// without one show a note instead.
func reviewLines(raw string) []string {
	var items []quiz.ReviewItem
	if raw == "" || json.Unmarshal([]byte(raw), &items) != nil || len(items) == 0 {
		return []string{theme.Hint.Render("    No question details recorded")}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		mark, style := "✓", theme.Correct
		if !item.IsCorrect {
			mark, style = "✗", theme.Incorrect
		}
		out = append(out, style.Render(fmt.Sprintf("    %s %d. %s", mark, item.Index+1, item.Question)))
	}
	return out
}
