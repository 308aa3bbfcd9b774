package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyscout/internal/quiz"
	"github.com/abhisek/studyscout/internal/router"
	"github.com/abhisek/studyscout/internal/screen"
	"github.com/abhisek/studyscout/internal/ui/components"
	"github.com/abhisek/studyscout/internal/ui/layout"
	"github.com/abhisek/studyscout/internal/ui/theme"
)

// SummaryScreen shows the score and per-question review of a quiz.
type SummaryScreen struct {
	topic  string
	result quiz.Result
	scroll int
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

func New(topic string, result quiz.Result) *SummaryScreen {
	return &SummaryScreen{topic: topic, result: result}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Review"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Back to topic"},
	}
}

func (s *SummaryScreen) HeaderInfo() layout.HeaderInfo {
	return layout.HeaderInfo{Topic: s.topic}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			s.scroll = max(s.scroll-1, 0)
		case "down", "j":
			s.scroll = min(s.scroll+1, max(len(s.result.Review)-1, 0))
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	res := s.result
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString(center.Foreground(theme.Primary).Bold(true).Render(headline(res)))
	b.WriteString("\n\n")
	b.WriteString(center.Foreground(theme.Text).Render(
		fmt.Sprintf("Score: %d / %d   Accuracy: %.0f%%", res.Score, res.Total, res.Accuracy()*100)))
	b.WriteString("\n\n")

	barWidth := min(width-8, 60)
	bar := components.NewProgressBar("", res.Accuracy(), false, barWidth)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	cardWidth := min(width-6, 90)
	for _, item := range res.Review[min(s.scroll, len(res.Review)):] {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderItem(item, cardWidth)))
		b.WriteString("\n")
	}
	return b.String()
}

func headline(res quiz.Result) string {
	switch acc := res.Accuracy(); {
	case res.Total == 0:
		return "Quiz finished"
	case acc == 1:
		return "Perfect score!"
	case acc >= 0.7:
		return "Nice work!"
	case acc >= 0.4:
		return "Getting there"
	default:
		return "Worth another read"
	}
}

func renderItem(item quiz.ReviewItem, width int) string {
	mc := components.NewMultiChoice(fmt.Sprintf("%d. %s", item.Index+1, item.Question), item.Options, item.Chosen)
	mc.Correct = item.Correct
	mc.Reveal = true

	status := theme.Correct.Render("✓ correct")
	switch {
	case item.Chosen == nil:
		status = theme.Hint.Render("– unanswered")
	case !item.IsCorrect:
		status = theme.Incorrect.Render("✗ incorrect")
	}
	return theme.Card.Width(width).Render(mc.View() + "\n" + status)
}
