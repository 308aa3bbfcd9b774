package topic

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyscout/internal/study"
	"github.com/abhisek/studyscout/internal/ui/components"
	"github.com/abhisek/studyscout/internal/ui/theme"
)

func renderProgress(v study.View, p study.Progress, width int) string {
	cardWidth := min(width-4, 80)
	inner := cardWidth - 4

	var b strings.Builder
	b.WriteString(components.NewProgressBar("Comprehension", p.Comprehension, true, inner).View())
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Chat turns: %d", p.Turns)))
	b.WriteString("\n")
	if p.LastTotal > 0 {
		b.WriteString(theme.Body.Render(fmt.Sprintf("Last quiz:  %d / %d (%.0f%%)", p.LastScore, p.LastTotal, p.LastAccuracy*100)))
	} else {
		b.WriteString(theme.Hint.Render("No quiz submitted yet"))
	}
	if len(p.QuizHistory) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Body.Render("Quiz trend: "))
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render(components.Sparkline(p.QuizHistory)))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%d pages, %d chunks in %s", v.Pages, v.Chunks, v.Table)))

	card := theme.Card.Width(cardWidth).Render(b.String())
	return "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, card)
}
