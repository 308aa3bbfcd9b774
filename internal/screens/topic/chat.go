package topic

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyscout/internal/study"
	"github.com/abhisek/studyscout/internal/ui/components"
	"github.com/abhisek/studyscout/internal/ui/layout"
	"github.com/abhisek/studyscout/internal/ui/theme"
)

const maxMessageRunes = 2000

type chatPane struct {
	input   components.TextInput
	pending string
	errMsg  string
	// scroll counts lines hidden below the visible window.
	scroll     int
	suggestion int
}

func newChatPane() chatPane {
	return chatPane{input: components.NewTextInput("Ask about the document...", false, maxMessageRunes)}
}

func (c *chatPane) keyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+N", Description: "Suggest"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
	}
}

func (c *chatPane) handleKey(s *TopicScreen, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		c.input.Reset()
		return nil
	case "pgup":
		c.scroll += 5
		return nil
	case "pgdown":
		c.scroll = max(c.scroll-5, 0)
		return nil
	case "ctrl+n":
		if prompts := s.suggestions(); len(prompts) > 0 {
			c.input.Model.SetValue(prompts[c.suggestion%len(prompts)])
			c.input.Model.CursorEnd()
			c.suggestion++
		}
		return nil
	case "enter":
		text := c.input.Value()
		if text == "" || c.pending != "" {
			return nil
		}
		c.pending = text
		c.errMsg = ""
		c.scroll = 0
		c.input.Reset()
		return s.sendCmd(text)
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c *chatPane) finish(err error) {
	c.pending = ""
	if err != nil {
		c.errMsg = err.Error()
	}
}

func (s *TopicScreen) suggestions() []string {
	prompts, err := s.store.SuggestedPrompts(s.topic)
	if err != nil {
		return nil
	}
	return prompts
}

func (c *chatPane) view(s *TopicScreen, width, height int) string {
	textWidth := max(width-6, 20)

	var lines []string
	for _, turn := range s.view.History {
		lines = append(lines, renderTurn(turn, textWidth)...)
	}
	if c.pending != "" && !recentlyAsked(s.view.History, c.pending) {
		lines = append(lines, renderTurn(study.Turn{Role: study.RoleUser, Content: c.pending}, textWidth)...)
	}
	if c.pending != "" {
		lines = append(lines, "  "+theme.Hint.Render("Thinking..."))
	}
	if c.errMsg != "" {
		lines = append(lines, "  "+theme.ErrorText.Render("Error: "+c.errMsg))
	}
	if len(lines) == 0 {
		lines = append(lines, "", "  "+theme.Hint.Render("Ask anything about "+s.topic+". Try:"))
		for _, p := range s.suggestions() {
			lines = append(lines, "    "+theme.Reference.Render("• "+p))
		}
	}

	inputBox := theme.Card.Width(width - 2).Render(c.input.View())
	window := max(height-lipgloss.Height(inputBox)-1, 1)

	c.scroll = min(c.scroll, max(len(lines)-window, 0))
	end := len(lines) - c.scroll
	start := max(end-window, 0)
	visible := lines[start:end]

	pad := window - len(visible)
	return strings.Repeat("\n", pad) + strings.Join(visible, "\n") + "\n" + inputBox
}

// recentlyAsked reports whether a snapshot taken mid-request already holds
// the pending message.
func recentlyAsked(history []study.Turn, text string) bool {
	for i := len(history) - 1; i >= max(len(history)-2, 0); i-- {
		if history[i].Role == study.RoleUser && history[i].Content == text {
			return true
		}
	}
	return false
}

func renderTurn(turn study.Turn, width int) []string {
	label := theme.UserLabel.Render("You")
	if turn.Role == study.RoleAssistant {
		label = theme.AssistantLabel.Render("Assistant")
	}
	out := []string{"", "  " + label}

	body := lipgloss.NewStyle().Width(width).Foreground(theme.Text).Render(turn.Content)
	for _, line := range strings.Split(body, "\n") {
		out = append(out, "    "+line)
	}
	for i, ref := range turn.References {
		ref := fmt.Sprintf("[%d] p.%d %s", i+1, ref.Page, ref.Excerpt)
		out = append(out, "    "+theme.Reference.Render(truncate(ref, width)))
	}
	for _, src := range turn.Sources {
		out = append(out, "    "+theme.Reference.Render(truncate(src.Title+" "+src.URL, width)))
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:max(n-1, 0)]) + "…"
}
