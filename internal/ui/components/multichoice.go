package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyscout/internal/ui/theme"
)

var optionLabels = []string{"A", "B", "C", "D", "E", "F"}

// OptionLabel returns the letter shown for option i.
func OptionLabel(i int) string {
	if i >= 0 && i < len(optionLabels) {
		return optionLabels[i]
	}
	return fmt.Sprint(i + 1)
}

// MultiChoice renders one quiz question. The cursor moves freely; Chosen
// is the recorded answer, nil when unanswered. With Reveal set the correct
// option and a wrong choice are highlighted.
type MultiChoice struct {
	Question string
	Options  []string
	Cursor   int
	Chosen   *int
	Correct  int
	Reveal   bool
}

// NewMultiChoice creates a selector with the cursor on the chosen option,
// or the first one.
func NewMultiChoice(question string, options []string, chosen *int) MultiChoice {
	m := MultiChoice{Question: question, Options: options, Chosen: chosen}
	if chosen != nil {
		m.Cursor = *chosen
	}
	return m
}

// ChooseMsg is emitted when the learner picks an option.
type ChooseMsg struct {
	Option int
}

// Update moves the cursor. Enter or a number key picks an option and emits
// a ChooseMsg; it does not set Chosen itself.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Reveal {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "enter":
		return m, choose(m.Cursor)
	default:
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(m.Options) {
			m.Cursor = int(key[0] - '1')
			return m, choose(m.Cursor)
		}
	}
	return m, nil
}

func choose(option int) tea.Cmd {
	return func() tea.Msg { return ChooseMsg{Option: option} }
}

func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor && !m.Reveal {
			prefix = "▸ "
		}
		mark := " "
		if m.Chosen != nil && *m.Chosen == i {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, OptionLabel(i), opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Reveal && i == m.Correct:
			style = theme.Correct
		case m.Reveal && m.Chosen != nil && *m.Chosen == i:
			style = theme.Incorrect
		case m.Reveal:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
