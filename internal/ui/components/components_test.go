package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "header", Disabled: true},
		{Label: "a"},
		{Label: "b", Disabled: true},
		{Label: "c"},
	})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(key("down"))
	assert.Equal(t, 3, m.Selected)
	m, _ = m.Update(key("up"))
	assert.Equal(t, 1, m.Selected)
}

func TestMenu_SetItemsKeepsSelection(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "a"}, {Label: "b"}})
	m, _ = m.Update(key("down"))
	m.SetItems([]MenuItem{{Label: "a"}, {Label: "b"}, {Label: "c"}})
	assert.Equal(t, 1, m.Selected)

	m.SetItems([]MenuItem{{Label: "only"}})
	assert.Equal(t, 0, m.Selected)
}

func TestMenu_EnterRunsAction(t *testing.T) {
	ran := false
	m := NewMenu([]MenuItem{{Label: "go", Action: func() tea.Cmd { ran = true; return nil }}})
	m.Update(key("enter"))
	assert.True(t, ran)
}

func TestMultiChoice_NumberKeyChooses(t *testing.T) {
	m := NewMultiChoice("Q?", []string{"a", "b", "c", "d"}, nil)
	m, cmd := m.Update(key("3"))
	require.NotNil(t, cmd)
	assert.Equal(t, 2, m.Cursor)
	assert.Equal(t, ChooseMsg{Option: 2}, cmd())

	_, cmd = m.Update(key("9"))
	assert.Nil(t, cmd)
}

func TestMultiChoice_RevealIgnoresInput(t *testing.T) {
	chosen := 1
	m := NewMultiChoice("Q?", []string{"a", "b"}, &chosen)
	m.Reveal = true
	m, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.Cursor)
	assert.Contains(t, m.View(), "●")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁█▅", Sparkline([]float64{0, 1, 0.6}))
	assert.Equal(t, "", Sparkline(nil))
}

func TestTextInput_IntValue(t *testing.T) {
	in := NewTextInput("count", true, 2)
	n, err := in.IntValue(5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	in, _ = in.Update(key("x"))
	in, _ = in.Update(key("7"))
	n, err = in.IntValue(5)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}
