package home

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyscout/internal/assistant"
	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/llm"
	"github.com/abhisek/studyscout/internal/router"
	"github.com/abhisek/studyscout/internal/screens/topic"
	"github.com/abhisek/studyscout/internal/study"
	"github.com/abhisek/studyscout/internal/vectordb/memory"
)

func newHome(t *testing.T) (*HomeScreen, *study.Store) {
	t.Helper()
	cfg := knowledge.DefaultConfig()
	cfg.TempDir = t.TempDir()
	ingester := knowledge.NewIngester(knowledge.Readers{".txt": knowledge.TextReader{}},
		llm.NewMockEmbedder(16), memory.New(), cfg, nil)
	st := study.NewStore(ingester, assistant.NewFactory(llm.NewMockProvider(), nil, assistant.DefaultConfig(), nil), study.Options{})
	t.Cleanup(func() { st.Close(context.Background()) })
	return New(st, Options{}), st
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestHomeScreen_EmptyMenu(t *testing.T) {
	h, _ := newHome(t)
	require.Len(t, h.menu.Items, 2)
	assert.Equal(t, "Open a PDF…", h.menu.Items[0].Label)
	assert.Equal(t, "Quit", h.menu.Items[1].Label)
	assert.Contains(t, h.View(100, 30), "No topics yet")
}

func TestHomeScreen_OpenDocument(t *testing.T) {
	h, st := newHome(t)
	path := writeFile(t, "Linear Algebra.txt", "Vectors and matrices.\fEigenvalues and eigenvectors.")

	h.Update(tea.KeyPressMsg{Code: 'o', Text: "o"})
	require.True(t, h.opening)
	assert.True(t, h.CapturesEscape())

	h.input.Model.SetValue(path)
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, path, h.loading)
	assert.Contains(t, h.View(100, 30), "Reading Linear Algebra.txt")

	_, cmd = h.Update(cmd())
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &topic.TopicScreen{}, push.Screen)
	assert.Equal(t, "Linear Algebra", push.Screen.Title())

	assert.Equal(t, []string{"Linear Algebra"}, st.Topics())
	assert.Equal(t, "Linear Algebra", h.menu.Items[0].Label)
	assert.Equal(t, "2 pages", h.menu.Items[0].Detail[:7])
	assert.False(t, h.CapturesEscape())
}

func TestHomeScreen_OpenMissingFile(t *testing.T) {
	h, st := newHome(t)
	h.Update(tea.KeyPressMsg{Code: 'o', Text: "o"})
	h.input.Model.SetValue(filepath.Join(t.TempDir(), "missing.pdf"))

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	_, cmd = h.Update(cmd())
	assert.Nil(t, cmd)
	assert.NotEmpty(t, h.errMsg)
	assert.Empty(t, st.Topics())
	assert.Contains(t, h.View(100, 30), "Error:")
}

func TestHomeScreen_EscapeCancelsOpening(t *testing.T) {
	h, _ := newHome(t)
	h.Update(tea.KeyPressMsg{Code: 'o', Text: "o"})
	h.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.False(t, h.opening)
}

func TestHomeScreen_SelectTopic(t *testing.T) {
	h, st := newHome(t)
	for _, name := range []string{"a", "b"} {
		_, err := st.GetOrCreate(context.Background(), name, knowledge.Document{Name: name + ".txt", Data: []byte("some text")})
		require.NoError(t, err)
	}
	h.Refresh()
	require.Equal(t, "a", h.menu.Items[0].Label)

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	push := cmd().(router.PushScreenMsg)
	assert.Equal(t, "a", push.Screen.Title())
	assert.Equal(t, "a", st.Current())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes.pdf"), expandHome(" ~/notes.pdf "))
	assert.Equal(t, "/tmp/a.pdf", expandHome(`"/tmp/a.pdf"`))
}
