package study

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyscout/internal/apperr"
	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/quiz"
)

func TestGetOrCreate_IngestsOnce(t *testing.T) {
	h := newHarness(t, Options{})

	first := h.topic(t, "pca")
	second, err := h.store.GetOrCreate(context.Background(), "pca", knowledge.Document{Name: "other.txt", Data: []byte("different")})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, h.ingester.calls.Load())
	assert.Equal(t, []string{"pca"}, h.store.Topics())
	assert.Equal(t, "pca", h.store.Current())
	assert.Equal(t, "pdf_pca", first.Table)
	assert.True(t, h.vectors.HasTable("pdf_pca"))
	assert.Equal(t, quiz.PhaseInert, first.Quiz.Phase())
}

func TestGetOrCreate_ConcurrentCallersIngestOnce(t *testing.T) {
	h := newHarness(t, Options{})
	h.ingester.delay = 20 * time.Millisecond

	const n = 8
	sessions := make([]*TopicSession, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts, err := h.store.GetOrCreate(context.Background(), "pca", pcaDoc())
			assert.NoError(t, err)
			sessions[i] = ts
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, h.ingester.calls.Load())
	for _, ts := range sessions {
		assert.Same(t, sessions[0], ts)
	}
	assert.Equal(t, []string{"pca"}, h.store.Topics())
}

func TestGetOrCreate_FailedIngestionInsertsNothing(t *testing.T) {
	h := newHarness(t, Options{})

	_, err := h.store.GetOrCreate(context.Background(), "slides", knowledge.Document{Name: "slides.pptx", Data: []byte("x")})
	require.Error(t, err)
	assert.True(t, apperr.IsIngestion(err))
	assert.Empty(t, h.store.Topics())
	assert.Equal(t, "", h.store.Current())

	entries, err := os.ReadDir(h.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The topic can be created once a usable document arrives.
	h.topic(t, "slides")
	assert.Equal(t, []string{"slides"}, h.store.Topics())
	assert.EqualValues(t, 2, h.ingester.calls.Load())
}

func TestGetOrCreate_AssistantFailureReleasesKnowledge(t *testing.T) {
	h := newHarness(t, Options{})
	h.assistants.err = errors.New("no provider")

	_, err := h.store.GetOrCreate(context.Background(), "pca", pcaDoc())
	require.Error(t, err)
	assert.True(t, apperr.IsIngestion(err))
	assert.Empty(t, h.store.Topics())
	assert.False(t, h.vectors.HasTable("pdf_pca"))
}

func TestGetOrCreate_EmptyTopic(t *testing.T) {
	h := newHarness(t, Options{})
	_, err := h.store.GetOrCreate(context.Background(), "  ", pcaDoc())
	assert.True(t, apperr.IsValidation(err))
	assert.EqualValues(t, 0, h.ingester.calls.Load())
}

func TestTopics_InsertionOrder(t *testing.T) {
	h := newHarness(t, Options{})
	for _, name := range []string{"statistics", "pca", "algebra"} {
		h.topic(t, name)
	}
	assert.Equal(t, []string{"statistics", "pca", "algebra"}, h.store.Topics())
	assert.Equal(t, "algebra", h.store.Current())
}

func TestSelect(t *testing.T) {
	h := newHarness(t, Options{})
	pca := h.topic(t, "pca")
	h.topic(t, "algebra")

	_, err := h.store.Select("missing")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, "algebra", h.store.Current())

	got, err := h.store.Select("pca")
	require.NoError(t, err)
	assert.Same(t, pca, got)
	assert.Equal(t, "pca", h.store.Current())
}

func TestSession_ReturnsCopy(t *testing.T) {
	h := newHarness(t, Options{})
	h.topic(t, "pca")
	h.provider.AddResponse(llmText("PCA maximizes variance."))

	_, err := h.store.SendMessage(context.Background(), "pca", "What does PCA do?")
	require.NoError(t, err)

	v, err := h.store.Session("pca")
	require.NoError(t, err)
	require.Len(t, v.History, 2)
	assert.Equal(t, 2, v.Pages)
	assert.Equal(t, 2, v.Chunks)

	v.History[0].Content = "changed"
	again, err := h.store.Session("pca")
	require.NoError(t, err)
	assert.Equal(t, "What does PCA do?", again.History[0].Content)

	_, err = h.store.Session("missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestRemove(t *testing.T) {
	h := newHarness(t, Options{})
	h.topic(t, "pca")
	h.topic(t, "algebra")

	require.NoError(t, h.store.Remove(context.Background(), "algebra"))
	assert.Equal(t, []string{"pca"}, h.store.Topics())
	assert.Equal(t, "", h.store.Current())
	assert.False(t, h.vectors.HasTable("pdf_algebra"))

	err := h.store.Remove(context.Background(), "algebra")
	assert.True(t, apperr.IsNotFound(err))

	// Re-creating a removed topic ingests again.
	h.topic(t, "algebra")
	assert.EqualValues(t, 3, h.ingester.calls.Load())
}

func TestGetOrCreate_TopicsNormalizingAlikeGetOwnTables(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	pca := h.topic(t, "Intro PCA")
	pasta, err := h.store.GetOrCreate(ctx, "intro-pca",
		knowledge.Document{Name: "pasta.txt", Data: []byte("Totally unrelated text about cooking pasta al dente.")})
	require.NoError(t, err)
	third, err := h.store.GetOrCreate(ctx, "Intro_PCA", pcaDoc())
	require.NoError(t, err)

	assert.Equal(t, "pdf_intro_pca", pca.Table)
	assert.NotEqual(t, pca.Table, pasta.Table)
	assert.NotEqual(t, pca.Table, third.Table)
	assert.NotEqual(t, pasta.Table, third.Table)
	assert.Equal(t, 2, h.vectors.Len(pca.Table))
	assert.Equal(t, 1, h.vectors.Len(pasta.Table))

	require.NoError(t, h.store.Remove(ctx, "intro-pca"))
	assert.False(t, h.vectors.HasTable(pasta.Table))
	assert.True(t, h.vectors.HasTable(pca.Table))

	matches, err := pca.Knowledge.Search(ctx, "principal components", 5)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.NotContains(t, m.Text, "pasta")
	}
}

func TestRemove_FreesTableName(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	h.topic(t, "pca")
	require.NoError(t, h.store.Remove(ctx, "pca"))

	again, err := h.store.GetOrCreate(ctx, "PCA", pcaDoc())
	require.NoError(t, err)
	assert.Equal(t, "pdf_pca", again.Table)
}

func TestClose(t *testing.T) {
	t.Run("keeps tables by default", func(t *testing.T) {
		h := newHarness(t, Options{})
		h.topic(t, "pca")
		require.NoError(t, h.store.Close(context.Background()))

		assert.Empty(t, h.store.Topics())
		assert.True(t, h.vectors.HasTable("pdf_pca"))
		_, err := h.store.GetOrCreate(context.Background(), "pca", pcaDoc())
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("releases tables when asked", func(t *testing.T) {
		h := newHarness(t, Options{ReleaseOnClose: true})
		h.topic(t, "pca")
		h.topic(t, "algebra")
		require.NoError(t, h.store.Close(context.Background()))

		assert.False(t, h.vectors.HasTable("pdf_pca"))
		assert.False(t, h.vectors.HasTable("pdf_algebra"))
		// Closing twice is a no-op.
		assert.NoError(t, h.store.Close(context.Background()))
	})
}
