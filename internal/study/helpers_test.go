package study

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyscout/internal/assistant"
	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/llm"
	"github.com/abhisek/studyscout/internal/quiz"
	"github.com/abhisek/studyscout/internal/store"
	"github.com/abhisek/studyscout/internal/vectordb/memory"
)

const pcaText = `Principal component analysis reduces the dimensionality of a dataset
while preserving as much variance as possible.` + "\f" + `Eigenvectors of the covariance matrix give
the principal components.`

func pcaDoc() knowledge.Document {
	return knowledge.Document{Name: "pca.txt", Data: []byte(pcaText)}
}

// countingIngester wraps a real ingester and counts calls.
type countingIngester struct {
	inner *knowledge.Ingester
	calls atomic.Int32
	delay time.Duration
}

func (c *countingIngester) Ingest(ctx context.Context, doc knowledge.Document, table string) (*knowledge.Handle, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return c.inner.Ingest(ctx, doc, table)
}

// fakeAssistants builds a real Chat over provider and a per-topic quiz
// generator.
type fakeAssistants struct {
	provider llm.Provider
	gens     map[string]quiz.Generator
	err      error
}

func (f *fakeAssistants) NewAssistants(topic string, kb assistant.Knowledge) (assistant.Responder, quiz.Generator, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	gen := f.gens[topic]
	if gen == nil {
		gen = quiz.GeneratorFunc(func(context.Context, string, int) ([]quiz.Question, error) {
			return nil, fmt.Errorf("no generator for %s", topic)
		})
	}
	return assistant.NewChat(topic, topic, kb, f.provider, nil, assistant.DefaultConfig(), nil), gen, nil
}

type harness struct {
	store      *Store
	ingester   *countingIngester
	vectors    *memory.Store
	provider   *llm.MockProvider
	assistants *fakeAssistants
	tempDir    string
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	vectors := memory.New()
	tempDir := t.TempDir()
	cfg := knowledge.DefaultConfig()
	cfg.TempDir = tempDir
	inner := knowledge.NewIngester(knowledge.Readers{".txt": knowledge.TextReader{}},
		llm.NewMockEmbedder(32), vectors, cfg, nil)

	h := &harness{
		ingester:   &countingIngester{inner: inner},
		vectors:    vectors,
		provider:   llm.NewMockProvider(),
		assistants: &fakeAssistants{gens: map[string]quiz.Generator{}},
		tempDir:    tempDir,
	}
	h.assistants.provider = h.provider
	h.store = NewStore(h.ingester, h.assistants, opts)
	return h
}

func (h *harness) topic(t *testing.T, name string) *TopicSession {
	t.Helper()
	ts, err := h.store.GetOrCreate(context.Background(), name, pcaDoc())
	require.NoError(t, err)
	return ts
}

func openEvents(t *testing.T) store.EventRepo {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st.EventRepo()
}

// fixedQuiz returns a generator yielding one question per correct index.
func fixedQuiz(correct ...int) quiz.Generator {
	return quiz.GeneratorFunc(func(_ context.Context, subject string, _ int) ([]quiz.Question, error) {
		out := make([]quiz.Question, len(correct))
		for i, c := range correct {
			out[i] = quiz.Question{
				Text:    fmt.Sprintf("Question %d about %s?", i+1, subject),
				Options: []string{"A", "B", "C", "D"},
				Correct: c,
			}
		}
		return out, nil
	})
}
