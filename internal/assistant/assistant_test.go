package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyscout/internal/apperr"
	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/llm"
	"github.com/abhisek/studyscout/internal/quiz"
)

type stubKB struct {
	matches []knowledge.Match
	err     error
	queries []string
}

func (s *stubKB) Search(_ context.Context, query string, k int) ([]knowledge.Match, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.matches) > k {
		return s.matches[:k], nil
	}
	return s.matches, nil
}

func pcaKB() *stubKB {
	return &stubKB{matches: []knowledge.Match{
		{Chunk: knowledge.Chunk{Page: 2, Text: "PCA finds directions of maximum variance."}, Score: 0.9},
		{Chunk: knowledge.Chunk{Page: 5, Text: "Eigenvectors of the covariance matrix."}, Score: 0.7},
	}}
}

func TestChat_Respond(t *testing.T) {
	kb := pcaKB()
	provider := llm.NewMockProvider(llm.TextResponse("PCA maximizes variance [1]."))
	chat := NewChat("pca", "pca:1", kb, provider, nil, DefaultConfig(), nil)

	reply, err := chat.Respond(context.Background(), "  What does PCA maximize?  ")
	require.NoError(t, err)

	assert.Equal(t, "PCA maximizes variance [1].", reply.Text)
	require.Len(t, reply.References, 2)
	assert.Equal(t, 2, reply.References[0].Page)
	assert.Equal(t, []string{"What does PCA maximize?"}, kb.queries)

	req := provider.LastCall()
	assert.Nil(t, req.Schema)
	assert.Contains(t, req.System, "StudyScout")
	assert.Contains(t, req.System, `"pca"`)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "[1] (page 2) PCA finds directions")
	assert.Contains(t, req.Messages[0].Content, "What does PCA maximize?")
}

func TestChat_KeepsQuotedReply(t *testing.T) {
	provider := llm.NewMockProvider(llm.TextResponse(`"yes"`))
	chat := NewChat("pca", "pca:1", pcaKB(), provider, nil, DefaultConfig(), nil)

	reply, err := chat.Respond(context.Background(), "Answer with just a quoted yes")
	require.NoError(t, err)
	assert.Equal(t, `"yes"`, reply.Text)
}

func TestChat_SearchesWebForResources(t *testing.T) {
	search := &llm.MockSearcher{Result: &llm.SearchResult{
		Summary: "StatQuest explains PCA visually.",
		Sources: []llm.WebSource{{Title: "StatQuest: PCA", URL: "https://example.com/statquest-pca"}},
	}}
	provider := llm.NewMockProvider(llm.TextResponse("Try [StatQuest: PCA](https://example.com/statquest-pca)."))
	chat := NewChat("pca", "pca:1", pcaKB(), provider, nil, DefaultConfig(), nil).WithSearch(search)

	reply, err := chat.Respond(context.Background(), "Any YouTube tutorials on this?")
	require.NoError(t, err)

	assert.Equal(t, []string{"Any YouTube tutorials on this? (topic: pca)"}, search.Queries)
	assert.Equal(t, search.Result.Sources, reply.Sources)
	content := provider.LastCall().Messages[0].Content
	assert.Contains(t, content, "Web results:\nStatQuest explains PCA visually.\n- StatQuest: PCA: https://example.com/statquest-pca")
	assert.Contains(t, content, "[1] (page 2)")
	assert.Contains(t, provider.LastCall().System, "Never make up a URL")
}

func TestChat_SkipsWebSearchForPlainQuestions(t *testing.T) {
	search := &llm.MockSearcher{}
	provider := llm.NewMockProvider(llm.TextResponse("Variance."))
	chat := NewChat("pca", "pca:1", pcaKB(), provider, nil, DefaultConfig(), nil).WithSearch(search)

	reply, err := chat.Respond(context.Background(), "What does PCA maximize?")
	require.NoError(t, err)
	assert.Empty(t, search.Queries)
	assert.Empty(t, reply.Sources)
	assert.NotContains(t, provider.LastCall().Messages[0].Content, "Web results")
}

func TestChat_WebSearchFailureKeepsTurn(t *testing.T) {
	search := &llm.MockSearcher{Err: errors.New("quota exceeded")}
	provider := llm.NewMockProvider(llm.TextResponse("StatQuest has a good PCA video."))
	chat := NewChat("pca", "pca:1", pcaKB(), provider, nil, DefaultConfig(), nil).WithSearch(search)

	reply, err := chat.Respond(context.Background(), "Recommend a video on PCA")
	require.NoError(t, err)
	assert.Equal(t, "StatQuest has a good PCA video.", reply.Text)
	assert.Empty(t, reply.Sources)
	assert.Len(t, search.Queries, 1)
}

func TestWantsResources(t *testing.T) {
	assert.True(t, wantsResources("Learning resources for PCA"))
	assert.True(t, wantsResources("any good Books?"))
	assert.False(t, wantsResources("Explain eigenvectors"))
}

func TestChat_ReplaysRecentHistory(t *testing.T) {
	provider := llm.NewMockProvider()
	for i := range 5 {
		provider.AddResponse(llm.TextResponse(fmt.Sprintf("answer %d", i)))
	}
	cfg := DefaultConfig()
	cfg.HistoryTurns = 3
	chat := NewChat("pca", "pca:1", pcaKB(), provider, nil, cfg, nil)

	for i := range 5 {
		_, err := chat.Respond(context.Background(), fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	msgs := provider.LastCall().Messages
	require.Len(t, msgs, 7)
	// Oldest replayed exchange is the second one; history holds the raw
	// question without references.
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "question 1"}, msgs[0])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "answer 1"}, msgs[1])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "answer 3"}, msgs[5])
	assert.Contains(t, msgs[6].Content, "question 4")
}

func TestChat_FailureIsNotRemembered(t *testing.T) {
	provider := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: llm.ErrTimeout}},
		llm.TextResponse("second try"),
	)
	mem := NewInMemory(0)
	chat := NewChat("pca", "pca:1", pcaKB(), provider, mem, DefaultConfig(), nil)

	_, err := chat.Respond(context.Background(), "first")
	require.Error(t, err)
	assert.True(t, apperr.IsGeneration(err))
	assert.True(t, errors.Is(err, llm.ErrTimeout))

	got, err := mem.Recent(context.Background(), "pca:1", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = chat.Respond(context.Background(), "second")
	require.NoError(t, err)
	assert.Len(t, provider.LastCall().Messages, 1)
}

func TestChat_Errors(t *testing.T) {
	t.Run("empty message", func(t *testing.T) {
		provider := llm.NewMockProvider()
		chat := NewChat("pca", "c", pcaKB(), provider, nil, DefaultConfig(), nil)
		_, err := chat.Respond(context.Background(), "   ")
		assert.True(t, apperr.IsGeneration(err))
		assert.Equal(t, 0, provider.CallCount())
	})

	t.Run("search failure", func(t *testing.T) {
		provider := llm.NewMockProvider(llm.TextResponse("unused"))
		chat := NewChat("pca", "c", &stubKB{err: errors.New("table missing")}, provider, nil, DefaultConfig(), nil)
		_, err := chat.Respond(context.Background(), "hi")
		assert.True(t, apperr.IsGeneration(err))
		assert.ErrorContains(t, err, "table missing")
		assert.Equal(t, 0, provider.CallCount())
	})

	t.Run("empty reply", func(t *testing.T) {
		provider := llm.NewMockProvider(llm.TextResponse("  "))
		chat := NewChat("pca", "c", pcaKB(), provider, nil, DefaultConfig(), nil)
		_, err := chat.Respond(context.Background(), "hi")
		assert.True(t, apperr.IsGeneration(err))
	})
}

func TestChat_Forget(t *testing.T) {
	provider := llm.NewMockProvider(llm.TextResponse("a"), llm.TextResponse("b"))
	chat := NewChat("pca", "c", pcaKB(), provider, nil, DefaultConfig(), nil)

	_, err := chat.Respond(context.Background(), "one")
	require.NoError(t, err)
	require.NoError(t, chat.Forget(context.Background()))

	_, err = chat.Respond(context.Background(), "two")
	require.NoError(t, err)
	assert.Len(t, provider.LastCall().Messages, 1)
}

func pcaQuestions(n int) []quiz.Question {
	out := make([]quiz.Question, n)
	for i := range out {
		out[i] = quiz.Question{
			Text:    fmt.Sprintf("Question %d about PCA?", i+1),
			Options: []string{"Bias", "Variance", "Entropy", "Loss"},
			Correct: 1,
		}
	}
	return out
}

func TestQuizzer_GenerateQuiz(t *testing.T) {
	kb := pcaKB()
	provider := llm.NewMockProvider(llm.JSONResponse(QuizResult{Questions: pcaQuestions(3)}))
	q := NewQuizzer(kb, provider, DefaultConfig())

	got, err := q.GenerateQuiz(context.Background(), "PCA", 3)
	require.NoError(t, err)
	assert.Equal(t, pcaQuestions(3), got)

	req := provider.LastCall()
	assert.Same(t, QuizSchema, req.Schema)
	assert.Equal(t, DefaultConfig().QuizMaxTokens, req.MaxTokens)
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "Generate 3 multiple-choice quiz questions about PCA")
	assert.Contains(t, req.Messages[0].Content, "[2] (page 5)")
	assert.Equal(t, []string{"PCA"}, kb.queries)
}

func TestQuizzer_ReturnsShortQuizUnchanged(t *testing.T) {
	provider := llm.NewMockProvider(llm.JSONResponse(QuizResult{Questions: pcaQuestions(2)}))
	q := NewQuizzer(pcaKB(), provider, DefaultConfig())

	got, err := q.GenerateQuiz(context.Background(), "PCA", 3)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestQuizzer_Errors(t *testing.T) {
	tests := []struct {
		name string
		kb   Knowledge
		resp llm.MockResponse
	}{
		{"provider error", pcaKB(), llm.MockResponse{Err: &llm.ErrRateLimit{}}},
		{"schema violation", pcaKB(), llm.JSONResponse(map[string]any{"questions": []any{}})},
		{"search failure", &stubKB{err: errors.New("boom")}, llm.TextResponse("unused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuizzer(tt.kb, llm.NewMockProvider(tt.resp), DefaultConfig())
			_, err := q.GenerateQuiz(context.Background(), "PCA", 3)
			require.Error(t, err)
			assert.True(t, apperr.IsGeneration(err), "got %T", err)
		})
	}
}

func TestFactory_NewAssistants(t *testing.T) {
	provider := llm.NewMockProvider(llm.TextResponse("a"), llm.TextResponse("b"))
	mem := NewInMemory(0)
	f := NewFactory(provider, mem, DefaultConfig(), nil)

	chat1, gen, err := f.NewAssistants("pca", pcaKB())
	require.NoError(t, err)
	chat2, _, err := f.NewAssistants("pca", pcaKB())
	require.NoError(t, err)
	assert.IsType(t, &Quizzer{}, gen)

	_, err = chat1.Respond(context.Background(), "one")
	require.NoError(t, err)
	// A second assistant for the same topic starts a fresh conversation.
	_, err = chat2.Respond(context.Background(), "two")
	require.NoError(t, err)
	assert.Len(t, provider.LastCall().Messages, 1)
}

func TestFactory_WithSearch(t *testing.T) {
	search := &llm.MockSearcher{}
	provider := llm.NewMockProvider(llm.TextResponse("a"))
	f := NewFactory(provider, nil, DefaultConfig(), nil).WithSearch(search)

	chat, _, err := f.NewAssistants("pca", pcaKB())
	require.NoError(t, err)
	_, err = chat.Respond(context.Background(), "tutorial please")
	require.NoError(t, err)
	assert.Len(t, search.Queries, 1)
}

func TestFactory_RequiresProvider(t *testing.T) {
	_, _, err := NewFactory(nil, nil, DefaultConfig(), nil).NewAssistants("pca", pcaKB())
	assert.Error(t, err)
}

func TestChatSystemPrompt(t *testing.T) {
	p := chatSystemPrompt(DefaultConfig(), "Intro to PCA")
	assert.True(t, strings.HasPrefix(p, "You are StudyScout."))
	assert.Contains(t, p, "Instructions:\n- ")
	assert.Contains(t, p, `"Intro to PCA"`)
}

func TestChatUserMessage_NoMatches(t *testing.T) {
	assert.Equal(t, "hello", chatUserMessage("hello", nil, nil))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "a b c", excerpt("a\n b\t c", 10))
	assert.Equal(t, "abc…", excerpt("abcdef", 3))
}
