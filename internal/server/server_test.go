package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyscout/internal/assistant"
	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/llm"
	"github.com/abhisek/studyscout/internal/quiz"
	"github.com/abhisek/studyscout/internal/study"
	"github.com/abhisek/studyscout/internal/vectordb/memory"
)

const pcaText = "Principal component analysis reduces dimensionality while preserving variance.\f" +
	"Eigenvectors of the covariance matrix give the principal components."

type testServer struct {
	router   *gin.Engine
	provider *llm.MockProvider
	cookies  []*http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := knowledge.DefaultConfig()
	cfg.TempDir = t.TempDir()
	ingester := knowledge.NewIngester(knowledge.Readers{".txt": knowledge.TextReader{}},
		llm.NewMockEmbedder(16), memory.New(), cfg, nil)

	provider := llm.NewMockProvider()
	factory := assistant.NewFactory(provider, nil, assistant.DefaultConfig(), nil)
	st := study.NewStore(ingester, factory, study.Options{})
	t.Cleanup(func() { st.Close(t.Context()) })

	return &testServer{
		router: NewRouter(RouterConfig{
			Store:            st,
			MaxUploadBytes:   1 << 20,
			DefaultQuizCount: 2,
			SessionSecret:    "test-secret-test-secret-test-sec",
		}),
		provider: provider,
	}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		s.cookies = cs
	}
	return rec
}

func (s *testServer) json(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req)
}

func (s *testServer) upload(t *testing.T, filename, topic string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if topic != "" {
		require.NoError(t, w.WriteField("topic", topic))
	}
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/topics", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.do(t, req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorEnvelope](t, rec).Error.Code
}

func pcaQuiz(correct ...int) assistant.QuizResult {
	var res assistant.QuizResult
	for _, c := range correct {
		res.Questions = append(res.Questions, quiz.Question{
			Text:    "Which statement about PCA is true?",
			Options: []string{"A", "B", "C", "D"},
			Correct: c,
		})
	}
	return res
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.json(t, http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateTopic(t *testing.T) {
	s := newTestServer(t)

	rec := s.upload(t, "Intro to PCA.txt", "", []byte(pcaText))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[topicSummary](t, rec)
	assert.Equal(t, "Intro to PCA", created.Name)
	assert.Equal(t, 2, created.Pages)

	rec = s.json(t, http.MethodGet, "/api/topics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Topics  []topicSummary `json:"topics"`
		Current string         `json:"current"`
	}](t, rec)
	require.Len(t, list.Topics, 1)
	assert.Equal(t, "Intro to PCA", list.Current)
}

func TestCreateTopic_Errors(t *testing.T) {
	s := newTestServer(t)

	t.Run("missing file", func(t *testing.T) {
		rec := s.json(t, http.MethodPost, "/api/topics", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "validation", errorCode(t, rec))
	})

	t.Run("unsupported type", func(t *testing.T) {
		rec := s.upload(t, "notes.docx", "", []byte("hello"))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "ingestion", errorCode(t, rec))
	})

	t.Run("too large", func(t *testing.T) {
		rec := s.upload(t, "big.txt", "", bytes.Repeat([]byte("a"), 2<<20))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestGetTopic_NotFound(t *testing.T) {
	s := newTestServer(t)
	rec := s.json(t, http.MethodGet, "/api/topics/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))
}

func TestSendMessage(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.upload(t, "pca.txt", "", []byte(pcaText)).Code)

	s.provider.AddResponse(llm.TextResponse("PCA preserves variance."))
	rec := s.json(t, http.MethodPost, "/api/topics/pca/messages", messageRequest{Text: "What is PCA?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reply := decode[struct {
		Reply assistant.ChatReply `json:"reply"`
	}](t, rec)
	assert.Equal(t, "PCA preserves variance.", reply.Reply.Text)

	rec = s.json(t, http.MethodGet, "/api/topics/pca", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[topicView](t, rec)
	require.Len(t, view.History, 2)
	assert.Equal(t, study.RoleUser, view.History[0].Role)
	assert.Equal(t, study.RoleAssistant, view.History[1].Role)
	assert.Equal(t, 2, view.Progress.Turns)
}

func TestSendMessage_GenerationFailure(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.upload(t, "pca.txt", "", []byte(pcaText)).Code)

	s.provider.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	rec := s.json(t, http.MethodPost, "/api/topics/pca/messages", messageRequest{Text: "What is PCA?"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "generation", errorCode(t, rec))
}

func TestQuizFlow(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.upload(t, "pca.txt", "", []byte(pcaText)).Code)

	s.provider.AddResponse(llm.JSONResponse(pcaQuiz(1, 2)))
	rec := s.json(t, http.MethodPost, "/api/topics/pca/quiz", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	active := decode[struct {
		Quiz quizView `json:"quiz"`
	}](t, rec).Quiz
	assert.Equal(t, quiz.PhaseActive, active.Phase)
	require.Len(t, active.Questions, 2)
	for _, q := range active.Questions {
		assert.Nil(t, q.Correct, "answer key must stay hidden while active")
	}

	rec = s.json(t, http.MethodGet, "/api/topics/pca/quiz/review", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNoContent,
		s.json(t, http.MethodPut, "/api/topics/pca/quiz/answers/0", gin.H{"option": 1}).Code)
	assert.Equal(t, http.StatusNoContent,
		s.json(t, http.MethodPut, "/api/topics/pca/quiz/answers/1", gin.H{"option": 0}).Code)

	rec = s.json(t, http.MethodPut, "/api/topics/pca/quiz/answers/7", gin.H{"option": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.json(t, http.MethodPut, "/api/topics/pca/quiz/answers/x", gin.H{"option": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.json(t, http.MethodPost, "/api/topics/pca/quiz/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[struct {
		Score    int     `json:"score"`
		Total    int     `json:"total"`
		Accuracy float64 `json:"accuracy"`
	}](t, rec)
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 2, result.Total)
	assert.InDelta(t, 0.5, result.Accuracy, 1e-9)

	rec = s.json(t, http.MethodGet, "/api/topics/pca/quiz/review", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	review := decode[struct {
		Review []quiz.ReviewItem `json:"review"`
	}](t, rec)
	require.Len(t, review.Review, 2)
	assert.True(t, review.Review[0].IsCorrect)
	assert.False(t, review.Review[1].IsCorrect)

	rec = s.json(t, http.MethodPost, "/api/topics/pca/quiz/submit", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "no active quiz to submit")
}

func TestGenerateQuiz_InvalidCount(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.upload(t, "pca.txt", "", []byte(pcaText)).Code)

	rec := s.json(t, http.MethodPost, "/api/topics/pca/quiz", gin.H{"count": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, s.provider.CallCount())
}

func TestCancelQuiz(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.upload(t, "pca.txt", "", []byte(pcaText)).Code)

	s.provider.AddResponse(llm.JSONResponse(pcaQuiz(0, 0)))
	require.Equal(t, http.StatusOK, s.json(t, http.MethodPost, "/api/topics/pca/quiz", gin.H{"subject": "eigenvectors"}).Code)

	assert.Equal(t, http.StatusNoContent, s.json(t, http.MethodPost, "/api/topics/pca/quiz/cancel", nil).Code)

	view := decode[topicView](t, s.json(t, http.MethodGet, "/api/topics/pca", nil))
	assert.Equal(t, quiz.PhaseInert, view.Quiz.Phase)
	assert.Equal(t, "eigenvectors", view.Quiz.CustomTopic)
}

func TestSelectAndDeleteTopic(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.upload(t, "a.txt", "", []byte(pcaText)).Code)
	require.Equal(t, http.StatusCreated, s.upload(t, "b.txt", "", []byte(pcaText)).Code)

	rec := s.json(t, http.MethodPost, "/api/topics/a/select", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"current":"a"}`, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, s.json(t, http.MethodDelete, "/api/topics/a", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.json(t, http.MethodGet, "/api/topics/a", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.json(t, http.MethodPost, "/api/topics/a/select", nil).Code)
}
