package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/abhisek/studyscout/internal/apperr"
	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/logger"
	"github.com/abhisek/studyscout/internal/study"
)

const (
	cookieName = "studyscout"
	topicKey   = "topic"
)

// Handler serves the study API over one study.Store.
type Handler struct {
	store        *study.Store
	cookies      sessions.Store
	maxUpload    int64
	defaultCount int
	log          *logger.Logger
}

func (h *Handler) HealthCheck(c *gin.Context) {
	RespondOK(c, gin.H{"status": "ok"})
}

// ListTopics returns all topics and the caller's current one.
func (h *Handler) ListTopics(c *gin.Context) {
	names := h.store.Topics()
	topics := make([]topicSummary, 0, len(names))
	for _, name := range names {
		// Lookup does not wait on a topic that is busy answering.
		ts, err := h.store.Lookup(name)
		if err != nil {
			// Removed between listing and reading.
			continue
		}
		summary := topicSummary{Name: ts.Name}
		if ts.Knowledge != nil {
			summary.Pages, summary.Chunks = ts.Knowledge.Pages, ts.Knowledge.Chunks
		}
		topics = append(topics, summary)
	}
	RespondOK(c, gin.H{"topics": topics, "current": h.currentTopic(c)})
}

// CreateTopic ingests an uploaded document. The topic defaults to the
// file name without its extension.
func (h *Handler) CreateTopic(c *gin.Context) {
	if c.Request.ContentLength > h.maxUpload {
		h.tooLarge(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.tooLarge(c)
			return
		}
		respondErr(c, apperr.Invalid("file", "multipart field \"file\" is required"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondErr(c, apperr.Ingestion("read upload", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respondErr(c, apperr.Ingestion("read upload", err))
		return
	}

	topic := strings.TrimSpace(c.PostForm("topic"))
	if topic == "" {
		topic = knowledge.TopicFromFilename(fh.Filename)
	}

	ts, err := h.store.GetOrCreate(c.Request.Context(), topic, knowledge.Document{Name: fh.Filename, Data: data})
	if err != nil {
		respondErr(c, err)
		return
	}
	h.setCurrentTopic(c, ts.Name)

	pages, chunks := 0, 0
	if ts.Knowledge != nil {
		pages, chunks = ts.Knowledge.Pages, ts.Knowledge.Chunks
	}
	c.JSON(http.StatusCreated, topicSummary{Name: ts.Name, Pages: pages, Chunks: chunks})
}

func (h *Handler) tooLarge(c *gin.Context) {
	RespondError(c, http.StatusRequestEntityTooLarge, "too_large",
		fmt.Errorf("upload exceeds %d MB", h.maxUpload>>20))
}

func (h *Handler) SelectTopic(c *gin.Context) {
	ts, err := h.store.Select(c.Param("topic"))
	if err != nil {
		respondErr(c, err)
		return
	}
	h.setCurrentTopic(c, ts.Name)
	RespondOK(c, gin.H{"current": ts.Name})
}

func (h *Handler) GetTopic(c *gin.Context) {
	topic := c.Param("topic")
	v, err := h.store.Session(topic)
	if err != nil {
		respondErr(c, err)
		return
	}
	progress, err := h.store.Progress(c.Request.Context(), topic)
	if err != nil {
		respondErr(c, err)
		return
	}
	suggestions, err := h.store.SuggestedPrompts(topic)
	if err != nil {
		respondErr(c, err)
		return
	}

	history := v.History
	if history == nil {
		history = []study.Turn{}
	}
	RespondOK(c, topicView{
		Name:        v.Name,
		Table:       v.Table,
		Pages:       v.Pages,
		Chunks:      v.Chunks,
		History:     history,
		Quiz:        newQuizView(v.Quiz),
		Progress:    progress,
		Suggestions: suggestions,
	})
}

func (h *Handler) DeleteTopic(c *gin.Context) {
	topic := c.Param("topic")
	if err := h.store.Remove(c.Request.Context(), topic); err != nil {
		respondErr(c, err)
		return
	}
	if h.currentTopic(c) == topic {
		h.setCurrentTopic(c, "")
	}
	c.Status(http.StatusNoContent)
}

type messageRequest struct {
	Text string `json:"text"`
}

func (h *Handler) SendMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, apperr.Invalid("body", "%v", err))
		return
	}
	reply, err := h.store.SendMessage(c.Request.Context(), c.Param("topic"), req.Text)
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"reply": reply})
}

type quizRequest struct {
	Subject string `json:"subject"`
	// Count defaults to the configured quiz size when omitted.
	Count *int `json:"count"`
}

func (h *Handler) GenerateQuiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondErr(c, apperr.Invalid("body", "%v", err))
		return
	}
	count := h.defaultCount
	if req.Count != nil {
		count = *req.Count
	}

	st, err := h.store.GenerateQuiz(c.Request.Context(), c.Param("topic"), req.Subject, count)
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"quiz": newQuizView(st)})
}

type answerRequest struct {
	// Option nil clears the answer.
	Option *int `json:"option"`
}

func (h *Handler) SetAnswer(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondErr(c, apperr.Invalid("index", "question index %q is not a number", c.Param("index")))
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, apperr.Invalid("body", "%v", err))
		return
	}

	topic := c.Param("topic")
	if req.Option == nil {
		err = h.store.ClearAnswer(topic, index)
	} else {
		err = h.store.SetAnswer(topic, index, *req.Option)
	}
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SubmitQuiz(c *gin.Context) {
	res, err := h.store.SubmitQuiz(c.Request.Context(), c.Param("topic"))
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"score": res.Score, "total": res.Total, "accuracy": res.Accuracy(), "review": res.Review})
}

func (h *Handler) CancelQuiz(c *gin.Context) {
	if err := h.store.CancelQuiz(c.Param("topic")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReviewQuiz lists the last submitted quiz. The answer key of an active
// quiz is never revealed.
func (h *Handler) ReviewQuiz(c *gin.Context) {
	topic := c.Param("topic")
	v, err := h.store.Session(topic)
	if err != nil {
		respondErr(c, err)
		return
	}
	if v.Quiz.Active {
		respondErr(c, apperr.Invalid("quiz", "submit or cancel the active quiz before reviewing"))
		return
	}
	items, err := h.store.Review(topic)
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"score": v.Quiz.Score, "total": v.Quiz.Total, "review": items})
}

// currentTopic prefers the caller's cookie and falls back to the store's
// current topic.
func (h *Handler) currentTopic(c *gin.Context) string {
	if sess, err := h.cookies.Get(c.Request, cookieName); err == nil {
		if topic, ok := sess.Values[topicKey].(string); ok && topic != "" {
			if _, err := h.store.Lookup(topic); err == nil {
				return topic
			}
		}
	}
	return h.store.Current()
}

func (h *Handler) setCurrentTopic(c *gin.Context, topic string) {
	// A cookie that fails to decode, e.g. after a secret rotation, is
	// replaced.
	sess, _ := h.cookies.Get(c.Request, cookieName)
	sess.Values[topicKey] = topic
	if err := sess.Save(c.Request, c.Writer); err != nil {
		h.log.Warn("failed to save session cookie", "error", err)
	}
}
