package server

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/abhisek/studyscout/internal/logger"
	"github.com/abhisek/studyscout/internal/study"
)

// RouterConfig wires the HTTP API.
type RouterConfig struct {
	Store *study.Store
	Log   *logger.Logger

	// MaxUploadBytes caps multipart uploads.
	MaxUploadBytes int64
	// DefaultQuizCount is used when a quiz request omits count.
	DefaultQuizCount int
	// SessionSecret signs the topic cookie. Empty generates a per-process
	// secret, so cookies do not survive a restart.
	SessionSecret  string
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	secret := cfg.SessionSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
	}
	cookies := sessions.NewCookieStore([]byte(secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	}

	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 50 << 20
	}
	count := cfg.DefaultQuizCount
	if count <= 0 {
		count = 5
	}

	h := &Handler{
		store:        cfg.Store,
		cookies:      cookies,
		maxUpload:    maxUpload,
		defaultCount: count,
		log:          log,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(CORS(cfg.AllowedOrigins))
	}

	r.GET("/healthcheck", h.HealthCheck)

	api := r.Group("/api")
	{
		api.GET("/topics", h.ListTopics)
		api.POST("/topics", h.CreateTopic)

		topic := api.Group("/topics/:topic")
		topic.GET("", h.GetTopic)
		topic.DELETE("", h.DeleteTopic)
		topic.POST("/select", h.SelectTopic)
		topic.POST("/messages", h.SendMessage)

		topic.POST("/quiz", h.GenerateQuiz)
		topic.PUT("/quiz/answers/:index", h.SetAnswer)
		topic.POST("/quiz/submit", h.SubmitQuiz)
		topic.POST("/quiz/cancel", h.CancelQuiz)
		topic.GET("/quiz/review", h.ReviewQuiz)
	}

	return r
}
