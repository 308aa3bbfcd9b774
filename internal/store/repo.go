package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	After   int64  // sequence > After
	Topic   string // quiz/chat events only; empty = all topics
	Purpose string // LLM events only; empty = all purposes
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// QuizEventData records one submitted quiz.
type QuizEventData struct {
	Topic   string
	Subject string
	Score   int
	Total   int
	// Review is the JSON-encoded per-question review.
	Review string
}

// QuizEvent is a stored quiz result.
type QuizEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	QuizEventData
}

// ChatEventData records one chat exchange, successful or not.
type ChatEventData struct {
	Topic        string
	Question     string
	Answer       string
	Success      bool
	ErrorMessage string
}

// ChatEvent is a stored chat exchange.
type ChatEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	ChatEventData
}

// EventRepo provides append and query access to the event log.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)
	// GetLLMEvent returns nil, nil when no event has the id.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	AppendQuizEvent(ctx context.Context, data QuizEventData) error
	QueryQuizEvents(ctx context.Context, opts QueryOpts) ([]QuizEvent, error)

	AppendChatEvent(ctx context.Context, data ChatEventData) error
	QueryChatEvents(ctx context.Context, opts QueryOpts) ([]ChatEvent, error)
}
