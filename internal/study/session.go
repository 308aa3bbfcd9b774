// Package study holds the topic session store: one session per uploaded
// document, each with its knowledge handle, assistants, chat transcript and
// quiz state.
package study

import (
	"sync"
	"time"

	"github.com/abhisek/studyscout/internal/assistant"
	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/llm"
	"github.com/abhisek/studyscout/internal/quiz"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a chat transcript.
type Turn struct {
	Role       Role                  `json:"role"`
	Content    string                `json:"content"`
	References []assistant.Reference `json:"references,omitempty"`
	Sources    []llm.WebSource       `json:"sources,omitempty"`
	At         time.Time             `json:"at"`
}

// TopicSession is the state of one topic. Name, Table, Knowledge, QA and
// Chat are fixed at creation. History and Quiz are guarded by mu.
type TopicSession struct {
	Name      string
	Table     string
	Knowledge *knowledge.Handle
	QA        quiz.Generator
	Chat      assistant.Responder
	CreatedAt time.Time

	mu      sync.Mutex
	History []Turn
	Quiz    *quiz.State
}

// View is a point-in-time copy of a session, safe to read without locks.
type View struct {
	Name      string     `json:"name"`
	Table     string     `json:"table"`
	Pages     int        `json:"pages"`
	Chunks    int        `json:"chunks"`
	History   []Turn     `json:"history"`
	Quiz      quiz.State `json:"quiz"`
	CreatedAt time.Time  `json:"created_at"`
}

// view must be called with mu held.
func (ts *TopicSession) view() View {
	v := View{
		Name:      ts.Name,
		Table:     ts.Table,
		History:   append([]Turn(nil), ts.History...),
		Quiz:      ts.Quiz.Snapshot(),
		CreatedAt: ts.CreatedAt,
	}
	if ts.Knowledge != nil {
		v.Pages = ts.Knowledge.Pages
		v.Chunks = ts.Knowledge.Chunks
	}
	return v
}
