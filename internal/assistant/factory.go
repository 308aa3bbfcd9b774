package assistant

import (
	"errors"

	"github.com/google/uuid"

	"github.com/abhisek/studyscout/internal/llm"
	"github.com/abhisek/studyscout/internal/logger"
	"github.com/abhisek/studyscout/internal/quiz"
)

// Factory builds the chat and quiz assistants for a topic.
type Factory struct {
	provider llm.Provider
	search   llm.WebSearcher
	memory   Memory
	cfg      Config
	log      *logger.Logger
}

func NewFactory(provider llm.Provider, memory Memory, cfg Config, log *logger.Logger) *Factory {
	if memory == nil {
		memory = NewInMemory(0)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Factory{provider: provider, memory: memory, cfg: cfg, log: log}
}

// WithSearch gives every chat built afterwards web search for resources.
// A nil searcher leaves chats without it.
func (f *Factory) WithSearch(search llm.WebSearcher) *Factory {
	f.search = search
	return f
}

// NewAssistants binds a Chat and a Quizzer to kb. Each call starts a fresh
// conversation.
func (f *Factory) NewAssistants(topic string, kb Knowledge) (Responder, quiz.Generator, error) {
	if f.provider == nil {
		return nil, nil, errors.New("no llm provider configured")
	}
	if kb == nil {
		return nil, nil, errors.New("no knowledge bound")
	}
	conversation := topic + ":" + uuid.NewString()
	chat := NewChat(topic, conversation, kb, f.provider, f.memory, f.cfg, f.log.With("topic", topic)).
		WithSearch(f.search)
	return chat, NewQuizzer(kb, f.provider, f.cfg), nil
}
