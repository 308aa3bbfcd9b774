package study

import (
	"context"
	"strings"

	"github.com/abhisek/studyscout/internal/apperr"
	"github.com/abhisek/studyscout/internal/assistant"
	"github.com/abhisek/studyscout/internal/store"
)

// SendMessage records text as a user turn and asks the topic's chat
// assistant for a reply. On failure the user turn stays in the history, no
// assistant turn is added, and a *apperr.GenerationError is returned.
func (s *Store) SendMessage(ctx context.Context, topic, text string) (assistant.ChatReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return assistant.ChatReply{}, apperr.Invalid("text", "message is empty")
	}
	ts, err := s.Lookup(topic)
	if err != nil {
		return assistant.ChatReply{}, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.History = append(ts.History, Turn{Role: RoleUser, Content: text, At: s.opts.Now()})

	reply, err := ts.Chat.Respond(ctx, text)
	if err != nil {
		if !apperr.IsGeneration(err) {
			err = apperr.Generation("chat", err)
		}
		s.log.Warn("chat failed", "topic", topic, "error", err)
		s.recordChat(ctx, store.ChatEventData{Topic: topic, Question: text, ErrorMessage: err.Error()})
		return assistant.ChatReply{}, err
	}

	ts.History = append(ts.History, Turn{
		Role:       RoleAssistant,
		Content:    reply.Text,
		References: reply.References,
		Sources:    reply.Sources,
		At:         s.opts.Now(),
	})
	s.recordChat(ctx, store.ChatEventData{Topic: topic, Question: text, Answer: reply.Text, Success: true})
	return reply, nil
}

func (s *Store) recordChat(ctx context.Context, data store.ChatEventData) {
	if s.opts.Events == nil {
		return
	}
	if err := s.opts.Events.AppendChatEvent(context.WithoutCancel(ctx), data); err != nil {
		s.log.Warn("failed to record chat event", "topic", data.Topic, "error", err)
	}
}
