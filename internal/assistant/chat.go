package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/studyscout/internal/apperr"
	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/llm"
	"github.com/abhisek/studyscout/internal/logger"
)

// Knowledge is the retrieval capability the assistant needs from a
// loaded document.
type Knowledge interface {
	Search(ctx context.Context, query string, k int) ([]knowledge.Match, error)
}

// Reference is a document excerpt a reply was grounded on.
type Reference struct {
	Page    int     `json:"page"`
	Excerpt string  `json:"excerpt"`
	Score   float32 `json:"score"`
}

// ChatReply is the outcome of a chat message. Sources are the web pages
// found when the learner asked for resources.
type ChatReply struct {
	Text       string          `json:"text"`
	References []Reference     `json:"references,omitempty"`
	Sources    []llm.WebSource `json:"sources,omitempty"`
}

// Responder answers chat messages about one topic.
type Responder interface {
	Respond(ctx context.Context, message string) (ChatReply, error)
}

// Chat answers questions about one document, replaying a short window of
// the conversation with each request.
type Chat struct {
	topic        string
	conversation string
	kb           Knowledge
	provider     llm.Provider
	search       llm.WebSearcher
	memory       Memory
	cfg          Config
	log          *logger.Logger
}

var _ Responder = (*Chat)(nil)

func NewChat(topic, conversation string, kb Knowledge, provider llm.Provider, memory Memory, cfg Config, log *logger.Logger) *Chat {
	if memory == nil {
		memory = NewInMemory(0)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Chat{
		topic:        topic,
		conversation: conversation,
		kb:           kb,
		provider:     provider,
		memory:       memory,
		cfg:          cfg.withDefaults(),
		log:          log,
	}
}

// WithSearch lets the chat look up learning resources on the web.
func (c *Chat) WithSearch(search llm.WebSearcher) *Chat {
	c.search = search
	return c
}

// Respond sends message with retrieved references and recent history. The
// exchange is remembered only when the model replies. Every failure is an
// *apperr.GenerationError.
func (c *Chat) Respond(ctx context.Context, message string) (ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ChatReply{}, apperr.Generation("chat", errors.New("message is empty"))
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeChat)

	matches, err := c.kb.Search(ctx, message, c.cfg.TopK)
	if err != nil {
		return ChatReply{}, apperr.Generation("search knowledge", err)
	}

	history, err := c.memory.Recent(ctx, c.conversation, c.cfg.HistoryTurns*2)
	if err != nil {
		// Answering without history beats failing the turn.
		c.log.Warn("failed to load chat history", "conversation", c.conversation, "error", err)
		history = nil
	}

	web := c.searchWeb(ctx, message)

	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: chatUserMessage(message, matches, web)})

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      chatSystemPrompt(c.cfg, c.topic),
		Messages:    msgs,
		MaxTokens:   c.cfg.ChatMaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return ChatReply{}, apperr.Generation("chat", err)
	}

	text := resp.Text()
	if text == "" {
		return ChatReply{}, apperr.Generation("chat", errors.New("model returned an empty reply"))
	}

	if err := c.memory.Append(ctx, c.conversation,
		llm.Message{Role: llm.RoleUser, Content: message},
		llm.Message{Role: llm.RoleAssistant, Content: text},
	); err != nil {
		c.log.Warn("failed to store chat exchange", "conversation", c.conversation, "error", err)
	}

	reply := ChatReply{Text: text, References: references(matches)}
	if web != nil {
		reply.Sources = web.Sources
	}
	return reply, nil
}

// searchWeb looks up resources when the message asks for them. Search
// failures only cost the links.
func (c *Chat) searchWeb(ctx context.Context, message string) *llm.SearchResult {
	if c.search == nil || !wantsResources(message) {
		return nil
	}
	query := message
	if c.topic != "" {
		query = fmt.Sprintf("%s (topic: %s)", message, c.topic)
	}
	result, err := c.search.Search(ctx, query)
	if err != nil {
		c.log.Warn("web search failed", "conversation", c.conversation, "error", err)
		return nil
	}
	return result
}

var resourceWords = []string{
	"resource", "tutorial", "video", "youtube", "course", "article",
	"link", "reading", "book", "paper", "documentation", "docs", "website",
}

// wantsResources reports whether message asks for material to study from.
func wantsResources(message string) bool {
	lower := strings.ToLower(message)
	for _, w := range resourceWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Forget clears the remembered conversation.
func (c *Chat) Forget(ctx context.Context) error {
	return c.memory.Clear(ctx, c.conversation)
}

func references(matches []knowledge.Match) []Reference {
	if len(matches) == 0 {
		return nil
	}
	out := make([]Reference, len(matches))
	for i, m := range matches {
		out[i] = Reference{Page: m.Page, Excerpt: excerpt(m.Text, 160), Score: m.Score}
	}
	return out
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
