package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/studyscout/internal/apperr"
	"github.com/abhisek/studyscout/internal/llm"
	"github.com/abhisek/studyscout/internal/quiz"
)

// Quizzer generates quizzes from one document.
type Quizzer struct {
	kb       Knowledge
	provider llm.Provider
	cfg      Config
}

var _ quiz.Generator = (*Quizzer)(nil)

func NewQuizzer(kb Knowledge, provider llm.Provider, cfg Config) *Quizzer {
	return &Quizzer{kb: kb, provider: provider, cfg: cfg.withDefaults()}
}

// GenerateQuiz asks for count questions about subject. The questions are
// returned as the model produced them; failures are *apperr.GenerationError.
func (q *Quizzer) GenerateQuiz(ctx context.Context, subject string, count int) ([]quiz.Question, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, apperr.Generation("generate quiz", fmt.Errorf("subject is empty"))
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeQuiz)

	matches, err := q.kb.Search(ctx, subject, q.cfg.TopK)
	if err != nil {
		return nil, apperr.Generation("search knowledge", err)
	}

	resp, err := q.provider.Generate(ctx, llm.Request{
		System:      quizSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: quizUserMessage(subject, count, matches)}},
		Schema:      QuizSchema,
		MaxTokens:   q.cfg.QuizMaxTokens,
		Temperature: q.cfg.Temperature,
	})
	if err != nil {
		return nil, apperr.Generation("generate quiz", err)
	}

	var result QuizResult
	if err := json.Unmarshal(resp.Content, &result); err != nil {
		return nil, apperr.Generation("generate quiz", fmt.Errorf("parse quiz: %w", err))
	}
	return result.Questions, nil
}
