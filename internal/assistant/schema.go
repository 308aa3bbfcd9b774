package assistant

import (
	"github.com/abhisek/studyscout/internal/llm"
	"github.com/abhisek/studyscout/internal/quiz"
)

// QuizSchema is the structured output requested for quiz generation.
// Question count and option count are checked by the quiz validators, not
// the schema, so the same schema serves every count.
var QuizSchema = &llm.Schema{
	Name:        "study-quiz",
	Description: "A multiple-choice quiz about a study document",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"quiz": map[string]any{
				"type":        "array",
				"description": "Questions of the quiz",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question text",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 answer options",
						},
						"correct": map[string]any{
							"type":        "integer",
							"minimum":     0,
							"description": "Zero-based index of the correct option",
						},
					},
					"required":             []any{"question", "options", "correct"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"quiz"},
		"additionalProperties": false,
	},
}

// QuizResult is the decoded quiz generation output.
type QuizResult struct {
	Questions []quiz.Question `json:"quiz"`
}
