package llm

// quizSchemaForTest mirrors the shape the quiz assistant requests.
func quizSchemaForTest() *Schema {
	return &Schema{
		Name:        "test-quiz",
		Description: "A multiple-choice quiz",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"quiz": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"question": map[string]any{"type": "string"},
							"options":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
							"correct":  map[string]any{"type": "integer", "minimum": 0},
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
}

const validQuizJSON = `{"quiz":[{"question":"What does PCA maximize?","options":["Bias","Variance","Entropy","Loss"],"correct":1}]}`
