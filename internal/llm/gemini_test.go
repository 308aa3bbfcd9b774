package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestBuildGeminiSchema_Quiz(t *testing.T) {
	schema := buildGeminiSchema(quizSchemaForTest().Definition)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"quiz"}, schema.Required)

	quiz := schema.Properties["quiz"]
	require.NotNil(t, quiz)
	assert.Equal(t, genai.TypeArray, quiz.Type)

	item := quiz.Items
	require.NotNil(t, item)
	assert.Equal(t, genai.TypeString, item.Properties["question"].Type)
	assert.Equal(t, genai.TypeArray, item.Properties["options"].Type)
	assert.Equal(t, genai.TypeString, item.Properties["options"].Items.Type)
	assert.Equal(t, genai.TypeInteger, item.Properties["correct"].Type)
	assert.ElementsMatch(t, []string{"question", "options", "correct"}, item.Required)
}

func TestBuildGeminiSchema_ArrayBoundsAndEnum(t *testing.T) {
	schema := buildGeminiSchema(map[string]any{
		"type":     "array",
		"minItems": float64(4),
		"maxItems": 4,
		"items":    map[string]any{"type": "string", "enum": []any{"a", "b"}},
	})

	require.NotNil(t, schema.MinItems)
	require.NotNil(t, schema.MaxItems)
	assert.EqualValues(t, 4, *schema.MinItems)
	assert.EqualValues(t, 4, *schema.MaxItems)
	assert.Equal(t, []string{"a", "b"}, schema.Items.Enum)
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(t.Context(), GeminiConfig{Model: "gemini-flash"})
	assert.Error(t, err)
}
