package knowledge

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIntoChunks(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		size      int
		overlap   int
		wantCount int
	}{
		{"empty", "   ", 1000, 200, 0},
		{"shorter than one chunk", "hello world", 1000, 200, 1},
		{"exact multiple without overlap", strings.Repeat("a", 600), 200, 0, 3},
		{"overlap", strings.Repeat("a", 500), 200, 100, 4},
		{"size raised to minimum", strings.Repeat("a", 400), 10, 0, 2},
		{"overlap not smaller than size", strings.Repeat("a", 400), 200, 300, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitIntoChunks(tt.text, tt.size, tt.overlap)
			assert.Len(t, got, tt.wantCount)
		})
	}
}

func TestSplitIntoChunks_KeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("日本語", 150)
	for _, c := range SplitIntoChunks(text, 200, 50) {
		assert.True(t, utf8.ValidString(c))
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 200)
	}
}

func TestChunkPages(t *testing.T) {
	pages := []Page{
		{Number: 1, Text: strings.Repeat("x", 250)},
		{Number: 2, Text: ""},
		{Number: 3, Text: "short"},
	}
	chunks := chunkPages(pages, 200, 0)
	require.Len(t, chunks, 3)

	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 1, chunks[1].Page)
	assert.Equal(t, 3, chunks[2].Page)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}
