package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswers(t *testing.T) {
	got, err := parseAnswers("a, C,,d", 5)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, -1, 3}, got)
}

func TestParseAnswers_Errors(t *testing.T) {
	_, err := parseAnswers("a,b,c", 2)
	assert.Error(t, err)

	_, err = parseAnswers("e", 1)
	assert.Error(t, err)

	_, err = parseAnswers("ab", 1)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "ab", truncate("ab", 3))
}
