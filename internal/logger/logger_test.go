package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"topic", "pca", "openai_api_key", "sk-123", "pg_dsn", "postgres://u:p@h/db"})
	assert.Equal(t, []interface{}{"topic", "pca", "openai_api_key", "[REDACTED]", "pg_dsn", "[REDACTED]"}, out)
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"topic", "pca", "dangling"})
	assert.Equal(t, []interface{}{"topic", "pca", "dangling"}, out)
}

func TestLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("topic", "pca").Info("quiz submitted", "score", 3, "token", "abc")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "quiz submitted", entries[0].Message)
		assert.Equal(t, "pca", fields["topic"])
		assert.EqualValues(t, 3, fields["score"])
		assert.Equal(t, "[REDACTED]", fields["token"])
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod"} {
		l, err := New(mode)
		if assert.NoError(t, err, mode) {
			assert.NotNil(t, l.SugaredLogger)
		}
	}
	Nop().Info("discarded")
}
