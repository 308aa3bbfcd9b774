package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeout_SurfacesProviderUnavailable(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: []byte("late"), Delay: time.Second})
	p := WithTimeout(mock, 10*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	var u *ErrProviderUnavailable
	require.True(t, errors.As(err, &u), "got %T", err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestWithTimeout_CallerCancellationPassesThrough(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: []byte("late"), Delay: time.Second})
	p := WithTimeout(mock, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestWithTimeout_FastCallUnaffected(t *testing.T) {
	mock := NewMockProvider(TextResponse("quick"))
	resp, err := WithTimeout(mock, time.Second).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "quick", resp.Text())
}

func TestWithTimeout_ZeroDisables(t *testing.T) {
	mock := NewMockProvider()
	assert.Same(t, Provider(mock), WithTimeout(mock, 0))
}
