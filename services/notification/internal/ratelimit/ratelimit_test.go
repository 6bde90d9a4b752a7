package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_AllowsUpToLimit(t *testing.T) {
	l := NewMemoryLimiter(3)

	for i := 0; i < 3; i++ {
		allowed, err := l.Allow(context.Background())
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := l.Allow(context.Background())
	require.NoError(t, err)
	assert.False(t, allowed, "request over the limit should be rejected")
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 30, 0, time.UTC)
	l := NewMemoryLimiter(1)
	l.now = func() time.Time { return now }

	allowed, err := l.Allow(context.Background())
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = l.Allow(context.Background())
	require.NoError(t, err)
	assert.False(t, allowed)

	// Следующая календарная минута - новое окно
	now = now.Add(time.Minute)

	allowed, err = l.Allow(context.Background())
	require.NoError(t, err)
	assert.True(t, allowed)
}
