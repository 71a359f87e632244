package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

func TestNew_Defaults(t *testing.T) {
	l := New(domain.AIProviderAnthropic)
	require.NotNil(t, l)
	assert.NoError(t, l.Wait(context.Background()))

	unlimited := New(domain.AIProviderOllama)
	for i := 0; i < 100; i++ {
		require.NoError(t, unlimited.Wait(context.Background()))
	}
}

func TestLimiter_NilIsNoOp(t *testing.T) {
	var l *Limiter
	assert.NoError(t, l.Wait(context.Background()))
	l.Backoff(time.Second)
}

func TestLimiter_Backoff(t *testing.T) {
	l := NewWithConfig(Config{RequestsPerSecond: 100, BurstSize: 10})

	l.Backoff(time.Hour)
	assert.WithinDuration(t, time.Now().Add(time.Hour), l.RetryAt(), time.Minute)

	l.Backoff(time.Second)
	assert.WithinDuration(t, time.Now().Add(time.Hour), l.RetryAt(), time.Minute, "shorter backoff must not shrink the window")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}

func TestLimiter_DefaultBackoff(t *testing.T) {
	l := NewWithConfig(Config{RequestsPerSecond: 1})
	l.Backoff(0)
	assert.WithinDuration(t, time.Now().Add(defaultBackoff), l.RetryAt(), time.Second)
}
