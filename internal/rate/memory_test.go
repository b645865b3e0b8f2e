package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_BurstThenDeny(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, res.Allowed, "hit %d", i)
	}
	res, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Greater(t, res.RetryAfter, time.Duration(0))
	require.LessOrEqual(t, res.RetryAfter, 20*time.Second)

	// otra key tiene su propio bucket
	res, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	require.True(t, res.Allowed)
}

func TestMemoryLimiter_Refills(t *testing.T) {
	l := NewMemoryLimiter(2, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, _ := l.Allow(ctx, "k")
		require.True(t, res.Allowed)
	}
	res, _ := l.Allow(ctx, "k")
	require.False(t, res.Allowed)

	now = now.Add(30 * time.Second)
	res, _ = l.Allow(ctx, "k")
	require.True(t, res.Allowed)
}

func TestMemoryLimiter_SweepsIdleKeys(t *testing.T) {
	l := NewMemoryLimiter(5, time.Second)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a")
	_, _ = l.Allow(ctx, "b")
	require.Equal(t, 2, l.Len())

	now = now.Add(10 * time.Second)
	_, _ = l.Allow(ctx, "c")
	require.Equal(t, 1, l.Len())
}
