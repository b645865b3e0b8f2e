package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("t", 0)

	_, err := c.Get(ctx, "k")
	require.True(t, IsNotFound(err))

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.Delete(ctx, "k"))
	ok, _ = c.Exists(ctx, "k")
	require.False(t, ok)

	// borrar algo inexistente no es error
	require.NoError(t, c.Delete(ctx, "missing"))

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, "memory", st.Driver)
	require.EqualValues(t, 1, st.Hits)
	require.EqualValues(t, 1, st.Misses)
}

func TestMemory_TTLExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("", 0)

	require.NoError(t, c.Set(ctx, "short", "x", 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNew_DefaultsToMemory(t *testing.T) {
	c, err := New(context.Background(), Config{Driver: ""})
	require.NoError(t, err)
	st, _ := c.Stats(context.Background())
	require.Equal(t, "memory", st.Driver)
}
