package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/mallkit/internal/cache"
)

func TestCacheStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory("sess", 0)
	s := NewCacheStore(c, 0)

	has, err := s.Has(ctx, "captcha:register:a@b.c")
	require.NoError(t, err)
	require.False(t, has)

	_, err = s.Get(ctx, "captcha:register:a@b.c")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "captcha:register:a@b.c", Record{Time: 1700000000, Code: 123456}))
	rec, err := s.Get(ctx, "captcha:register:a@b.c")
	require.NoError(t, err)
	require.Equal(t, 123456, rec.Code)
	require.EqualValues(t, 1700000000, rec.IssuedAt().Unix())

	// el valor persistido mantiene el formato {time, code}
	raw, err := c.Get(ctx, "captcha:register:a@b.c")
	require.NoError(t, err)
	require.JSONEq(t, `{"time":1700000000,"code":123456}`, raw)

	require.NoError(t, s.Remove(ctx, "captcha:register:a@b.c"))
	has, _ = s.Has(ctx, "captcha:register:a@b.c")
	require.False(t, has)
}

func TestCacheStore_CorruptValue(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory("", 0)
	require.NoError(t, c.Set(ctx, "k", "not-json", 0))

	_, err := NewCacheStore(c, 0).Get(ctx, "k")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
