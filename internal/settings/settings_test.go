package settings

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/mallkit/internal/secretbox"
)

func TestStatic_GetAndPut(t *testing.T) {
	s := NewStatic(map[string]string{KeyShopName: `"Acme"`})

	v, err := s.Get(context.Background(), KeyShopName)
	require.NoError(t, err)
	require.Equal(t, `"Acme"`, v)

	_, err = s.Get(context.Background(), KeyEmailConfig)
	require.ErrorIs(t, err, ErrNotFound)

	s.Put(KeyEmailConfig, `{"smtp":"smtp.example.com"}`)
	v, err = s.Get(context.Background(), KeyEmailConfig)
	require.NoError(t, err)
	require.Contains(t, v, "smtp.example.com")
}

func TestUnsealed_OpensSealedValues(t *testing.T) {
	box, err := secretbox.New(base64.StdEncoding.EncodeToString(make([]byte, 32)))
	require.NoError(t, err)
	sealed, err := box.Seal(`{"password":"p"}`)
	require.NoError(t, err)

	src := Unsealed(NewStatic(map[string]string{
		KeyEmailConfig: sealed,
		KeyShopName:    "plain",
	}), box)

	v, err := src.Get(context.Background(), KeyEmailConfig)
	require.NoError(t, err)
	require.Equal(t, `{"password":"p"}`, v)

	v, err = src.Get(context.Background(), KeyShopName)
	require.NoError(t, err)
	require.Equal(t, "plain", v)
}
