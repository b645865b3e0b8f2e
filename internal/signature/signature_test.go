package signature

import (
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonical_SortedAndSkipsSign(t *testing.T) {
	got := Canonical(map[string]string{
		"num":      "2",
		"app_id":   "10001",
		"sign":     "ignored",
		"app_key":  "secret",
		"card_id":  "7",
		"password": "a b&c",
	})
	require.Equal(t, "app_id=10001&app_key=secret&card_id=7&num=2&password=a b&c", got)
}

func TestGenerate_KnownVector(t *testing.T) {
	fields := map[string]string{"app_id": "1", "app_key": "k"}
	sum := md5.Sum([]byte("app_id=1&app_key=k&key=k"))
	require.Equal(t, hex.EncodeToString(sum[:]), Generate(fields, "k"))
}

func TestGenerate_OrderIndependent(t *testing.T) {
	a := map[string]string{}
	b := map[string]string{}
	keys := []string{"z", "a", "m", "shared_code", "app_id"}
	for i, k := range keys {
		a[k] = k + "v"
		b[keys[len(keys)-1-i]] = keys[len(keys)-1-i] + "v"
	}
	require.Equal(t, Generate(a, "s"), Generate(b, "s"))
}

func TestGenerate_KeyMatters(t *testing.T) {
	f := map[string]string{"app_id": "1"}
	require.NotEqual(t, Generate(f, "k1"), Generate(f, "k2"))
}

func TestVerify(t *testing.T) {
	f := map[string]string{"app_id": "1", "app_key": "k", "num": "3"}
	f["sign"] = Generate(f, "k")
	require.True(t, Verify(f, "k"))

	f["num"] = "4"
	require.False(t, Verify(f, "k"))
}
