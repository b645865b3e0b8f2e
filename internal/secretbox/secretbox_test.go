package secretbox

import (
	"encoding/base64"
	"strings"
	"testing"
)

func testKey() string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	t.Parallel()
	b, err := New(testKey())
	if err != nil {
		t.Fatalf("New err: %v", err)
	}

	msg := "app-key ✓ secreto"
	sealed, err := b.Seal(msg)
	if err != nil {
		t.Fatalf("Seal err: %v", err)
	}
	if !IsSealed(sealed) {
		t.Fatalf("missing prefix: %q", sealed)
	}
	pt, err := b.Open(sealed)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	if pt != msg {
		t.Fatalf("plaintext mismatch: got %q want %q", pt, msg)
	}
}

func TestOpen_PlainPassThrough(t *testing.T) {
	t.Parallel()
	b, _ := New("")
	v, err := b.Open("plain-value")
	if err != nil || v != "plain-value" {
		t.Fatalf("expected pass-through, got %q %v", v, err)
	}
	if _, err := b.Open(Prefix + "AAAA"); err != ErrNoKey {
		t.Fatalf("expected ErrNoKey, got %v", err)
	}
}

func TestOpen_DetectsTamper(t *testing.T) {
	t.Parallel()
	b, _ := New(testKey())
	sealed, err := b.Seal("top secret")
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, Prefix))
	raw[len(raw)-1] ^= 0xFF
	tampered := Prefix + base64.StdEncoding.EncodeToString(raw)

	if _, err := b.Open(tampered); err == nil {
		t.Fatalf("expected error on tampered value")
	}
}

func TestNew_RejectsShortKey(t *testing.T) {
	t.Parallel()
	if _, err := New("too-short"); err == nil {
		t.Fatalf("expected error for short key")
	}
}
