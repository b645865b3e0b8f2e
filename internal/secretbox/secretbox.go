// Package secretbox sella secretos guardados en config o base de datos
// (app_key de shared stores, password SMTP) con XChaCha20-Poly1305.
//
// Formato: "sealed:" + base64(nonce || ciphertext).
package secretbox

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Prefix marca un valor sellado.
const Prefix = "sealed:"

var (
	ErrNoKey     = errors.New("secretbox: master key not configured")
	ErrMalformed = errors.New("secretbox: malformed sealed value")
)

// Box sella y abre valores con una clave de 32 bytes.
// Un Box sin clave deja pasar los valores planos y falla con los sellados.
type Box struct {
	key []byte
}

// New crea un Box. key acepta base64 (std o raw), hex (64 chars) o 32 bytes crudos.
// Una key vacía produce un Box sin clave.
func New(key string) (*Box, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return &Box{}, nil
	}
	kb, err := parseKey(key)
	if err != nil {
		return nil, err
	}
	return &Box{key: kb}, nil
}

func parseKey(key string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(key); err == nil && len(b) == chacha20poly1305.KeySize {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(key); err == nil && len(b) == chacha20poly1305.KeySize {
		return b, nil
	}
	if len(key) == 64 {
		if b, err := hex.DecodeString(key); err == nil {
			return b, nil
		}
	}
	if len(key) == chacha20poly1305.KeySize {
		return []byte(key), nil
	}
	return nil, fmt.Errorf("secretbox: clave inválida: se requieren %d bytes", chacha20poly1305.KeySize)
}

// IsSealed indica si v tiene el prefijo de valor sellado.
func IsSealed(v string) bool { return strings.HasPrefix(v, Prefix) }

// Seal cifra plain y retorna el valor con prefijo.
func (b *Box) Seal(plain string) (string, error) {
	if len(b.key) == 0 {
		return "", ErrNoKey
	}
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("secretbox: nonce: %w", err)
	}
	out := aead.Seal(nonce, nonce, []byte(plain), nil)
	return Prefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open retorna v tal cual si no está sellado; si lo está, lo descifra.
func (b *Box) Open(v string) (string, error) {
	if !IsSealed(v) {
		return v, nil
	}
	if b == nil || len(b.key) == 0 {
		return "", ErrNoKey
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(v, Prefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrMalformed
	}
	nonce, ct := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("secretbox: open: %w", err)
	}
	return string(pt), nil
}
