// Package settings es el colaborador de configuración de la tienda:
// Get(name) devuelve el valor crudo (normalmente un string JSON), por ejemplo
// "email_config" o "shop_name".
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dropDatabas3/mallkit/internal/secretbox"
)

// Keys conocidas.
const (
	KeyEmailConfig = "email_config"
	KeyShopName    = "shop_name"
)

// ErrNotFound se retorna cuando el setting no existe.
var ErrNotFound = errors.New("settings: not found")

// Source resuelve settings por nombre.
type Source interface {
	Get(ctx context.Context, name string) (string, error)
}

// Static es un Source en memoria (YAML o tests).
type Static struct {
	mu   sync.RWMutex
	vals map[string]string
}

// NewStatic copia vals en un Source estático.
func NewStatic(vals map[string]string) *Static {
	s := &Static{vals: make(map[string]string, len(vals))}
	for k, v := range vals {
		s.vals[k] = v
	}
	return s
}

func (s *Static) Get(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vals[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return v, nil
}

// Put reemplaza un valor.
func (s *Static) Put(name, value string) {
	s.mu.Lock()
	s.vals[name] = value
	s.mu.Unlock()
}

// Unsealed abre con box los valores "sealed:" que devuelva inner.
func Unsealed(inner Source, box *secretbox.Box) Source {
	return unsealed{inner: inner, box: box}
}

type unsealed struct {
	inner Source
	box   *secretbox.Box
}

func (u unsealed) Get(ctx context.Context, name string) (string, error) {
	v, err := u.inner.Get(ctx, name)
	if err != nil {
		return "", err
	}
	out, err := u.box.Open(v)
	if err != nil {
		return "", fmt.Errorf("settings: %s: %w", name, err)
	}
	return out, nil
}
