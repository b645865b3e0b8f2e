// Package session implementa el store keyed que respalda los códigos de
// verificación. Es un adaptador fino sobre cache.Client: el backend aporta
// su propio TTL y las capas superiores aplican su semántica encima.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/mallkit/internal/cache"
)

// ErrNotFound se retorna cuando no hay registro para la key.
var ErrNotFound = errors.New("session: key not found")

// Record es el valor guardado por key.
type Record struct {
	Time int64 `json:"time"` // unix seconds de emisión
	Code int   `json:"code"`
}

// IssuedAt convierte Time a time.Time.
func (r Record) IssuedAt() time.Time { return time.Unix(r.Time, 0) }

// Store es el colaborador de sesión.
type Store interface {
	Has(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (Record, error)
	Set(ctx context.Context, key string, rec Record) error
	Remove(ctx context.Context, key string) error
}

type cacheStore struct {
	c   cache.Client
	ttl time.Duration
}

// NewCacheStore crea un Store sobre cache.Client. ttl <= 0 usa 10 minutos.
func NewCacheStore(c cache.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &cacheStore{c: c, ttl: ttl}
}

func (s *cacheStore) Has(ctx context.Context, key string) (bool, error) {
	return s.c.Exists(ctx, key)
}

func (s *cacheStore) Get(ctx context.Context, key string) (Record, error) {
	raw, err := s.c.Get(ctx, key)
	if err != nil {
		if cache.IsNotFound(err) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, fmt.Errorf("session: decode %s: %w", key, err)
	}
	return rec, nil
}

func (s *cacheStore) Set(ctx context.Context, key string, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.c.Set(ctx, key, string(b), s.ttl)
}

func (s *cacheStore) Remove(ctx context.Context, key string) error {
	return s.c.Delete(ctx, key)
}
