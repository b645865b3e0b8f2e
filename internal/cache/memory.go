package cache

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient implementa Client sobre go-cache. El janitor de go-cache
// limpia las entradas expiradas cada minuto.
type memoryClient struct {
	prefix string
	c      *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemory crea un cliente de cache en memoria.
func NewMemory(prefix string, defaultTTL time.Duration) *memoryClient {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &memoryClient{
		prefix: prefix,
		c:      gocache.New(defaultTTL, time.Minute),
	}
}

func (m *memoryClient) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.c.Get(prefixed(m.prefix, key))
	if !ok {
		m.misses.Add(1)
		return "", ErrNotFound
	}
	m.hits.Add(1)
	s, _ := v.(string)
	return s, nil
}

func (m *memoryClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	switch {
	case ttl == 0:
		ttl = gocache.NoExpiration
	case ttl < 0:
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(prefixed(m.prefix, key), value, ttl)
	return nil
}

func (m *memoryClient) Delete(ctx context.Context, key string) error {
	m.c.Delete(prefixed(m.prefix, key))
	return nil
}

func (m *memoryClient) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.c.Get(prefixed(m.prefix, key))
	return ok, nil
}

func (m *memoryClient) Ping(ctx context.Context) error { return nil }

func (m *memoryClient) Close() error {
	m.c.Flush()
	return nil
}

func (m *memoryClient) Stats(ctx context.Context) (Stats, error) {
	return Stats{
		Driver: "memory",
		Keys:   int64(m.c.ItemCount()),
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
	}, nil
}
