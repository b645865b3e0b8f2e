// Package cache provee un cliente key/value con soporte multi-backend.
//
// Soporta:
//   - Memory (go-cache in-process, para desarrollo/testing)
//   - Redis (distribuido, para producción)
//
// Lo consumen session.Store (códigos de verificación) y shared.Cached.
package cache

import (
	"context"
	"errors"
	"time"
)

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor. Si ttl es 0, no expira.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete elimina una key (no-op si no existe).
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	Ping(ctx context.Context) error

	Close() error

	Stats(ctx context.Context) (Stats, error)
}

// Stats contiene estadísticas del cache.
type Stats struct {
	Driver string
	Keys   int64
	Hits   int64
	Misses int64
}

// Config configuración para crear un cliente de cache.
type Config struct {
	Driver   string // "memory" | "redis"
	Addr     string
	Password string
	DB       int
	Prefix   string
	// DefaultTTL solo aplica a memory cuando Set recibe ttl < 0.
	DefaultTTL time.Duration
}

// ErrNotFound se retorna cuando la key no existe o expiró.
var ErrNotFound = errors.New("cache: key not found")

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// New crea un cliente de cache según la configuración.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Driver {
	case "redis":
		c, err := NewRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return NewMemory(cfg.Prefix, cfg.DefaultTTL), nil
	}
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}
