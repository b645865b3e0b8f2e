package shared

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/mallkit/internal/cache"
	"github.com/dropDatabas3/mallkit/internal/observability/logger"
	"github.com/dropDatabas3/mallkit/internal/secretbox"
)

// Cached guarda en cache los Get de inner. Las búsquedas concurrentes del
// mismo id comparten una sola consulta. List no se cachea.
//
// Solo se cachean stores con AppKey sellada (o vacía): una app_key en claro
// nunca se escribe en el backend de cache, que puede ser Redis compartido.
type Cached struct {
	inner Repository
	cache cache.Client
	ttl   time.Duration
	sf    singleflight.Group
}

func NewCached(inner Repository, c cache.Client, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cached{inner: inner, cache: c, ttl: ttl}
}

func cacheKey(id string) string { return "shared:" + id }

func (c *Cached) Get(ctx context.Context, id string) (Store, error) {
	if raw, err := c.cache.Get(ctx, cacheKey(id)); err == nil {
		var s Store
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return s, nil
		}
	} else if !cache.IsNotFound(err) {
		logger.From(ctx).Warn("shared cache read failed", logger.StoreID(id), logger.Err(err))
	}

	v, err, _ := c.sf.Do(id, func() (any, error) {
		s, err := c.inner.Get(ctx, id)
		if err != nil {
			return Store{}, err
		}
		if s.AppKey != "" && !secretbox.IsSealed(s.AppKey) {
			logger.From(ctx).Debug("shared store not cached: plaintext app_key", logger.StoreID(id))
			return s, nil
		}
		if b, err := json.Marshal(s); err == nil {
			if err := c.cache.Set(ctx, cacheKey(id), string(b), c.ttl); err != nil {
				logger.From(ctx).Warn("shared cache write failed", logger.StoreID(id), logger.Err(err))
			}
		}
		return s, nil
	})
	if err != nil {
		return Store{}, err
	}
	return v.(Store), nil
}

func (c *Cached) List(ctx context.Context) ([]Store, error) { return c.inner.List(ctx) }

// Invalidate descarta la entrada cacheada de id.
func (c *Cached) Invalidate(ctx context.Context, id string) error {
	return c.cache.Delete(ctx, cacheKey(id))
}
