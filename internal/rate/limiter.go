// Package rate limita requests por key (IP del cliente, email...).
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter: fixed window sencillo (INCR + EXPIRE NX), compartido entre réplicas.
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{
		Client: client,
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	redisKey := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	hits := incr.Val()
	res := Result{
		Allowed:     hits <= l.Max,
		Remaining:   max(l.Max-hits, 0),
		CurrentHits: hits,
	}
	if !res.Allowed {
		// resto de la ventana
		res.RetryAfter = winStart.Add(l.Window).Sub(now).Round(time.Second)
		if res.RetryAfter <= 0 {
			res.RetryAfter = time.Second
		}
	}
	return res, nil
}
