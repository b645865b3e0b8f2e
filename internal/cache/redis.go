package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient implementa Client usando Redis.
type redisClient struct {
	client *redis.Client
	prefix string
}

// NewRedis crea un cliente de cache Redis y verifica la conexión.
func NewRedis(ctx context.Context, cfg Config) (*redisClient, error) {
	addr := cfg.Addr
	if !strings.Contains(addr, ":") {
		addr += ":6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}
	return &redisClient{client: rdb, prefix: cfg.Prefix}, nil
}

// Raw expone el cliente subyacente (lo comparte rate.RedisLimiter).
func (c *redisClient) Raw() *redis.Client { return c.client }

func (c *redisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, prefixed(c.prefix, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *redisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.client.Set(ctx, prefixed(c.prefix, key), value, ttl).Err()
}

func (c *redisClient) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, prefixed(c.prefix, key)).Err()
}

func (c *redisClient) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, prefixed(c.prefix, key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *redisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *redisClient) Close() error {
	return c.client.Close()
}

func (c *redisClient) Stats(ctx context.Context) (Stats, error) {
	keys, err := c.client.DBSize(ctx).Result()
	if err != nil {
		return Stats{}, err
	}
	statsInfo, _ := c.client.Info(ctx, "stats").Result()
	var hits, misses int64
	for _, line := range strings.Split(statsInfo, "\r\n") {
		if strings.HasPrefix(line, "keyspace_hits:") {
			fmt.Sscanf(strings.TrimPrefix(line, "keyspace_hits:"), "%d", &hits)
		}
		if strings.HasPrefix(line, "keyspace_misses:") {
			fmt.Sscanf(strings.TrimPrefix(line, "keyspace_misses:"), "%d", &misses)
		}
	}
	return Stats{Driver: "redis", Keys: keys, Hits: hits, Misses: misses}, nil
}
