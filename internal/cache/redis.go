package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes a Redis client from a redis:// URL.
func NewRedisCache(url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisCache{Client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// IncrWithTTL increments key and starts its expiry on the first increment,
// so the window runs from the first hit rather than sliding.
func (c *RedisCache) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := c.Client.Expire(ctx, key, ttl).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (c *RedisCache) GetInt(ctx context.Context, key string) (int64, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil // cache miss
	} else if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// LoginThrottle counts failed logins per username inside a fixed window.
type LoginThrottle struct {
	cache       *RedisCache
	maxFailures int64
	window      time.Duration
}

func NewLoginThrottle(cache *RedisCache, maxFailures int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{cache: cache, maxFailures: int64(maxFailures), window: window}
}

// KeyForFailures generates the Redis key for a username's failure counter.
// Usernames are case-sensitive, so the key is too.
func (t *LoginThrottle) KeyForFailures(username string) string {
	return "login:failures:" + username
}

// Allow reports whether username may attempt another login.
func (t *LoginThrottle) Allow(ctx context.Context, username string) (bool, error) {
	n, err := t.cache.GetInt(ctx, t.KeyForFailures(username))
	if err != nil {
		return true, err
	}
	return n < t.maxFailures, nil
}

func (t *LoginThrottle) Failed(ctx context.Context, username string) error {
	_, err := t.cache.IncrWithTTL(ctx, t.KeyForFailures(username), t.window)
	return err
}

func (t *LoginThrottle) Succeeded(ctx context.Context, username string) error {
	return t.cache.Del(ctx, t.KeyForFailures(username))
}
