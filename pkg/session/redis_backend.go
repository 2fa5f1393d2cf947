package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores values as plain Redis strings, optionally namespaced
// and expiring. Lets several headless runners share one signed-in session.
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisBackend wraps client. prefix is prepended to every key; a zero ttl
// keeps values until deleted.
func NewRedisBackend(client *redis.Client, prefix string, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix, ttl: ttl}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := b.client.Get(ctx, b.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := b.client.Set(ctx, b.prefix+key, value, b.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, b.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

var _ Backend = (*RedisBackend)(nil)
