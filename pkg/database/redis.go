package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/datadrift/datadrift/pkg/config"
)

// ErrRedisNotConfigured is returned by NewRedisClient when no host is set.
var ErrRedisNotConfigured = errors.New("redis host is not configured")

const redisDialTimeout = 5 * time.Second

// NewRedisClient connects to the Redis server in cfg and pings it once.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, ErrRedisNotConfigured
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: redisDialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}
