// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"activity-signup/internal/common/config"
	apperrors "activity-signup/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the Redis client used by the event sink.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a client. It does not dial until the first command; use Ping.
func NewRedis(cfg config.RedisConfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisClient{Client: rdb}
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(fmt.Errorf("redis ping failed: %w", err))
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
