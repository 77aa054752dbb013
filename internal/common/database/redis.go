// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"marketplace-search/internal/common/config"
	apperrors "marketplace-search/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// RedisClient holds the connection used by the preference cache and the
// zero-result query log.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis connects and pings. A failed ping is reported as a storage error.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	client := &RedisClient{Client: rdb}
	if err := client.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}
	return client, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
