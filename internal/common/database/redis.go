package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"decree-workers/internal/common/config"
)

// RedisClient holds the connection used for the decree sequence counter.
type RedisClient struct {
	Client *redis.Client
	addr   string
}

// NewRedis configures a client. Batches are sequential, so the pool stays small.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is empty")
	}
	pool := cfg.PoolSize
	if pool <= 0 {
		pool = 4
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     pool,
		MinIdleConns: 1,
	})
	return &RedisClient{Client: rdb, addr: cfg.Address}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s: %w", c.addr, err)
	}
	return nil
}

// CounterCheck returns a readiness check that fails when key holds
// something other than a sequence number. A missing key is fine.
func (c *RedisClient) CounterCheck(key string) func(context.Context) error {
	return func(ctx context.Context) error {
		v, err := c.Client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("redis %s: read %s: %w", c.addr, key, err)
		}
		if n, err := strconv.Atoi(v); err != nil || n < 1 {
			return fmt.Errorf("redis %s: %s holds %q, not a sequence number", c.addr, key, v)
		}
		return nil
	}
}

func (c *RedisClient) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
