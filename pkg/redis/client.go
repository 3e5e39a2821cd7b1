package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/quorum/pkg/config"
)

// Client wraps the Redis client with additional utilities
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb     *redis.Client
	enabled bool
}

// New creates a new Redis client. When Redis is disabled in config, a stub
// client is returned and every helper degrades to a no-op.
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{enabled: false}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{rdb: rdb, enabled: true}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled returns whether Redis is enabled
func (c *Client) Enabled() bool {
	return c.enabled
}

// Redis returns the underlying redis client for advanced usage
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// SetNX stores a value only when the key does not exist yet.
// 기본값 시딩용 (SET NX)
func (c *Client) SetNX(ctx context.Context, key string, value string) (bool, error) {
	if !c.enabled {
		return false, nil
	}
	return c.rdb.SetNX(ctx, key, value, 0).Result()
}

// GetString returns the string value at key, or ("", false) when missing.
func (c *Client) GetString(ctx context.Context, key string) (string, bool, error) {
	if !c.enabled {
		return "", false, nil
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// SetString stores a string value with no expiry.
func (c *Client) SetString(ctx context.Context, key, value string) error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Set(ctx, key, value, 0).Err()
}
