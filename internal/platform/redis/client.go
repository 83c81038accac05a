// Package redis wraps the go-redis client behind the project's config.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"opsledger/internal/platform/config"
)

// Client embeds the go-redis client. Callers that only need commands use it
// directly; the wrapper adds construction from config and a health probe.
type Client struct {
	*redis.Client
}

// New dials Redis from the given config and verifies the connection with a
// ping. An empty URL means Redis is not configured; the caller gets a nil
// client and runs without caching.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the connection still answers.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
