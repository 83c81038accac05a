// Package rolecache caches role lookups in Redis so the auth middleware does
// not hit postgres on every request.
package rolecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"opsledger/internal/platform/redis"
	id "opsledger/pkg/domain"
	"opsledger/pkg/platform/sentinel"
)

// Cache stores role strings keyed by user ID with a TTL. Failures are
// reported to the caller, which treats them as cache misses.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func key(userID id.UserID) string {
	return "opsledger:role:" + userID.String()
}

// Get returns the cached role, or sentinel.ErrNotFound on a miss.
func (c *Cache) Get(ctx context.Context, userID id.UserID) (string, error) {
	role, err := c.client.Get(ctx, key(userID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("role cache get: %w", err)
	}
	return role, nil
}

// Set caches the role for the configured TTL.
func (c *Cache) Set(ctx context.Context, userID id.UserID, role string) error {
	if err := c.client.Set(ctx, key(userID), role, c.ttl).Err(); err != nil {
		return fmt.Errorf("role cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached role, forcing the next lookup to the store.
func (c *Cache) Invalidate(ctx context.Context, userID id.UserID) error {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("role cache invalidate: %w", err)
	}
	return nil
}
