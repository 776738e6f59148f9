// Package cache holds the Redis-backed unread notification counter used by
// the dashboard badge. The count is a cache over the notifications table;
// it is invalidated on every status change and lazily recomputed.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "lp:notifications:unread:"
	ttl       = 5 * time.Minute
)

// Counter caches per-manager unread counts. A nil Counter is a no-op so
// deployments without Redis degrade to direct counting.
type Counter struct {
	client *redis.Client
}

func NewCounter(client *redis.Client) *Counter {
	return &Counter{client: client}
}

// Get returns the cached count; ok is false on miss or when the cache is
// unavailable.
func (c *Counter) Get(ctx context.Context, managerID uuid.UUID) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}

	raw, err := c.client.Get(ctx, key(managerID)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores the count with a TTL so stale entries age out even if an
// invalidation is missed.
func (c *Counter) Set(ctx context.Context, managerID uuid.UUID, count int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, key(managerID), count, ttl)
}

// Invalidate drops the cached count after a status change.
func (c *Counter) Invalidate(ctx context.Context, managerID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, key(managerID))
}

func key(managerID uuid.UUID) string {
	return fmt.Sprintf("%s%s", keyPrefix, managerID)
}
