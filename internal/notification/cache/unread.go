// Package cache holds the redis-backed unread-notification counter. The
// count is a pure read optimization: the store remains authoritative and
// every write path invalidates rather than updates.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	platformredis "kolabo/internal/platform/redis"
	"kolabo/pkg/domain"
)

// UnreadCounts caches per-recipient unread counts. A nil receiver or nil
// client disables caching; every method is safe to call either way.
type UnreadCounts struct {
	client *platformredis.Client
	ttl    time.Duration
}

func NewUnreadCounts(client *platformredis.Client, ttl time.Duration) *UnreadCounts {
	if client == nil {
		return nil
	}
	return &UnreadCounts{client: client, ttl: ttl}
}

func key(recipient domain.Actor) string {
	return fmt.Sprintf("notifications:unread:%s:%d", recipient.Kind, recipient.ID)
}

// Get returns the cached count; ok is false on miss or when the cache is
// disabled.
func (c *UnreadCounts) Get(ctx context.Context, recipient domain.Actor) (int, bool, error) {
	if c == nil {
		return 0, false, nil
	}
	count, err := c.client.Get(ctx, key(recipient)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get unread count: %w", err)
	}
	return count, true, nil
}

// Set stores the count with the configured TTL.
func (c *UnreadCounts) Set(ctx context.Context, recipient domain.Actor, count int) error {
	if c == nil {
		return nil
	}
	if err := c.client.Set(ctx, key(recipient), count, c.ttl).Err(); err != nil {
		return fmt.Errorf("set unread count: %w", err)
	}
	return nil
}

// Invalidate drops the cached count after any write touching read state.
func (c *UnreadCounts) Invalidate(ctx context.Context, recipient domain.Actor) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, key(recipient)).Err(); err != nil {
		return fmt.Errorf("invalidate unread count: %w", err)
	}
	return nil
}
