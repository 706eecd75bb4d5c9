// Package cache provides a Redis-backed cache for available-slot queries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"multitenantbooking/internal/domain"
	"multitenantbooking/internal/services"
)

// RedisSlotCache caches slot query results with a short TTL. Redis failures
// degrade to cache misses; the Postgres read model stays authoritative.
type RedisSlotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisSlotCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisSlotCache {
	return &RedisSlotCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisSlotCache) Get(ctx context.Context, key string) ([]*domain.AvailableBookingSlot, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("slot cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var slots []*domain.AvailableBookingSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		c.logger.Warn("slot cache entry corrupt, dropping", "key", key, "error", err)
		c.client.Del(ctx, key)
		return nil, false
	}
	return slots, true
}

func (c *RedisSlotCache) Set(ctx context.Context, key string, slots []*domain.AvailableBookingSlot) {
	raw, err := json.Marshal(slots)
	if err != nil {
		c.logger.Warn("slot cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("slot cache set failed", "key", key, "error", err)
	}
}

var _ services.SlotCache = (*RedisSlotCache)(nil)
