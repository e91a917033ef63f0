package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCmd is the subset of redis commands the stats cache needs; tests
// substitute an in-memory implementation.
type RedisCmd interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStatsCache caches computed dashboards for a short TTL so repeated
// dashboard loads do not rescan the ledger. Staleness is bounded by the TTL;
// nothing invalidates entries on writes.
type RedisStatsCache struct {
	Client RedisCmd
	TTL    time.Duration
}

func NewRedisStatsCache(client RedisCmd, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{Client: client, TTL: ttl}
}

// GetDashboard returns the cached dashboard for key, or nil on a miss.
func (c *RedisStatsCache) GetDashboard(ctx context.Context, key string) (*Dashboard, error) {
	payload, err := c.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get dashboard from redis: %w", err)
	}

	var dashboard Dashboard
	if err := json.Unmarshal([]byte(payload), &dashboard); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached dashboard: %w", err)
	}
	return &dashboard, nil
}

func (c *RedisStatsCache) SetDashboard(ctx context.Context, key string, d *Dashboard) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard: %w", err)
	}
	if err := c.Client.Set(ctx, key, payload, c.TTL).Err(); err != nil {
		return fmt.Errorf("failed to cache dashboard: %w", err)
	}
	return nil
}
