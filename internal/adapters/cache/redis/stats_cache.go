package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

// Connect establishes a connection to Redis and returns the client object.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// StatsCache stores dashboard statistics as JSON values with a TTL.
type StatsCache struct {
	client *redis.Client
}

func NewStatsCache(client *redis.Client) ports.StatsCache {
	return &StatsCache{client: client}
}

func (c *StatsCache) Get(ctx context.Context, key string) (*domain.DashboardStats, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var stats domain.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached stats: %w", err)
	}
	return &stats, true, nil
}

func (c *StatsCache) Set(ctx context.Context, key string, stats *domain.DashboardStats, ttl time.Duration) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}
