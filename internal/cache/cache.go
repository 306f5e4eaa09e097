// Package cache keeps mentor to mentee lookups close to the service. Goals
// are never cached here; their effective status depends on the clock.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// LoadFunc fetches the authoritative mentee list on a miss.
type LoadFunc func(ctx context.Context) ([]string, error)

type MenteeCache interface {
	MenteeIDs(ctx context.Context, mentorID string, load LoadFunc) ([]string, error)
	Invalidate(ctx context.Context, mentorID string) error
}

// Stats counts cache traffic since start.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Errors uint64 `json:"errors"`
}

// RedisCache is a cache-aside store for mentee id lists. Concurrent misses
// for the same mentor share one load.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	group  singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
	errors atomic.Uint64
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{
		client: client,
		prefix: "mentees:",
		ttl:    ttl,
	}
}

// NewClient parses a redis:// URL and pings the server.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func (c *RedisCache) MenteeIDs(ctx context.Context, mentorID string, load LoadFunc) ([]string, error) {
	key := c.prefix + mentorID

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var ids []string
		if err := json.Unmarshal(data, &ids); err == nil {
			c.hits.Add(1)
			return ids, nil
		}
		c.errors.Add(1)
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
	default:
		// Redis trouble degrades to a direct load
		c.errors.Add(1)
		slog.Warn("mentee cache get failed", "error", err, "mentor_id", mentorID)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		ids, err := load(ctx)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(ids)
		if err == nil {
			err = c.client.Set(ctx, key, payload, c.ttl).Err()
		}
		if err != nil {
			c.errors.Add(1)
			slog.Warn("mentee cache set failed", "error", err, "mentor_id", mentorID)
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]string), nil
}

func (c *RedisCache) Invalidate(ctx context.Context, mentorID string) error {
	err := c.client.Del(ctx, c.prefix+mentorID).Err()
	if err != nil {
		c.errors.Add(1)
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (c *RedisCache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errors.Load(),
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Noop always loads. Used when REDIS_URL is not configured.
type Noop struct{}

func (Noop) MenteeIDs(ctx context.Context, _ string, load LoadFunc) ([]string, error) {
	return load(ctx)
}

func (Noop) Invalidate(context.Context, string) error { return nil }
