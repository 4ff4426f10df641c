// Package cache provides Redis cache access layer.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is used when no TTL is configured.
	DefaultTTL = 10 * time.Minute
	// DefaultFenceTTL is how long an invalidation blocks refills.
	DefaultFenceTTL = 5 * time.Second
)

var (
	// ErrCacheMiss is returned when a key is absent or unreadable.
	ErrCacheMiss = errors.New("cache miss")
	// ErrFenced is returned when a refill lands inside an invalidation fence.
	ErrFenced = errors.New("cache write fenced")
)

// Cache provides Redis cache access methods.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	fence  time.Duration
}

// New creates a new Cache with a Redis client.
func New(ctx context.Context, redisURL string, ttl time.Duration) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewFromClient(client, ttl), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl, fence: DefaultFenceTTL}
}

// WithFenceTTL sets how long DeleteUser blocks SetUser for the same user.
// It must outlast the slowest store read, or a reader that started before
// the write can still cache what it saw. Non-positive values are ignored.
func (c *Cache) WithFenceTTL(d time.Duration) *Cache {
	if d > 0 {
		c.fence = d
	}
	return c
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client.
// Use sparingly - prefer adding methods to Cache.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// FenceTTL returns the invalidation fence lifetime.
func (c *Cache) FenceTTL() time.Duration {
	return c.fence
}
