// Package clients provides wrappers for external service clients.
package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultEventDedupTTL is how long a relayed correlation id is remembered.
	DefaultEventDedupTTL = 24 * time.Hour

	eventSeenPrefix = "event_seen:"
)

// RedisClient wraps the Redis client with application-specific operations.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client from the connection URL.
func NewRedisClient(url string) (*RedisClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	return &RedisClient{client: client}, nil
}

// Ping checks connectivity to Redis.
func (c *RedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisClient) Close() error {
	return c.client.Close()
}

// MarkEventSeenIfNew records that an event with this correlation id was
// relayed. It returns true the first time an id is seen within ttl.
func (c *RedisClient) MarkEventSeenIfNew(ctx context.Context, correlationID string, ttl time.Duration) (bool, error) {
	key := eventSeenPrefix + correlationID
	value := time.Now().UTC().Format(time.RFC3339)
	isNew, err := c.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event seen: %w", err)
	}
	return isNew, nil
}

// ForgetEvent removes the seen marker so the event can be relayed again.
func (c *RedisClient) ForgetEvent(ctx context.Context, correlationID string) error {
	if err := c.client.Del(ctx, eventSeenPrefix+correlationID).Err(); err != nil {
		return fmt.Errorf("failed to forget event: %w", err)
	}
	return nil
}
