package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client wraps Redis operations for the notifier's delivery leases.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health checks if Redis is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func deliveryKey(serviceID uuid.UUID, messageHash string) string {
	return fmt.Sprintf("delivery:%s:%s", serviceID, messageHash)
}

// AcquireDelivery takes a short lease on a (service, message hash) pair so
// that only one replica attempts a callback at a time.
func (c *Client) AcquireDelivery(ctx context.Context, serviceID uuid.UUID, messageHash string, ttl time.Duration) (bool, error) {
	key := deliveryKey(serviceID, messageHash)
	ok, err := c.rdb.SetNX(ctx, key, "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx failed: %w", err)
	}
	return ok, nil
}

// ReleaseDelivery drops a delivery lease.
func (c *Client) ReleaseDelivery(ctx context.Context, serviceID uuid.UUID, messageHash string) error {
	key := deliveryKey(serviceID, messageHash)
	return c.rdb.Del(ctx, key).Err()
}
