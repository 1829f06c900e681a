package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trogers1052/pnl-service/internal/config"
	"github.com/trogers1052/pnl-service/internal/models"
)

// SummaryChannel is the pub/sub channel carrying account summary updates
const SummaryChannel = "pnl:updates"

// Client wraps the Redis client with PnL-specific operations
type Client struct {
	rdb *redis.Client
}

// New creates a new Redis client
func New(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// CacheAccountSummary stores the latest account summary under
// pnl:<account>:summary so other services can read the current state
// without calling into this one
func (c *Client) CacheAccountSummary(ctx context.Context, summary models.AccountSummary, ttl time.Duration) error {
	key := fmt.Sprintf("pnl:%s:summary", summary.AccountID)
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal account summary: %w", err)
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// GetAccountSummary retrieves the cached account summary, redis.Nil if
// none has been written yet
func (c *Client) GetAccountSummary(ctx context.Context, accountID string) (*models.AccountSummary, error) {
	key := fmt.Sprintf("pnl:%s:summary", accountID)
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var summary models.AccountSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account summary: %w", err)
	}
	return &summary, nil
}

// PublishSummaryUpdate broadcasts the account summary on the shared
// updates channel
func (c *Client) PublishSummaryUpdate(ctx context.Context, summary models.AccountSummary) error {
	return c.Publish(ctx, SummaryChannel, summary)
}

// Publish publishes a message to a channel as JSON
func (c *Client) Publish(ctx context.Context, channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return c.rdb.Publish(ctx, channel, data).Err()
}

// Subscribe returns a subscription to one or more channels
func (c *Client) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return c.rdb.Subscribe(ctx, channels...)
}
