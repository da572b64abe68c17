package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is a thin JSON cache over Redis. A nil *Client is valid and acts as
// a cache that never hits, so callers don't need to branch on configuration.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis and returns a cache client. Entries expire after ttl.
func New(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &Client{rdb: rdb, ttl: ttl}, nil
}

// GetJSON loads key into dest. Returns false on miss.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores v under key with the configured TTL
func (c *Client) SetJSON(ctx context.Context, key string, v interface{}) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

// Delete removes keys, ignoring ones that don't exist
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Close releases the underlying connection
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
