// Package redis adapts go-redis as a payloadstore.Store: plain
// get/set for payload bytes, plus SetNX for the write-back path's
// cross-process lock.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kestrelmem/semanticmemory/payloadstore"
)

// Client implements payloadstore.Store against a Redis server.
type Client struct {
	rdb *redis.Client
}

// New dials Redis using a "host:port"-style address and an optional
// password/token.
func New(addr, token string) *Client {
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: token,
		}),
	}
}

// Get implements payloadstore.Store.
func (c *Client) Get(ctx context.Context, id string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, payloadstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("payloadstore/redis: get %s: %w", id, err)
	}
	return b, nil
}

// Set implements payloadstore.Store.
func (c *Client) Set(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, id, payload, ttl).Err(); err != nil {
		return fmt.Errorf("payloadstore/redis: set %s: %w", id, err)
	}
	return nil
}

// SetNX implements payloadstore.Store using Redis's atomic SET NX EX.
func (c *Client) SetNX(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	acquired, err := c.rdb.SetNX(ctx, lockKey, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("payloadstore/redis: setnx %s: %w", lockKey, err)
	}
	return acquired, nil
}

// Del implements payloadstore.Store.
func (c *Client) Del(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("payloadstore/redis: del %s: %w", key, err)
	}
	return nil
}

// Close implements payloadstore.Store.
func (c *Client) Close() error {
	return c.rdb.Close()
}

var _ payloadstore.Store = (*Client)(nil)
