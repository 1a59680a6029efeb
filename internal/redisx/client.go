package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// ListCache keeps serialized list responses. A nil *ListCache is a no-op.
type ListCache struct {
	R   *redis.Client
	TTL time.Duration
}

// Get returns the cached body; ok is false on miss or any redis error.
func (c *ListCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.R == nil {
		return nil, false
	}
	b, err := c.R.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *ListCache) Set(ctx context.Context, key string, body []byte) error {
	if c == nil || c.R == nil {
		return nil
	}
	return c.R.Set(ctx, key, body, c.TTL).Err()
}

// Invalidate drops the given keys.
func (c *ListCache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.R == nil || len(keys) == 0 {
		return nil
	}
	return c.R.Del(ctx, keys...).Err()
}

// Dedup marks ids as processed with SETNX.
type Dedup struct {
	R       *redis.Client
	Service string
	TTL     time.Duration
}

// FirstSeen reports whether id was not processed before, and marks it.
func (d *Dedup) FirstSeen(ctx context.Context, id string) (bool, error) {
	key := fmt.Sprintf(KeyDedup, d.Service, id)
	ok, err := d.R.SetNX(ctx, key, "1", d.TTL).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return ok, nil
}

// Forget clears the mark, e.g. when processing failed after FirstSeen.
func (d *Dedup) Forget(ctx context.Context, id string) error {
	return d.R.Del(ctx, fmt.Sprintf(KeyDedup, d.Service, id)).Err()
}
