package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a cached query result stays fresh.
const DefaultTTL = 30 * time.Second

// Invalidations maps each mutation to the read-key prefixes it must
// invalidate. Coherency between writes and cached reads is defined by this
// table plus the tenant-scoped InvalidatePrefix calls; handlers never
// issue ad hoc deletes. Lock keys live under lock: and are never swept.
var Invalidations = map[string][]string{
	"team.assign_manager": {"team:"},
	"team.remove_manager": {"team:"},
	"candidates.assign":   {"team:", "candidates:"},
	"candidates.create":   {"candidates:", "matching:"},
	"candidates.update":   {"candidates:", "team:", "matching:"},
	"candidates.delete":   {"candidates:", "team:", "matching:"},
	"candidates.status":   {"candidates:", "team:"},
	"submissions.create":  {"matching:", "tenants:stats:"},
	"submissions.review":  {"matching:"},
	"openings.create":     {"matching:", "tenants:stats:"},
	"openings.update":     {"matching:", "tenants:stats:"},
	"openings.delete":     {"matching:", "tenants:stats:"},
	"tenants.update":      {"tenants:"},
	"tenants.suspend":     {"tenants:"},
}

// QueryCache caches JSON-encoded query results in Redis keyed by
// operation and parameters. A nil cache degrades to loader passthrough.
type QueryCache struct {
	client  *redis.Client
	ttl     time.Duration
	observe func(outcome string)
}

// NewQueryCache instantiates the cache helper. A non-positive ttl falls
// back to DefaultTTL.
func NewQueryCache(client *redis.Client, ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &QueryCache{client: client, ttl: ttl}
}

// SetObserver installs a hit/miss counter callback.
func (c *QueryCache) SetObserver(fn func(outcome string)) {
	if c != nil {
		c.observe = fn
	}
}

func (c *QueryCache) observed(outcome string) {
	if c != nil && c.observe != nil {
		c.observe(outcome)
	}
}

// Key composes a cache key from an operation name and its parameters.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *QueryCache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		c.observed("hit")
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	c.observed("miss")
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate removes every cached read the named mutation depends on,
// per the Invalidations table. Unknown mutations are a no-op.
func (c *QueryCache) Invalidate(ctx context.Context, mutation string) error {
	if c == nil || c.client == nil {
		return nil
	}
	prefixes, ok := Invalidations[mutation]
	if !ok {
		return nil
	}
	for _, prefix := range prefixes {
		if err := c.dropPrefix(ctx, prefix); err != nil {
			return err
		}
	}
	return nil
}

// InvalidatePrefix drops every cached read under one literal key prefix.
// Callers with tenant-scoped namespaces use this to avoid sweeping the
// same namespace for other tenants.
func (c *QueryCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.dropPrefix(ctx, prefix)
}

func (c *QueryCache) dropPrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
