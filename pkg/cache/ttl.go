package cache

import (
	"context"
	"time"
)

// TTLCache stores every entry of the wrapped cache with a fixed TTL,
// replacing the TTL the caller passes to Set.
type TTLCache struct {
	Cache
	ttl time.Duration
}

// WithTTL wraps c so that Set uses ttl. A zero ttl returns c unchanged.
func WithTTL(c Cache, ttl time.Duration) Cache {
	if ttl <= 0 {
		return c
	}
	return &TTLCache{Cache: c, ttl: ttl}
}

// Set stores data under key with the configured TTL.
func (c *TTLCache) Set(ctx context.Context, key string, data []byte, _ time.Duration) error {
	return c.Cache.Set(ctx, key, data, c.ttl)
}

// Clear forwards to the wrapped cache when it supports clearing.
func (c *TTLCache) Clear(ctx context.Context) (int, error) {
	if cl, ok := c.Cache.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return 0, ErrClearUnsupported
}

var (
	_ Cache   = (*TTLCache)(nil)
	_ Clearer = (*TTLCache)(nil)
)
