// Package cache stores search results and rendered artifacts by content key.
//
// A search is deterministic in its input topology, its labels and the
// frontier limits, so its result can be reused across invocations. The CLI
// keeps entries on disk ([FileCache]); the HTTP server can share them
// through Redis ([RedisCache]). [NullCache] disables caching.
//
// Keys are built by a [Keyer] from a hash of the normalized input and the
// options that influence the result. The worker count is not part of a key
// because it does not change the result.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is reported
	// as a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
