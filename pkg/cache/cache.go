// Package cache provides byte caches for pipeline results.
//
// # Implementations
//
//   - [NullCache]: stores nothing; used with --no-cache and in tests
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for multi-instance deployments of serve
//
// # Keys
//
// Keys are built by a [Keyer]. [DefaultKeyer] hashes the dataset contents
// together with every pipeline parameter, so a change to either produces a
// new key. [ScopedKeyer] prefixes keys to isolate namespaces, for example
// uploaded datasets in the HTTP server.
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	TTLGraph  = 24 * time.Hour
	TTLRender = 24 * time.Hour
	TTLUpload = 2 * time.Hour
)

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop all their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}
