// Package cache stores search results keyed by descriptor and options.
//
// A phase cycle search is deterministic: the same pathway matrix, family
// and result-affecting options always give the same cycles. The cache
// lets the CLI and the HTTP server skip repeated searches.
//
// # Backends
//
//   - [FileCache]: JSON files under a directory, for the CLI.
//   - [RedisCache]: a shared Redis instance, for the server.
//   - [NullCache]: stores nothing, for --no-cache and tests.
//
// # Keys
//
// A [Keyer] derives keys from a descriptor hash and [SearchKeyOpts]. Only
// options that change the result take part; worker count and buffer size
// do not. [ScopedKeyer] prefixes keys for separate namespaces.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}
