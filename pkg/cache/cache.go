// Package cache stores rendered safe trees and locate results so repeated
// requests for the same document skip the traversal.
//
// Three backends implement [Cache]:
//
//   - [FileCache] keeps one file per entry under a directory (CLI default)
//   - [RedisCache] shares entries between server replicas
//   - [NullCache] never stores anything (--no-cache)
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes the document bytes together
// with every option that changes the output; [ScopedKeyer] adds a prefix so
// tenants or environments never share entries.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored data and true, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}
