// Package cache stores reconciled reports so that repeated runs over the
// same inputs skip reconciliation.
//
// Keys are derived by a [Keyer] from the content hashes of the input files
// and the options that shape the report, so any change to either yields a
// new key. Entries are opaque bytes.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key. The boolean is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// nullCache misses on every lookup. It stands in when caching is disabled.
type nullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return nullCache{} }

func (nullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error                     { return nil }
func (nullCache) Close() error                                             { return nil }

// TTLReport is how long a reconciled report stays valid. Reports depend only
// on the content of their inputs, so the limit only bounds disk usage.
const TTLReport = 30 * 24 * time.Hour
