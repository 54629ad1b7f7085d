// Package cache stores rendered artifacts so that drawing the same plan twice
// skips Graphviz.
//
// Entries are opaque byte slices addressed by string keys. [Key] derives a
// key from a namespace and any JSON-encodable parts, so a rendered SVG can be
// looked up by the DOT source that produced it:
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.Key("svg", dot)
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data, nil
//	}
//
// [NullCache] disables caching without changing call sites.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for rendered artifacts.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is reported
	// with ok == false and a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
