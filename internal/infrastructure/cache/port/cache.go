package port

import (
	"context"
	"time"
)

// Cache is the key-value cache contract used for response caching.
// Implementations must be safe for concurrent use and context-aware so
// callers control timeouts and cancellation.
//
// Values are stored as strings; serialization is the caller's concern.
type Cache interface {
	// Get fetches the value for key. Misses are reported as ("", ErrMiss)
	// so callers can distinguish them from transport errors.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key with the provided TTL. Zero or negative TTL
	// means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes one or more keys and returns the number of keys removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Incr atomically increments the integer value at key and returns the
	// new value, initializing missing keys to zero first. Used for
	// namespace version counters that retire whole key families at once.
	Incr(ctx context.Context, key string) (int64, error)

	// Ping verifies connectivity with the cache backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrMiss signals a cache miss in a typed way.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
