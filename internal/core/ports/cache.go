package ports

import (
	"context"
	"time"
)

// CacheStore is the key-value store with TTL that owns all admission state
// (counters, block records, anomaly buckets). Implementations must guarantee
// atomicity of IncrWithExpiry across concurrent callers; a read-then-write
// emulation reintroduces lost updates and is not acceptable.
//
// Implementations should bound every call with a short timeout and return an
// error on failure; callers fail open.
type CacheStore interface {
	// Get returns the raw bytes for key. ok=false if not found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// SetIfAbsent stores value only when key does not exist. Returns whether
	// the value was stored.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Set stores value for key with TTL, overwriting any prior value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// IncrWithExpiry atomically increments the counter at key and returns the
	// post-increment value. The TTL is applied only when the increment
	// creates the key.
	IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string) error
}
