package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// incrWithExpiry increments a counter and applies the TTL only when this
// increment created the key. Running as a script keeps the whole operation a
// single atomic round trip, which the admission path depends on.
var incrWithExpiry = redis.NewScript(`
local v = redis.call('INCR', KEYS[1])
if v == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return v
`)

// CacheStore implements ports.CacheStore on Redis. Every call is bounded by
// opTimeout so a slow Redis degrades to fail-open instead of stalling
// requests.
type CacheStore struct {
	r         redis.Cmdable
	prefix    string
	opTimeout time.Duration
}

// NewCacheStore creates a Redis-backed cache store. prefix namespaces all
// keys; opTimeout of 0 disables the per-call bound.
func NewCacheStore(r redis.Cmdable, prefix string, opTimeout time.Duration) *CacheStore {
	return &CacheStore{r: r, prefix: prefix, opTimeout: opTimeout}
}

func (c *CacheStore) namespaced(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

func (c *CacheStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

// Get implements CacheStore.Get.
func (c *CacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	val, err := c.r.Get(ctx, c.namespaced(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// SetIfAbsent implements CacheStore.SetIfAbsent.
func (c *CacheStore) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.r.SetNX(ctx, c.namespaced(key), value, ttl).Result()
}

// Set implements CacheStore.Set.
func (c *CacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.r.Set(ctx, c.namespaced(key), value, ttl).Err()
}

// IncrWithExpiry implements CacheStore.IncrWithExpiry.
func (c *CacheStore) IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return incrWithExpiry.Run(ctx, c.r, []string{c.namespaced(key)}, ttl.Milliseconds()).Int64()
}

// Delete implements CacheStore.Delete.
func (c *CacheStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.r.Del(ctx, c.namespaced(key)).Err()
}
