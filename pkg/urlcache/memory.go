package urlcache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps entries in-process. Each entry is stored with its own
// remaining lifetime so the janitor can evict it, and Get re-checks expiry
// anyway so a stale URL is never handed out between sweeps.
type MemoryCache struct {
	cache *gocache.Cache
	now   func() time.Time
}

// NewMemoryCache builds an in-process cache whose expired entries are purged
// every sweepInterval.
func NewMemoryCache(sweepInterval time.Duration) *MemoryCache {
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}
	return &MemoryCache{
		cache: gocache.New(gocache.NoExpiration, sweepInterval),
		now:   time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Entry, bool) {
	x, found := c.cache.Get(key)
	if !found {
		return Entry{}, false
	}
	entry := x.(Entry)
	if entry.Expired(c.now()) {
		c.cache.Delete(key)
		return Entry{}, false
	}
	return entry, true
}

func (c *MemoryCache) Set(_ context.Context, key string, entry Entry) error {
	ttl := entry.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}
	c.cache.Set(key, entry, ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}
