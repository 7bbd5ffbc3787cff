// Package urlcache caches presigned download URLs so repeated views of the
// same attachment don't re-sign on every request. Entries carry their own
// expiry, which is always shorter than the URL's signature lifetime: a URL
// served from the cache is guaranteed to stay valid for the remainder of the
// entry's TTL.
package urlcache

import (
	"context"
	"time"
)

// Entry is one cached presigned URL.
type Entry struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry may no longer be served.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Cache stores presigned URLs keyed by storage key. Get must never return an
// expired entry.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
}
