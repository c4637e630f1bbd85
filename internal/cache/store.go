package cache

import (
	"context"
	"time"
)

// Store is a byte-value key/value store used for the recipe list cache and
// the per-id detail cache. Implemented by the file store (default), the
// in-memory store (dev/tests) and the Redis store.
//
// Entries do not expire inside the store: list entries carry their own
// timestamp and freshness is decided by the caller with Fresh, because a
// stale entry must remain readable so it can be served when every upstream
// attempt fails. Detail entries never expire at all.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Fresh reports whether an entry stamped at timestamp is still within ttl
// at the given instant. The boundary is inclusive: an entry aged exactly
// ttl is still fresh. A non-positive ttl disables expiry.
func Fresh(timestamp, now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return true
	}
	return now.Sub(timestamp) <= ttl
}
