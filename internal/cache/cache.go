// Package cache memoizes upstream lookups for the life of a client.
// It uses patrickmn/go-cache for TTL-based expiry and x/sync/singleflight so
// concurrent requests for the same key share one fetch.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/mutantautomate/mutant/pkg/constants"
)

// Cache holds successful lookup results keyed by URL.
type Cache struct {
	store *gocache.Cache
	group singleflight.Group

	// flightTimeout bounds a shared fetch, which outlives its callers.
	flightTimeout time.Duration
}

// New creates a new cache with the given TTL and cleanup interval.
// defaultTTL is the default expiration time for cache entries.
// cleanupInterval is how often expired items are removed from memory.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store:         gocache.New(defaultTTL, cleanupInterval),
		flightTimeout: constants.DefaultHTTPTimeout,
	}
}

// Fetcher produces the value for a cache miss.
type Fetcher func(ctx context.Context) (string, error)

// Text returns the cached value for key, calling fetch on a miss. Errors are
// never cached. A nil Cache always fetches.
//
// Concurrent misses share one fetch. It runs detached from any single
// caller's cancellation; each caller stops waiting when its own ctx ends.
func (c *Cache) Text(ctx context.Context, key string, fetch Fetcher) (string, error) {
	if c == nil {
		return fetch(ctx)
	}
	if v, ok := c.store.Get(key); ok {
		return v.(string), nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.flightTimeout)
		defer cancel()

		text, err := fetch(fctx)
		if err != nil {
			return "", err
		}
		c.store.Set(key, text, gocache.DefaultExpiration)
		return text, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
