/*
cache.go - Time-bounded read-through dataset cache

PURPOSE:
  Keeps the most recently fetched row collection per dataset identifier
  for a fixed TTL, so repeated dashboard queries do not hammer the
  upstream provider. On miss or expiry the full table is refetched and
  the entry replaced wholesale; entries are never partially updated.

SINGLE-FLIGHT:
  Concurrent requests that miss on the same dataset share one upstream
  fetch via singleflight.Group instead of racing redundant fetches.

STALENESS:
  A fetch failure propagates to the caller; the cache does not serve a
  stale entry in place of a failed refresh.

SEE ALSO:
  - redis.go: Redis-backed variant for multi-replica deployments
  - refresher.go: Background warm-up
*/
package dataset

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	fetchedAt time.Time
	rows      []Row
}

// Cache is an in-process read-through cache over a Provider.
type Cache struct {
	provider Provider
	ttl      time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// NewCache creates a cache with the given TTL in front of a provider.
func NewCache(p Provider, ttl time.Duration) *Cache {
	return &Cache{
		provider: p,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]cacheEntry),
	}
}

// Get returns the dataset rows and the time they were fetched from
// upstream, refetching when the entry is missing or older than the TTL.
func (c *Cache) Get(ctx context.Context, datasetID string) ([]Row, time.Time, error) {
	c.mu.RLock()
	entry, ok := c.entries[datasetID]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.rows, entry.fetchedAt, nil
	}

	v, err, _ := c.group.Do(datasetID, func() (any, error) {
		// A concurrent caller may have refreshed while we queued.
		c.mu.RLock()
		entry, ok := c.entries[datasetID]
		c.mu.RUnlock()
		if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
			return entry, nil
		}

		rows, err := c.provider.Fetch(ctx, datasetID, 0)
		if err != nil {
			return nil, err
		}
		entry = cacheEntry{fetchedAt: c.now(), rows: rows}
		c.mu.Lock()
		c.entries[datasetID] = entry
		c.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return nil, time.Time{}, err
	}

	entry = v.(cacheEntry)
	return entry.rows, entry.fetchedAt, nil
}

// Invalidate drops the cached entry so the next Get refetches.
func (c *Cache) Invalidate(_ context.Context, datasetID string) error {
	c.mu.Lock()
	delete(c.entries, datasetID)
	c.mu.Unlock()
	return nil
}
