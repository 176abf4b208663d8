/*
redis.go - Redis-backed dataset cache

PURPOSE:
  Same read-through contract as the in-process cache, with the entry kept
  in Redis so multiple API replicas share one cached copy per dataset.
  Rows are stored as a JSON envelope carrying the fetch timestamp;
  expiry is delegated to the Redis key TTL.

NOTE:
  JSON round-tripping folds every numeric value to float64 and dates to
  RFC3339 strings. The analytics engine's tolerant value coercion accepts
  both, so cached and freshly fetched rows aggregate identically.

SEE ALSO:
  - cache.go: In-process variant
*/
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const redisKeyPrefix = "dataset:"

type redisEnvelope struct {
	FetchedAt time.Time `json:"fetched_at"`
	Rows      []Row     `json:"rows"`
}

// RedisCache is a read-through dataset cache backed by Redis.
type RedisCache struct {
	client   *redis.Client
	provider Provider
	ttl      time.Duration
	group    singleflight.Group
}

// NewRedisCache creates a Redis-backed cache with the given TTL.
func NewRedisCache(client *redis.Client, p Provider, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, provider: p, ttl: ttl}
}

// Get returns the dataset rows and their upstream fetch time, refetching
// through the provider when the Redis entry is missing or expired.
func (c *RedisCache) Get(ctx context.Context, datasetID string) ([]Row, time.Time, error) {
	key := redisKeyPrefix + datasetID

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var env redisEnvelope
		if jsonErr := json.Unmarshal(data, &env); jsonErr == nil {
			return env.Rows, env.FetchedAt, nil
		}
		// Corrupt entry: fall through to a fresh fetch.
	} else if !errors.Is(err, redis.Nil) {
		return nil, time.Time{}, fmt.Errorf("%w: redis get: %v", ErrConnection, err)
	}

	v, err, _ := c.group.Do(datasetID, func() (any, error) {
		rows, err := c.provider.Fetch(ctx, datasetID, 0)
		if err != nil {
			return nil, err
		}
		env := redisEnvelope{FetchedAt: time.Now(), Rows: rows}
		if data, err := json.Marshal(env); err == nil {
			// Cache write failures degrade to fetch-per-request; the
			// response itself is unaffected.
			c.client.Set(ctx, key, data, c.ttl)
		}
		return env, nil
	})
	if err != nil {
		return nil, time.Time{}, err
	}

	env := v.(redisEnvelope)
	return env.Rows, env.FetchedAt, nil
}

// Invalidate deletes the Redis entry so the next Get refetches.
func (c *RedisCache) Invalidate(ctx context.Context, datasetID string) error {
	if err := c.client.Del(ctx, redisKeyPrefix+datasetID).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %v", ErrConnection, err)
	}
	return nil
}
