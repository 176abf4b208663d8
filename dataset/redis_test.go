package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T, p Provider, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, p, ttl), mr
}

func TestRedisCacheReadThrough(t *testing.T) {
	p := &countingProvider{inner: seededMemory()}
	c, mr := newTestRedisCache(t, p, 5*time.Minute)

	rows, fetchedAt, err := c.Get(context.Background(), "sales")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, fetchedAt.IsZero())
	assert.True(t, mr.Exists("dataset:sales"))

	rows, _, err = c.Get(context.Background(), "sales")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), p.fetches.Load(), "second read is served from redis")
}

func TestRedisCacheRoundTripPreservesValues(t *testing.T) {
	m := NewMemory()
	m.Load("sales", []Row{{
		"Customer":    "Metro Retail",
		"Actual_sale": 10.5,
		"date":        "2024-03-15",
	}})
	c, _ := newTestRedisCache(t, m, 5*time.Minute)

	// Prime, then read back through redis.
	_, _, err := c.Get(context.Background(), "sales")
	require.NoError(t, err)
	rows, _, err := c.Get(context.Background(), "sales")
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "Metro Retail", String(rows[0]["Customer"]))
	assert.Equal(t, 10.5, FloatOrZero(rows[0]["Actual_sale"]))
	assert.Equal(t, "2024-03-15", String(rows[0]["date"]))
}

func TestRedisCacheExpiry(t *testing.T) {
	p := &countingProvider{inner: seededMemory()}
	c, mr := newTestRedisCache(t, p, time.Minute)

	_, _, err := c.Get(context.Background(), "sales")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, _, err = c.Get(context.Background(), "sales")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.fetches.Load(), "expired key forces a refetch")
}

func TestRedisCacheInvalidate(t *testing.T) {
	p := &countingProvider{inner: seededMemory()}
	c, mr := newTestRedisCache(t, p, 5*time.Minute)

	_, _, err := c.Get(context.Background(), "sales")
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(context.Background(), "sales"))
	assert.False(t, mr.Exists("dataset:sales"))

	_, _, err = c.Get(context.Background(), "sales")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.fetches.Load())
}

func TestRedisCacheCorruptEntryRefetches(t *testing.T) {
	p := &countingProvider{inner: seededMemory()}
	c, mr := newTestRedisCache(t, p, 5*time.Minute)

	require.NoError(t, mr.Set("dataset:sales", "not json"))

	rows, _, err := c.Get(context.Background(), "sales")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), p.fetches.Load())
}

func TestRedisCacheProviderErrorPropagates(t *testing.T) {
	c, _ := newTestRedisCache(t, NewMemory(), 5*time.Minute)

	_, _, err := c.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRedisCacheDownSurfacesConnectionError(t *testing.T) {
	p := seededMemory()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	c := NewRedisCache(client, p, time.Minute)

	mr.Close()

	_, _, err := c.Get(context.Background(), "sales")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnection))
}
