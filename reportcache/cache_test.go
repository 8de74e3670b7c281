package reportcache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := Open(filepath.Join(t.TempDir(), "responses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

type payload struct {
	Value string `json:"value"`
}

func TestCache_SetGet(t *testing.T) {
	cache := openTestCache(t)

	require.NoError(t, cache.Set("k1", payload{Value: "hello"}, time.Minute))

	var got payload
	require.True(t, cache.Get("k1", &got))
	assert.Equal(t, "hello", got.Value)
}

func TestCache_MissOnAbsentKey(t *testing.T) {
	cache := openTestCache(t)

	var got payload
	assert.False(t, cache.Get("nope", &got))
}

func TestCache_ExpiredEntryIsMiss(t *testing.T) {
	cache := openTestCache(t)

	base := time.Now()
	cache.now = func() time.Time { return base }
	require.NoError(t, cache.Set("k1", payload{Value: "stale"}, time.Minute))

	cache.now = func() time.Time { return base.Add(2 * time.Minute) }
	var got payload
	assert.False(t, cache.Get("k1", &got))

	// The expired entry was evicted on read.
	stats, err := cache.Stat()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}

func TestCache_NonPositiveTTLUsesDefault(t *testing.T) {
	cache := openTestCache(t)

	base := time.Now()
	cache.now = func() time.Time { return base }
	require.NoError(t, cache.Set("k1", payload{Value: "v"}, 0))

	cache.now = func() time.Time { return base.Add(DefaultTTL - time.Second) }
	var got payload
	assert.True(t, cache.Get("k1", &got))

	cache.now = func() time.Time { return base.Add(DefaultTTL + time.Second) }
	assert.False(t, cache.Get("k1", &got))
}

func TestCache_CorruptEntryIsMissAndDeleted(t *testing.T) {
	cache := openTestCache(t)

	err := cache.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte("bad"), []byte("{not json"))
	})
	require.NoError(t, err)

	var got payload
	assert.False(t, cache.Get("bad", &got))

	stats, err := cache.Stat()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}

func TestCache_Purge(t *testing.T) {
	cache := openTestCache(t)

	require.NoError(t, cache.Set("a", payload{Value: "1"}, time.Minute))
	require.NoError(t, cache.Set("b", payload{Value: "2"}, time.Minute))
	require.NoError(t, cache.Purge())

	stats, err := cache.Stat()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)

	// The bucket survives a purge.
	require.NoError(t, cache.Set("c", payload{Value: "3"}, time.Minute))
	var got payload
	assert.True(t, cache.Get("c", &got))
}

func TestCache_StatCountsExpired(t *testing.T) {
	cache := openTestCache(t)

	base := time.Now()
	cache.now = func() time.Time { return base }
	require.NoError(t, cache.Set("live", payload{Value: "1"}, time.Hour))
	require.NoError(t, cache.Set("stale", payload{Value: "2"}, time.Minute))

	cache.now = func() time.Time { return base.Add(30 * time.Minute) }
	stats, err := cache.Stat()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 1, stats.Expired)
}
