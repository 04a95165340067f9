package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	t.Run("order independent", func(t *testing.T) {
		a := NormalizeKey([]string{"timeout", "error", "wallet"})
		b := NormalizeKey([]string{"wallet", "timeout", "error"})
		assert.Equal(t, a, b)
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t,
			NormalizeKey([]string{"Error", "TIMEOUT"}),
			NormalizeKey([]string{"timeout", "error"}))
	})
}

func TestCacheGetSet(t *testing.T) {
	cache := NewCache(time.Minute, 10)
	results := issues(1, 2)

	cache.Set([]string{"error", "timeout"}, results)

	got, ok := cache.Get([]string{"timeout", "error"})
	require.True(t, ok, "permuted term set should hit the same entry")
	assert.Equal(t, results, got)
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := NewCache(time.Minute, 10)

	now := time.Now()
	cache.now = func() time.Time { return now }
	cache.Set([]string{"error"}, issues(1))

	// At exactly the TTL the entry is treated as absent and removed.
	cache.now = func() time.Time { return now.Add(time.Minute) }
	_, ok := cache.Get([]string{"error"})
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Size(), "expired entry is deleted on read")
}

func TestCacheEvictsOldest(t *testing.T) {
	cache := NewCache(time.Minute, 3)

	now := time.Now()
	clock := func(offset time.Duration) func() time.Time {
		return func() time.Time { return now.Add(offset) }
	}

	cache.now = clock(0)
	cache.Set([]string{"first"}, issues(1))
	cache.now = clock(time.Second)
	cache.Set([]string{"second"}, issues(2))
	cache.now = clock(2 * time.Second)
	cache.Set([]string{"third"}, issues(3))

	// Inserting a fourth distinct key evicts exactly the oldest entry.
	cache.now = clock(3 * time.Second)
	cache.Set([]string{"fourth"}, issues(4))

	assert.Equal(t, 3, cache.Size())
	_, ok := cache.Get([]string{"first"})
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = cache.Get([]string{"second"})
	assert.True(t, ok)
}

func TestCacheResetRefreshesTimestamp(t *testing.T) {
	cache := NewCache(time.Minute, 2)

	now := time.Now()
	cache.now = func() time.Time { return now }
	cache.Set([]string{"first"}, issues(1))
	cache.now = func() time.Time { return now.Add(time.Second) }
	cache.Set([]string{"second"}, issues(2))

	// Re-setting an existing key refreshes its age without eviction.
	cache.now = func() time.Time { return now.Add(2 * time.Second) }
	cache.Set([]string{"first"}, issues(10))

	cache.now = func() time.Time { return now.Add(3 * time.Second) }
	cache.Set([]string{"third"}, issues(3))

	_, ok := cache.Get([]string{"second"})
	assert.False(t, ok, "second is now the oldest and should be evicted")
	got, ok := cache.Get([]string{"first"})
	assert.True(t, ok)
	assert.Equal(t, issues(10), got)
}

func TestCacheClearAndSize(t *testing.T) {
	cache := NewCache(time.Minute, 10)
	cache.Set([]string{"a1"}, issues(1))
	cache.Set([]string{"b2"}, issues(2))
	assert.Equal(t, 2, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}
