package build

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_LRU(t *testing.T) {
	t.Run("evicts least recently used", func(t *testing.T) {
		cache := NewMemoryCache(30, time.Hour)
		for i := 1; i <= 5; i++ {
			cache.Set(fmt.Sprintf("key%d", i), []byte(fmt.Sprintf("value%d", i)), "")
		}
		for i := 1; i <= 5; i++ {
			_, _, found := cache.Get(fmt.Sprintf("key%d", i))
			assert.True(t, found, "key%d should be present", i)
		}

		cache.Set("key6", []byte("value6"), "")

		_, _, found := cache.Get("key1")
		assert.False(t, found, "key1 should be evicted as LRU")
		for i := 2; i <= 6; i++ {
			_, _, found := cache.Get(fmt.Sprintf("key%d", i))
			assert.True(t, found, "key%d should still be present", i)
		}
		assert.Equal(t, int64(1), cache.Stats().Evictions)
	})

	t.Run("access refreshes recency", func(t *testing.T) {
		cache := NewMemoryCache(24, time.Hour)
		for i := 1; i <= 4; i++ {
			cache.Set(fmt.Sprintf("key%d", i), []byte(fmt.Sprintf("value%d", i)), "")
		}
		cache.Get("key1")
		cache.Set("key5", []byte("value5"), "")
		assert.Equal(t, "key5", cache.head.next.key)
		assert.Equal(t, "key1", cache.head.next.next.key)

		_, _, found := cache.Get("key1")
		assert.True(t, found)
		assert.Equal(t, "key1", cache.head.next.key)
		_, _, found = cache.Get("key2")
		assert.False(t, found)
	})

	t.Run("oversized values are skipped", func(t *testing.T) {
		cache := NewMemoryCache(4, time.Hour)
		cache.Set("big", []byte("too large"), "")
		_, _, found := cache.Get("big")
		assert.False(t, found)
		assert.Equal(t, 0, cache.Stats().Entries)
	})

	t.Run("replacing a key keeps size accurate", func(t *testing.T) {
		cache := NewMemoryCache(100, time.Hour)
		cache.Set("k", []byte("12345"), "a")
		cache.Set("k", []byte("12"), "b")

		value, sum, found := cache.Get("k")
		require.True(t, found)
		assert.Equal(t, "12", string(value))
		assert.Equal(t, "b", sum)
		assert.Equal(t, int64(2), cache.Stats().Size)
	})
}

func TestMemoryCache_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(100, time.Minute)
	cache.now = func() time.Time { return now }

	cache.Set("k", []byte("v"), "")
	now = now.Add(30 * time.Second)
	_, _, found := cache.Get("k")
	assert.True(t, found)

	now = now.Add(time.Minute)
	_, _, found = cache.Get("k")
	assert.False(t, found, "entry should expire")
	assert.Equal(t, 0, cache.Stats().Entries)

	forever := NewMemoryCache(100, 0)
	forever.now = func() time.Time { return now }
	forever.Set("k", []byte("v"), "")
	now = now.Add(24 * time.Hour)
	_, _, found = forever.Get("k")
	assert.True(t, found)
}

func TestMemoryCache_ClearAndStats(t *testing.T) {
	cache := NewMemoryCache(100, time.Hour)
	cache.Set("a", []byte("1"), "")
	cache.Get("a")
	cache.Get("missing")

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 0.001)

	cache.Delete("a")
	assert.Equal(t, 0, cache.Stats().Entries)

	cache.Set("b", []byte("2"), "")
	cache.Clear()
	stats = cache.Stats()
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, int64(0), stats.Size)
	assert.Equal(t, int64(2), stats.Sets, "statistics survive Clear")
	assert.Equal(t, cache.tail, cache.head.next)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(1<<10, time.Hour)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d", (g*100+i)%50)
				cache.Set(key, []byte("value"), "")
				cache.Get(key)
			}
		}(g)
	}
	wg.Wait()

	stats := cache.Stats()
	assert.LessOrEqual(t, stats.Size, int64(1<<10))
	assert.Equal(t, int64(800), stats.Sets)
}
