// Package scripts resolves the script resource that renders a component and
// memoizes the resolved paths per request identity.
package scripts

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Cache memoizes resolved script paths. Entries never expire on their own;
// InvalidateAll is the only eviction. Every InvalidateAll starts a new
// generation, and a Put carrying an earlier generation is dropped, so a
// resolution that began before a purge cannot outlive it.
type Cache interface {
	Get(key string) (string, bool)
	Generation() uint64
	Put(generation uint64, key, path string)
	InvalidateAll()
	Stats() Stats
}

// Stats tracks cache performance.
type Stats struct {
	Entries int     `json:"entries" yaml:"entries"`
	Hits    int64   `json:"hits" yaml:"hits"`
	Misses  int64   `json:"misses" yaml:"misses"`
	HitRate float64 `json:"hit_rate" yaml:"hit_rate"`
}

// Key builds the composite cache key of a resolution.
func Key(identity, frameworkPath, componentTypePath, script string) string {
	return strings.Join([]string{identity, frameworkPath, componentTypePath, script}, "|")
}

// MapCache is a Cache over a map guarded by a read/write mutex.
type MapCache struct {
	mutex      sync.RWMutex
	entries    map[string]string
	generation uint64
	hits       int64
	misses     int64
}

var _ Cache = (*MapCache)(nil)

// NewMapCache creates an empty cache.
func NewMapCache() *MapCache {
	return &MapCache{entries: make(map[string]string)}
}

// Get returns the path stored under key.
func (c *MapCache) Get(key string) (string, bool) {
	c.mutex.RLock()
	p, ok := c.entries[key]
	c.mutex.RUnlock()
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return "", false
	}
	atomic.AddInt64(&c.hits, 1)
	return p, true
}

// Generation returns the current generation.
func (c *MapCache) Generation() uint64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.generation
}

// Put stores path under key, overwriting any previous value. The write is
// dropped when generation is not the current one.
func (c *MapCache) Put(generation uint64, key, path string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if generation != c.generation {
		return
	}
	c.entries[key] = path
}

// InvalidateAll drops every entry and starts a new generation. Statistics
// are kept.
func (c *MapCache) InvalidateAll() {
	c.mutex.Lock()
	c.entries = make(map[string]string)
	c.generation++
	c.mutex.Unlock()
}

// Stats returns current cache statistics.
func (c *MapCache) Stats() Stats {
	c.mutex.RLock()
	entries := len(c.entries)
	c.mutex.RUnlock()
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{Entries: entries, Hits: hits, Misses: misses, HitRate: rate}
}
