package build

import (
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCache is a size-bounded LRU with TTL that fronts the persisted
// compiled-output cache.
type MemoryCache struct {
	entries     map[string]*memoryEntry
	mutex       sync.Mutex
	maxSize     int64
	currentSize int64
	ttl         time.Duration
	now         func() time.Time
	// LRU list with sentinel head and tail
	head *memoryEntry
	tail *memoryEntry
	// Statistics tracking (atomic for thread safety)
	hits      int64
	misses    int64
	sets      int64
	evictions int64
}

type memoryEntry struct {
	key         string
	value       []byte
	fingerprint string
	createdAt   time.Time
	size        int64
	prev        *memoryEntry
	next        *memoryEntry
}

// MemoryStats is a snapshot of MemoryCache statistics.
type MemoryStats struct {
	Entries   int     `json:"entries" yaml:"entries"`
	Size      int64   `json:"size" yaml:"size"`
	MaxSize   int64   `json:"max_size" yaml:"max_size"`
	Hits      int64   `json:"hits" yaml:"hits"`
	Misses    int64   `json:"misses" yaml:"misses"`
	Sets      int64   `json:"sets" yaml:"sets"`
	Evictions int64   `json:"evictions" yaml:"evictions"`
	HitRate   float64 `json:"hit_rate" yaml:"hit_rate"`
}

// NewMemoryCache creates a cache holding at most maxSize bytes of values.
// A non-positive ttl disables expiry.
func NewMemoryCache(maxSize int64, ttl time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]*memoryEntry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
	c.head = &memoryEntry{}
	c.tail = &memoryEntry{}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get retrieves a value and its fingerprint.
func (c *MemoryCache) Get(key string) ([]byte, string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, "", false
	}

	if c.ttl > 0 && c.now().Sub(entry.createdAt) > c.ttl {
		c.remove(entry)
		atomic.AddInt64(&c.misses, 1)
		return nil, "", false
	}

	c.moveToFront(entry)
	atomic.AddInt64(&c.hits, 1)
	return entry.value, entry.fingerprint, true
}

// Set stores a value. Values larger than the cache are not stored.
func (c *MemoryCache) Set(key string, value []byte, fingerprint string) {
	size := int64(len(value))
	if size > c.maxSize {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if existing, exists := c.entries[key]; exists {
		c.remove(existing)
	}
	c.evictIfNeeded(size)

	entry := &memoryEntry{
		key:         key,
		value:       value,
		fingerprint: fingerprint,
		createdAt:   c.now(),
		size:        size,
	}
	c.entries[key] = entry
	c.currentSize += size
	c.addToFront(entry)
	atomic.AddInt64(&c.sets, 1)
}

// Delete removes key.
func (c *MemoryCache) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if entry, exists := c.entries[key]; exists {
		c.remove(entry)
	}
}

// Clear drops every entry. Statistics are kept.
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]*memoryEntry)
	c.currentSize = 0
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Stats returns a statistics snapshot.
func (c *MemoryCache) Stats() MemoryStats {
	c.mutex.Lock()
	entries, size := len(c.entries), c.currentSize
	c.mutex.Unlock()

	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return MemoryStats{
		Entries:   entries,
		Size:      size,
		MaxSize:   c.maxSize,
		Hits:      hits,
		Misses:    misses,
		Sets:      atomic.LoadInt64(&c.sets),
		Evictions: atomic.LoadInt64(&c.evictions),
		HitRate:   rate,
	}
}

// evictIfNeeded evicts least recently used entries until newSize fits
func (c *MemoryCache) evictIfNeeded(newSize int64) {
	for c.currentSize+newSize > c.maxSize && c.tail.prev != c.head {
		c.remove(c.tail.prev)
		atomic.AddInt64(&c.evictions, 1)
	}
}

func (c *MemoryCache) remove(entry *memoryEntry) {
	c.unlink(entry)
	delete(c.entries, entry.key)
	c.currentSize -= entry.size
}

// LRU doubly-linked list operations
func (c *MemoryCache) addToFront(entry *memoryEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *MemoryCache) unlink(entry *memoryEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
}

func (c *MemoryCache) moveToFront(entry *memoryEntry) {
	c.unlink(entry)
	c.addToFront(entry)
}
