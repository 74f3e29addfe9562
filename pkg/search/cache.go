package search

import (
	"container/list"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/flatnav/flatnav-go/pkg/flatnav"
)

// CacheKey represents a unique key for caching query results
type CacheKey string

// LRUCache implements a thread-safe LRU (Least Recently Used) cache
type LRUCache struct {
	capacity int
	ttl      time.Duration // Time-to-live for cache entries

	mu    sync.RWMutex
	cache map[CacheKey]*list.Element
	lru   *list.List

	// Statistics
	hits   int64
	misses int64
}

// cacheEntry represents a single entry in the cache
type cacheEntry struct {
	key       CacheKey
	value     interface{}
	expiresAt time.Time
}

// NewLRUCache creates a new LRU cache with the given capacity
// capacity: maximum number of items to store
// ttl: time-to-live for entries (0 = no expiration)
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	return &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		cache:    make(map[CacheKey]*list.Element, capacity),
		lru:      list.New(),
	}
}

// Get retrieves a value from the cache
// Returns (value, true) if found, (nil, false) if not found or expired
func (c *LRUCache) Get(key CacheKey) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.cache[key]
	if !exists {
		c.misses++
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)

	// Check if expired
	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		c.removeElement(elem)
		c.misses++
		return nil, false
	}

	// Move to front (most recently used)
	c.lru.MoveToFront(elem)
	c.hits++

	return entry.value, true
}

// Put adds or updates a value in the cache
func (c *LRUCache) Put(key CacheKey, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if key already exists
	if elem, exists := c.cache[key]; exists {
		// Update existing entry
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		if c.ttl > 0 {
			entry.expiresAt = time.Now().Add(c.ttl)
		}
		c.lru.MoveToFront(elem)
		return
	}

	// Create new entry
	entry := &cacheEntry{
		key:   key,
		value: value,
	}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}

	elem := c.lru.PushFront(entry)
	c.cache[key] = elem

	// Evict if over capacity
	if c.lru.Len() > c.capacity {
		c.evictOldest()
	}
}

// Invalidate removes a specific key from the cache
func (c *LRUCache) Invalidate(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.cache[key]; exists {
		c.removeElement(elem)
	}
}

// Clear removes all entries from the cache and resets the hit/miss counters
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[CacheKey]*list.Element, c.capacity)
	c.lru.Init()
	c.hits = 0
	c.misses = 0
}

// Size returns the current number of items in the cache
func (c *LRUCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lru.Len()
}

// Stats returns cache statistics
func (c *LRUCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return CacheStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Size:    c.lru.Len(),
		HitRate: hitRate,
	}
}

// evictOldest removes the least recently used item
func (c *LRUCache) evictOldest() {
	elem := c.lru.Back()
	if elem != nil {
		c.removeElement(elem)
	}
}

// removeElement removes an element from the cache
func (c *LRUCache) removeElement(elem *list.Element) {
	c.lru.Remove(elem)
	entry := elem.Value.(*cacheEntry)
	delete(c.cache, entry.key)
}

// CacheStats holds cache performance statistics
type CacheStats struct {
	Hits    int64
	Misses  int64
	Size    int
	HitRate float64
}

// GenerateQueryKey creates a cache key for a flatnav query: a digest of the
// query vector plus the (efSearch, topk) parameters, since the same vector
// searched with different beam width or topk is not the same cache entry.
func GenerateQueryKey(queryVector []float32, efSearch, topk int) CacheKey {
	h := sha256.New()

	for _, v := range queryVector {
		bits := math.Float32bits(v)
		binary.Write(h, binary.LittleEndian, bits)
	}
	binary.Write(h, binary.LittleEndian, int32(efSearch))
	binary.Write(h, binary.LittleEndian, int32(topk))

	return CacheKey(fmt.Sprintf("q:%x", h.Sum(nil)[:16]))
}

// QueryCache wraps an LRU cache specifically for flatnav.Result slices.
type QueryCache struct {
	cache *LRUCache
}

// NewQueryCache creates a new query result cache.
func NewQueryCache(capacity int, ttl time.Duration) *QueryCache {
	return &QueryCache{cache: NewLRUCache(capacity, ttl)}
}

// Get retrieves cached query results.
func (qc *QueryCache) Get(key CacheKey) ([]flatnav.Result, bool) {
	value, found := qc.cache.Get(key)
	if !found {
		return nil, false
	}

	results, ok := value.([]flatnav.Result)
	if !ok {
		qc.cache.Invalidate(key)
		return nil, false
	}
	return results, true
}

// Put stores query results in the cache.
func (qc *QueryCache) Put(key CacheKey, results []flatnav.Result) {
	qc.cache.Put(key, results)
}

// Clear removes all cached results.
func (qc *QueryCache) Clear() { qc.cache.Clear() }

// Stats returns cache statistics.
func (qc *QueryCache) Stats() CacheStats { return qc.cache.Stats() }

// Size returns the number of cached entries.
func (qc *QueryCache) Size() int { return qc.cache.Size() }

// CachedIndex wraps a flatnav.IndexEuclideanF32 with a query result cache in
// front of it: identical (vector, efSearch, topk) queries are served from
// the cache without re-running beam search.
type CachedIndex struct {
	index *flatnav.IndexEuclideanF32
	cache *QueryCache
}

// NewCachedIndex wraps index with a query cache of the given capacity/TTL.
func NewCachedIndex(index *flatnav.IndexEuclideanF32, cacheCapacity int, cacheTTL time.Duration) *CachedIndex {
	return &CachedIndex{
		index: index,
		cache: NewQueryCache(cacheCapacity, cacheTTL),
	}
}

// Query performs a cached nearest-neighbor query.
func (ci *CachedIndex) Query(vector []float32, efSearch, topk int) ([]flatnav.Result, error) {
	key := GenerateQueryKey(vector, efSearch, topk)

	if results, found := ci.cache.Get(key); found {
		return results, nil
	}

	results, err := ci.index.Query(vector, efSearch, topk)
	if err != nil {
		return nil, err
	}

	ci.cache.Put(key, results)
	return results, nil
}

// InvalidateCache clears the query cache and resets its hit/miss
// statistics (see LRUCache.Clear). Insert does not call this
// automatically: the caller must invalidate after mutating the underlying
// index, since the core itself does not know about the cache sitting in
// front of it.
func (ci *CachedIndex) InvalidateCache() { ci.cache.Clear() }

// CacheStats returns cache performance statistics.
func (ci *CachedIndex) CacheStats() CacheStats { return ci.cache.Stats() }
