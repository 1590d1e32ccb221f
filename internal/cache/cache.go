package cache

import (
	"strings"
	"sync"
	"time"
)

// Entry is a cached value and its bookkeeping.
type Entry[V any] struct {
	Value     V
	CachedAt  time.Time
	ExpiresAt time.Time
	HitCount  int
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries  int           `json:"entries"`
	MaxSize  int           `json:"max_size"`
	Hits     int64         `json:"hit_count"`
	Misses   int64         `json:"miss_count"`
	HitRatio float64       `json:"hit_ratio"`
	TTL      time.Duration `json:"ttl"`
}

// Cache is a size-bounded map with per-entry expiry. When full, the oldest
// entry is evicted. A TTL of zero or less keeps entries until evicted or
// invalidated; a max size of zero or less disables storing.
type Cache[V any] struct {
	entries  map[string]Entry[V]
	mutex    sync.RWMutex
	ttl      time.Duration
	maxSize  int
	hits     int64
	misses   int64
	now      func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once
}

// cleanupInterval bounds how often expired entries are swept.
const cleanupInterval = 5 * time.Minute

// New creates a cache and starts its background sweeper. Call Stop to end it.
func New[V any](ttl time.Duration, maxSize int) *Cache[V] {
	c := &Cache[V]{
		entries:  make(map[string]Entry[V]),
		ttl:      ttl,
		maxSize:  maxSize,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	interval := cleanupInterval
	if ttl > 0 && ttl < interval {
		interval = ttl
	}
	go c.cleanup(interval)

	return c
}

// Get returns the value for key when present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists || c.expired(entry) {
		if exists {
			delete(c.entries, key)
		}
		c.misses++
		var zero V
		return zero, false
	}

	entry.HitCount++
	c.entries[key] = entry
	c.hits++

	return entry.Value, true
}

// Set stores value under key, evicting the oldest entry when full.
func (c *Cache[V]) Set(key string, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.maxSize <= 0 {
		return
	}

	if _, replacing := c.entries[key]; !replacing && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	now := c.now()
	entry := Entry[V]{Value: value, CachedAt: now}
	if c.ttl > 0 {
		entry.ExpiresAt = now.Add(c.ttl)
	}
	c.entries[key] = entry
}

// Invalidate removes key.
func (c *Cache[V]) Invalidate(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, key)
}

// InvalidatePrefix removes every key starting with prefix and returns how
// many were removed.
func (c *Cache[V]) InvalidatePrefix(prefix string) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Purge removes every entry. Counters are kept.
func (c *Cache[V]) Purge() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]Entry[V])
}

// Len returns the number of stored entries, expired ones included until
// they are swept.
func (c *Cache[V]) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the counters.
func (c *Cache[V]) Stats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	total := c.hits + c.misses
	ratio := float64(0)
	if total > 0 {
		ratio = float64(c.hits) / float64(total)
	}

	return Stats{
		Entries:  len(c.entries),
		MaxSize:  c.maxSize,
		Hits:     c.hits,
		Misses:   c.misses,
		HitRatio: ratio,
		TTL:      c.ttl,
	}
}

// Stop ends the background sweeper. It is safe to call more than once.
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *Cache[V]) expired(entry Entry[V]) bool {
	return !entry.ExpiresAt.IsZero() && c.now().After(entry.ExpiresAt)
}

func (c *Cache[V]) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.CachedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.CachedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache[V]) sweep() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for key, entry := range c.entries {
		if c.expired(entry) {
			delete(c.entries, key)
		}
	}
}

func (c *Cache[V]) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopChan:
			return
		}
	}
}
