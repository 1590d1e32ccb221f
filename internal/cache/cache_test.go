package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache[V any](t *testing.T, ttl time.Duration, maxSize int) (*Cache[V], *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)}
	c := New[V](ttl, maxSize)
	c.now = clock.Now
	t.Cleanup(c.Stop)
	return c, clock
}

func TestCacheConstructor(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		maxSize int
	}{
		{"standard", time.Hour, 8},
		{"minimal", time.Second, 1},
		{"no expiry", 0, 10},
		{"disabled", time.Hour, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCache[string](t, tt.ttl, tt.maxSize)

			stats := c.Stats()
			assert.Equal(t, tt.maxSize, stats.MaxSize)
			assert.Equal(t, tt.ttl, stats.TTL)
			assert.Zero(t, stats.Hits)
			assert.Zero(t, stats.Misses)
			assert.Zero(t, stats.HitRatio)
		})
	}
}

func TestCacheLifecycle(t *testing.T) {
	c, clock := newTestCache[int](t, time.Hour, 10)

	_, ok := c.Get("rows")
	assert.False(t, ok)

	c.Set("rows", 42)
	got, ok := c.Get("rows")
	require.True(t, ok)
	assert.Equal(t, 42, got)

	clock.Advance(59 * time.Minute)
	_, ok = c.Get("rows")
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	_, ok = c.Get("rows")
	assert.False(t, ok, "entry expired")
	assert.Zero(t, c.Len(), "expired entry is dropped on read")

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRatio, 1e-9)
}

func TestCacheNoExpiry(t *testing.T) {
	c, clock := newTestCache[string](t, 0, 4)
	c.Set("k", "v")

	clock.Advance(24 * 365 * time.Hour)

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestCacheDisabled(t *testing.T) {
	c, _ := newTestCache[string](t, time.Hour, 0)
	c.Set("k", "v")

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCacheEvictsOldest(t *testing.T) {
	c, clock := newTestCache[int](t, time.Hour, 2)

	c.Set("a", 1)
	clock.Advance(time.Second)
	c.Set("b", 2)
	clock.Advance(time.Second)
	c.Set("a", 10)
	assert.Equal(t, 2, c.Len(), "replacing a key does not evict")

	clock.Advance(time.Second)
	c.Set("c", 3)

	_, okB := c.Get("b")
	_, okA := c.Get("a")
	_, okC := c.Get("c")
	assert.False(t, okB)
	assert.True(t, okA)
	assert.True(t, okC)
}

func TestCacheInvalidation(t *testing.T) {
	c, _ := newTestCache[string](t, time.Hour, 10)
	c.Set("local:/data/a.parquet|macro", "x")
	c.Set("local:/data/a.parquet|yoy", "y")
	c.Set("url:http://host/b.csv|macro", "z")

	assert.Equal(t, 2, c.InvalidatePrefix("local:/data/a.parquet|"))
	assert.Equal(t, 1, c.Len())

	c.Invalidate("url:http://host/b.csv|macro")
	assert.Zero(t, c.Len())

	c.Set("k", "v")
	c.Purge()
	assert.Zero(t, c.Len())
}

func TestCacheSweep(t *testing.T) {
	c, clock := newTestCache[int](t, time.Minute, 10)
	c.Set("old", 1)
	clock.Advance(2 * time.Minute)
	c.Set("new", 2)

	c.sweep()

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("new")
	assert.True(t, ok)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c, _ := newTestCache[int](t, time.Hour, 64)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%8)
			for j := 0; j < 100; j++ {
				c.Set(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	stats := c.Stats()
	assert.Equal(t, 8, stats.Entries)
	assert.Equal(t, int64(1600), stats.Hits+stats.Misses)
}

func TestCacheStopIsIdempotent(t *testing.T) {
	c := New[int](time.Hour, 1)
	c.Stop()
	assert.NotPanics(t, c.Stop)
}
