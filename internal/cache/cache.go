// Adpulse - Marketing Metrics Aggregation Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adpulse

package cache

import (
	"fmt"
	"iter"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/adpulse/internal/metrics"
)

// DefaultName is the metrics label used when no name is configured.
const DefaultName = "dashboard"

// Entry represents a cached item with expiration
type Entry struct {
	Value     any
	ExpiresAt time.Time
}

// expired reports whether the entry is past its expiry at now.
func (e Entry) expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Cache is a process-local key-value store with a per-entry expiry.
//
// Expired entries are logically absent: Get never returns them and removes
// them as a side effect. They remain physically stored, and visible to Keys
// and Size, until read or swept by Cleanup.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry

	clock clockwork.Clock
	name  string

	hits        atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	lastCleanup atomic.Int64 // unix nanos
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Size        int
	LastCleanup time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the clock used for expiry decisions.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// WithName sets the cache_type label used for Prometheus metrics.
func WithName(name string) Option {
	return func(c *Cache) {
		c.name = name
	}
}

// New creates an empty cache.
//
// Unlike a self-sweeping cache, New starts no goroutines: expired entries
// are reclaimed on read, and Cleanup is expected to be driven by an external
// ticker (see the supervisor's cache sweeper).
//
// Parameters:
//   - opts: optional clock and metrics name
//
// Example:
//
//	c := cache.New(cache.WithClock(clockwork.NewFakeClock()))
//	c.Set("metrics_7d_default", view, 15*time.Minute)
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		clock:   clockwork.NewRealClock(),
		name:    DefaultName,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastCleanup.Store(c.clock.Now().UnixNano())
	return c
}

// Set stores value under key, overwriting any existing entry.
//
// Parameters:
//   - key: opaque cache key
//   - value: any value; stored as-is, never copied
//   - ttl: lifetime measured from now; a non-positive ttl stores an entry
//     that is already expired on the next read
//
// Thread Safety: Acquires the write lock.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = Entry{
		Value:     value,
		ExpiresAt: c.clock.Now().Add(ttl),
	}
	size := len(c.entries)
	c.mu.Unlock()

	metrics.CacheSize.WithLabelValues(c.name).Set(float64(size))
}

// Get retrieves a live value.
//
// Returns:
//   - (value, true) if key is present and unexpired (counted as a hit)
//   - (nil, false) if key is absent (counted as a miss)
//   - (nil, false) if key is expired; the entry is evicted (miss + eviction)
//
// Thread Safety: Uses RLock for the lookup, upgrades to Lock for eviction.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if entry.expired(c.clock.Now()) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have
		// replaced the entry with a fresh one.
		if current, ok := c.entries[key]; ok && current.expired(c.clock.Now()) {
			delete(c.entries, key)
			c.recordEviction(1)
		}
		size := len(c.entries)
		c.mu.Unlock()

		metrics.CacheSize.WithLabelValues(c.name).Set(float64(size))
		c.recordMiss()
		return nil, false
	}

	c.recordHit()
	return entry.Value, true
}

// Delete removes key. No-op if absent.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	size := len(c.entries)
	c.mu.Unlock()

	metrics.CacheSize.WithLabelValues(c.name).Set(float64(size))
}

// Clear removes all entries. Hit and miss counters are not reset.
func (c *Cache) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()

	metrics.CacheSize.WithLabelValues(c.name).Set(0)
}

// Keys returns a lazy enumeration of all stored keys, including expired
// entries not yet evicted. Each range over the sequence takes a fresh
// snapshot, so the sequence is restartable and callers may Delete while
// iterating.
//
// Example:
//
//	for key := range c.Keys() {
//	    if strings.Contains(key, tenant) {
//	        c.Delete(key)
//	    }
//	}
func (c *Cache) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		c.mu.RLock()
		keys := slices.Collect(maps.Keys(c.entries))
		c.mu.RUnlock()

		for _, key := range keys {
			if !yield(key) {
				return
			}
		}
	}
}

// ClearByPattern deletes every stored key matching a wildcard pattern and
// returns the number of keys removed.
//
// '*' matches any (possibly empty) substring. Every other character is
// literal, including regular expression metacharacters, and the pattern
// must match the whole key:
//
//	c.ClearByPattern("*bigcommerce*")   // any key containing "bigcommerce"
//	c.ClearByPattern("metrics_7d_*")    // prefix match
//	c.ClearByPattern("charts_(beta)*")  // parentheses are literal
func (c *Cache) ClearByPattern(pattern string) int {
	re := compilePattern(pattern)

	c.mu.Lock()
	removed := 0
	for key := range c.entries {
		if re.MatchString(key) {
			delete(c.entries, key)
			removed++
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	metrics.CacheSize.WithLabelValues(c.name).Set(float64(size))
	return removed
}

// compilePattern translates a wildcard pattern into an anchored regexp with
// all literal segments escaped.
func compilePattern(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	// Quoted segments joined by ".*" always form a valid expression.
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

// Size returns the number of stored entries, including expired entries
// that have not been evicted yet.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// HitRate returns hits/(hits+misses)*100 formatted with two decimals, or
// "0" when no lookups have been made.
func (c *Cache) HitRate() string {
	hits := c.hits.Load()
	total := hits + c.misses.Load()
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.2f", float64(hits)/float64(total)*100)
}

// Cleanup evicts every expired entry and returns the number evicted.
//
// Reads already hide expired data, so Cleanup only bounds memory held by
// entries nobody reads after expiry.
func (c *Cache) Cleanup() int {
	now := c.clock.Now()

	c.mu.Lock()
	evicted := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			evicted++
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.recordEviction(evicted)
	c.lastCleanup.Store(now.UnixNano())
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(size))
	return evicted
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Size:        c.Size(),
		LastCleanup: time.Unix(0, c.lastCleanup.Load()),
	}
}

func (c *Cache) recordHit() {
	c.hits.Add(1)
	metrics.CacheHits.WithLabelValues(c.name).Inc()
}

func (c *Cache) recordMiss() {
	c.misses.Add(1)
	metrics.CacheMisses.WithLabelValues(c.name).Inc()
}

func (c *Cache) recordEviction(n int) {
	if n == 0 {
		return
	}
	c.evictions.Add(int64(n))
	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
}
