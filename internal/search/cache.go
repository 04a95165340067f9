package search

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/midl-xyz/triage/pkg/models"
)

// Cache is a TTL-bounded, capacity-bounded store of search results keyed by
// normalized term sets. It is a bounded map, not an LRU: reads never refresh
// an entry's age, and eviction removes the globally oldest entry by insert
// time. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

type cacheEntry struct {
	results   []models.Issue
	timestamp time.Time
}

// NewCache creates a cache with the given TTL and capacity. Non-positive
// values fall back to five minutes and one hundred entries.
func NewCache(ttl time.Duration, capacity int) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if capacity <= 0 {
		capacity = 100
	}
	return &Cache{
		entries:  make(map[string]cacheEntry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// NormalizeKey maps any permutation of the same term set to the same key:
// lowercase each term, sort, join with a separator.
func NormalizeKey(terms []string) string {
	normalized := make([]string, len(terms))
	for i, t := range terms {
		normalized[i] = strings.ToLower(t)
	}
	sort.Strings(normalized)
	return strings.Join(normalized, "|")
}

// Get returns the cached results for a term set. An entry at or past its TTL
// is deleted on read and reported as a miss.
func (c *Cache) Get(terms []string) ([]models.Issue, bool) {
	key := NormalizeKey(terms)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.timestamp) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.results, true
}

// Set stores results for a term set. When at capacity and the key is new,
// the single oldest entry is evicted first. Re-setting an existing key
// refreshes its timestamp.
func (c *Cache) Set(terms []string, results []models.Issue) {
	key := NormalizeKey(terms)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		var oldestKey string
		var oldestTime time.Time
		first := true
		for k, v := range c.entries {
			if first || v.timestamp.Before(oldestTime) {
				oldestKey = k
				oldestTime = v.timestamp
				first = false
			}
		}
		delete(c.entries, oldestKey)
	}

	c.entries[key] = cacheEntry{results: results, timestamp: c.now()}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Size returns the number of live entries, expired or not.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
