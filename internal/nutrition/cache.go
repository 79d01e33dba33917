package nutrition

import (
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a verified lookup stays usable.
const DefaultCacheTTL = 7 * 24 * time.Hour

type cacheEntry struct {
	record   Record
	storedAt time.Time
}

// Cache is a process-wide TTL cache for lookup results, keyed by normalized
// food name plus source tag. Constructed once at startup and injected into
// the Service. A redundant remote fetch caused by two concurrent misses on
// the same key is acceptable; the mutex only protects map integrity.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache with the given TTL; ttl <= 0 uses DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(foodName, source string) string {
	return strings.ToLower(strings.TrimSpace(foodName)) + "|" + source
}

// Get returns a cached record if present and not expired. TTL is checked on
// read; stale entries are treated as misses.
func (c *Cache) Get(foodName, source string) (Record, bool) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(foodName, source)]
	c.mu.RUnlock()
	if !ok || c.now().Sub(entry.storedAt) >= c.ttl {
		return Record{}, false
	}
	return entry.record, true
}

// Put stores a record under the normalized key.
func (c *Cache) Put(foodName, source string, record Record) {
	c.mu.Lock()
	c.entries[cacheKey(foodName, source)] = cacheEntry{record: record, storedAt: c.now()}
	c.mu.Unlock()
}

// Len reports the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
