// Package cache provides the process-local TTL cache the source
// orchestrator keeps fetched responses and probe results in.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value      any
	insertedAt time.Time
}

// TTLCache is an explicit cache object with {value, insertedAt} entries and
// an injectable clock. Entries older than the TTL read as absent; stale
// entries are overwritten on the next Set.
type TTLCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

func New(ttl time.Duration) *TTLCache {
	return &TTLCache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// WithClock replaces the cache's clock. Tests use this to age entries
// without sleeping.
func (c *TTLCache) WithClock(now func() time.Time) *TTLCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *TTLCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, insertedAt: c.now()}
}

func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Purge drops every entry. Used after a bulk clear of a survey's responses.
func (c *TTLCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}
