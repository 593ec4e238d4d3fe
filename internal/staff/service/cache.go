package service

import (
	"salonbook/pkg/model"
	"sync"
	"time"
)

type cacheEntry struct {
	staff   *model.Staff // nil records a known miss
	expires time.Time
}

// staffCache holds recent lookups, including misses. Every write to the repository
// invalidates the affected id, so the TTL only bounds staleness from other replicas.
// Expired entries are dropped on read and swept at most once per TTL on write, so the map
// holds roughly two TTLs worth of distinct ids.
type staffCache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	now       func() time.Time
	entries   map[string]cacheEntry
	gen       uint64
	lastSweep time.Time
}

func newStaffCache(ttl time.Duration) *staffCache {
	return &staffCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *staffCache) get(id string) (*model.Staff, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := c.now()
	if !now.Before(e.expires) {
		c.mu.Lock()
		if cur, ok := c.entries[id]; ok && !now.Before(cur.expires) {
			delete(c.entries, id)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.staff, true
}

// generation must be read before loading from the repository; put drops the value
// if any invalidation happened in between.
func (c *staffCache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func (c *staffCache) put(id string, s *model.Staff, gen uint64) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	now := c.now()
	if now.Sub(c.lastSweep) >= c.ttl {
		c.sweepLocked(now)
	}
	c.entries[id] = cacheEntry{staff: s, expires: now.Add(c.ttl)}
}

func (c *staffCache) sweepLocked(now time.Time) {
	for id, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, id)
		}
	}
	c.lastSweep = now
}

func (c *staffCache) invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	delete(c.entries, id)
}

func (c *staffCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
