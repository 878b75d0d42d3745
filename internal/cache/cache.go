// Package cache provides the in-memory TTL store for completed check
// results. Expired entries are dropped lazily on read and in bulk by Sweep.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
)

// Cache maps check keys to results with a fixed time-to-live.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	clock   accessibility.Clock
}

type entry struct {
	result    accessibility.CheckResult
	expiresAt time.Time
}

// New builds a cache. TTL must be positive.
func New(ttl time.Duration, clock accessibility.Clock) (*Cache, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	if clock == nil {
		return nil, fmt.Errorf("cache clock is required")
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		clock:   clock,
	}, nil
}

// Get returns the cached result for key if present and unexpired. An
// expired entry is removed on the way out.
func (c *Cache) Get(key string) (accessibility.CheckResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return accessibility.CheckResult{}, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		return accessibility.CheckResult{}, false
	}
	return e.result, true
}

// Set stores a result under key, resetting its expiry.
func (c *Cache) Set(key string, result accessibility.CheckResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		result:    result,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Sweep removes every expired entry and reports how many were dropped.
// Main runs this from a janitor goroutine so abandoned keys do not pin
// results forever.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
