package cache

import (
	"sync"
	"time"
)

// Cache is a process-local key/value store with per-entry expiration.
// It is injected into services instead of living as package-global
// state so tests can substitute a fake clock or their own fake.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
}

type entry struct {
	value     any
	expiresAt time.Time // zero => no TTL
}

// Local is an in-memory Cache. Entries are dropped lazily: an expired
// entry is removed the next time it is looked up.
type Local struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewLocal() *Local {
	return NewLocalWithClock(time.Now)
}

// NewLocalWithClock builds a Local that reads time from now.
func NewLocalWithClock(now func() time.Time) *Local {
	return &Local{
		entries: make(map[string]entry),
		now:     now,
	}
}

func (c *Local) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	return e.value, true
}

func (c *Local) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e
}

func (c *Local) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}
