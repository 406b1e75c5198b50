package cache

import (
	"sync"
	"time"
)

type entry struct {
	v   any
	exp time.Time
}

// TTLCache is a bounded in-memory cache with per-entry expiry.
type TTLCache struct {
	mu      sync.RWMutex
	m       map[string]entry
	maxSize int
}

func NewTTLCache(maxSize int) *TTLCache {
	if maxSize <= 0 {
		maxSize = 1024
	}
	return &TTLCache{m: make(map[string]entry), maxSize: maxSize}
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.v, true
}

func (c *TTLCache) Set(key string, v any, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.mu.Lock()
	if len(c.m) >= c.maxSize {
		c.evictExpiredOrOldest()
	}
	c.m[key] = entry{v: v, exp: exp}
	c.mu.Unlock()
}

// evictExpiredOrOldest drops expired entries first; if none expired, drops the
// entry closest to expiry. Caller holds the lock.
func (c *TTLCache) evictExpiredOrOldest() {
	now := time.Now()
	var oldestKey string
	var oldestExp time.Time
	for k, e := range c.m {
		if !e.exp.IsZero() && now.After(e.exp) {
			delete(c.m, k)
			return
		}
		if oldestKey == "" || (!e.exp.IsZero() && e.exp.Before(oldestExp)) {
			oldestKey = k
			oldestExp = e.exp
		}
	}
	if oldestKey != "" {
		delete(c.m, oldestKey)
	}
}

func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
