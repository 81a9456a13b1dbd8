// Package cache is a best-effort key/value store with TTL used by read paths.
// Lookups that miss or fail fall through to the database; nothing here is ever
// on an inventory write path.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is the read-through contract consumed by the product and category
// services.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Remove(key string)
	RemovePrefix(prefix string)
	Exists(key string) bool
}

type TTLCache struct {
	c          *gocache.Cache
	defaultTTL time.Duration
}

func New(defaultTTL time.Duration) *TTLCache {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}
	return &TTLCache{
		c:          gocache.New(defaultTTL, 2*defaultTTL),
		defaultTTL: defaultTTL,
	}
}

func (t *TTLCache) Get(key string) (any, bool) { return t.c.Get(key) }

// Set stores value under key; ttl <= 0 means the default TTL.
func (t *TTLCache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = t.defaultTTL
	}
	t.c.Set(key, value, ttl)
}

func (t *TTLCache) Remove(key string) { t.c.Delete(key) }

// RemovePrefix drops every entry whose key starts with prefix. Used to
// invalidate all cached list pages after a write.
func (t *TTLCache) RemovePrefix(prefix string) {
	for key := range t.c.Items() {
		if strings.HasPrefix(key, prefix) {
			t.c.Delete(key)
		}
	}
}

func (t *TTLCache) Exists(key string) bool {
	_, ok := t.c.Get(key)
	return ok
}
