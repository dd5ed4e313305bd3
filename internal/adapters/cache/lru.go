package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"conferencecentral/internal/domain"
)

// lruCache implements domain.Cache over an expirable LRU. Entries age out
// after the TTL; eviction is fine since the cache is best-effort and every
// derived fact can be recomputed.
type lruCache struct {
	lru *expirable.LRU[string, string]
}

// NewLRU returns a Cache holding up to size entries for at most ttl.
func NewLRU(size int, ttl time.Duration) domain.Cache {
	return &lruCache{
		lru: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

func (c *lruCache) Get(key string) (string, bool) {
	return c.lru.Get(key)
}

func (c *lruCache) Set(key, value string) {
	c.lru.Add(key, value)
}

func (c *lruCache) Delete(key string) {
	c.lru.Remove(key)
}
