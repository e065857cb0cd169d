package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Metrics receives hit and miss counts. *monitoring.Metrics satisfies it.
type Metrics interface {
	IncrementCacheHit()
	IncrementCacheMiss()
}

type nopMetrics struct{}

func (nopMetrics) IncrementCacheHit()  {}
func (nopMetrics) IncrementCacheMiss() {}

// Cache is a size-bounded LRU whose entries also expire after ttl. It is
// safe for concurrent use.
type Cache[K comparable, V any] struct {
	lru     *expirable.LRU[K, V]
	ttl     time.Duration
	metrics Metrics
}

// New builds a cache holding at most size entries. A nil metrics discards
// the counts.
func New[K comparable, V any](size int, ttl time.Duration, metrics Metrics) *Cache[K, V] {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Cache[K, V]{
		lru:     expirable.NewLRU[K, V](size, nil, ttl),
		ttl:     ttl,
		metrics: metrics,
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.metrics.IncrementCacheHit()
	} else {
		c.metrics.IncrementCacheMiss()
	}
	return v, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.lru.Add(key, value)
}

func (c *Cache[K, V]) Delete(key K) {
	c.lru.Remove(key)
}

func (c *Cache[K, V]) Clear() {
	c.lru.Purge()
}

func (c *Cache[K, V]) Size() int {
	return c.lru.Len()
}

func (c *Cache[K, V]) Stats() map[string]any {
	return map[string]any{
		"items":       c.lru.Len(),
		"ttl_seconds": c.ttl.Seconds(),
	}
}
