package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type counter struct{ hits, misses int }

func (c *counter) IncrementCacheHit()  { c.hits++ }
func (c *counter) IncrementCacheMiss() { c.misses++ }

func TestCacheGetSet(t *testing.T) {
	m := &counter{}
	c := New[string, int](2, time.Minute, m)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	assert.Equal(t, 1, m.hits)
	assert.Equal(t, 1, m.misses)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2, time.Minute, nil)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Size())
}

func TestCacheExpires(t *testing.T) {
	c := New[string, int](4, 20*time.Millisecond, nil)
	c.Set("a", 1)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("a")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New[string, int](4, time.Minute, nil)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	assert.Zero(t, c.Size())
	assert.Equal(t, 0, c.Stats()["items"])
}
