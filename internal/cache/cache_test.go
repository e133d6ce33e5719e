package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGet_Absent(t *testing.T) {
	c := New[string, int](time.Second, 4)
	_, f := c.Get("missing")
	assert.Equal(t, Absent, f)
}

func TestPutGet_Fresh(t *testing.T) {
	c := New[string, int](time.Second, 4)
	c.Put("k", 7)
	v, f := c.Get("k")
	assert.Equal(t, Fresh, f)
	assert.Equal(t, 7, v)
}

func TestGet_StaleAfterTTL(t *testing.T) {
	c := New[string, int](time.Second, 4)
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Put("k", 7)

	c.now = func() time.Time { return now.Add(1500 * time.Millisecond) }
	v, f := c.Get("k")
	assert.Equal(t, Stale, f)
	assert.Equal(t, 7, v, "stale lookups still return the payload")
}

func TestPut_RefreshesStaleEntry(t *testing.T) {
	c := New[string, int](time.Second, 4)
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Put("k", 1)

	c.now = func() time.Time { return now.Add(2 * time.Second) }
	c.Put("k", 2)

	v, f := c.Get("k")
	assert.Equal(t, Fresh, f)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len(), "refresh overwrites, never duplicates")
}

func TestPut_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](time.Minute, 2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // b is now least recently used
	c.Put("c", 3)

	_, f := c.Get("b")
	assert.Equal(t, Absent, f)
	_, f = c.Get("a")
	assert.Equal(t, Fresh, f)
	_, f = c.Get("c")
	assert.Equal(t, Fresh, f)
}

func TestDelete(t *testing.T) {
	c := New[string, int](time.Minute, 4)
	c.Put("k", 1)
	assert.True(t, c.Delete("k"))
	assert.False(t, c.Delete("k"))
	_, f := c.Get("k")
	assert.Equal(t, Absent, f)
}

func TestConcurrentAccess(t *testing.T) {
	c := New[string, int](time.Minute, 64)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k%d", j%32)
				c.Put(key, n)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 64)
}

func TestFreshnessString(t *testing.T) {
	assert.Equal(t, "fresh", Fresh.String())
	assert.Equal(t, "stale", Stale.String())
	assert.Equal(t, "absent", Absent.String())
}
