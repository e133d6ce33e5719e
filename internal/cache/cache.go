// Package cache implements the tiered query cache: a TTL-aware LRU mapping
// logical query keys to payloads with their fetch timestamps.
//
// Concurrency contract: a single mutex guards the whole structure, so
// concurrent Get/Put on any mix of keys cannot corrupt state; same-key
// races resolve last-write-wins. No ordering stronger than "some issued
// put wins" is promised, and none is needed for a single user's
// date-keyed queries.
package cache

import (
	"sync"
	"time"
)

// Freshness classifies a lookup result against the cache TTL.
type Freshness int

const (
	Absent Freshness = iota
	Stale
	Fresh
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "absent"
	}
}

// entry is a doubly linked list node holding one cache entry. Entries are
// overwritten whole on refresh, never partially updated.
type entry[K comparable, V any] struct {
	key       K
	payload   V
	fetchedAt time.Time
	prev      *entry[K, V]
	next      *entry[K, V]
}

// Cache is a TTL-aware LRU keyed by logical query key. The capacity bound
// doubles as the only eviction policy beyond TTL; stale entries stay until
// overwritten or evicted.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	items    map[K]*entry[K, V]
	head     *entry[K, V] // most recently used (sentinel)
	tail     *entry[K, V] // least recently used (sentinel)
	now      func() time.Time
}

// New creates a cache with the given TTL and capacity.
// Panics if capacity < 1 or ttl <= 0.
func New[K comparable, V any](ttl time.Duration, capacity int) *Cache[K, V] {
	if capacity < 1 {
		panic("cache: capacity must be >= 1")
	}
	if ttl <= 0 {
		panic("cache: ttl must be positive")
	}

	head := &entry[K, V]{}
	tail := &entry[K, V]{}
	head.next = tail
	tail.prev = head

	return &Cache[K, V]{
		ttl:      ttl,
		capacity: capacity,
		items:    make(map[K]*entry[K, V], capacity),
		head:     head,
		tail:     tail,
		now:      time.Now,
	}
}

// Get answers fresh / stale / absent for a key. The payload is returned
// for both Fresh and Stale; callers decide whether stale is usable
// (the source chain treats it as a miss).
func (c *Cache[K, V]) Get(key K) (V, Freshness) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, Absent
	}

	c.moveToFront(e)
	if c.now().Sub(e.fetchedAt) <= c.ttl {
		return e.payload, Fresh
	}
	return e.payload, Stale
}

// Put stores a payload under key with the current timestamp,
// unconditionally overwriting any previous entry. Evicts the least
// recently used entry when at capacity.
func (c *Cache[K, V]) Put(key K, payload V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.payload = payload
		e.fetchedAt = c.now()
		c.moveToFront(e)
		return
	}

	if len(c.items) >= c.capacity {
		victim := c.tail.prev
		c.unlink(victim)
		delete(c.items, victim.key)
	}

	e := &entry[K, V]{key: key, payload: payload, fetchedAt: c.now()}
	c.items[key] = e
	c.pushFront(e)
}

// Delete removes a key. Returns true if the key existed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return false
	}
	c.unlink(e)
	delete(c.items, key)
	return true
}

// Len returns the current number of entries, fresh or stale.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// TTL returns the configured freshness threshold.
func (c *Cache[K, V]) TTL() time.Duration {
	return c.ttl
}

// --- linked list operations (caller must hold lock) ---

func (c *Cache[K, V]) unlink(e *entry[K, V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
}

func (c *Cache[K, V]) pushFront(e *entry[K, V]) {
	e.next = c.head.next
	e.prev = c.head
	c.head.next.prev = e
	c.head.next = e
}

func (c *Cache[K, V]) moveToFront(e *entry[K, V]) {
	c.unlink(e)
	c.pushFront(e)
}
