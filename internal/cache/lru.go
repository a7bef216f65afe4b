package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	key        string
	val        T
	expires    time.Time
	prev, next *entry[T]
}

// LRUCache holds at most maxSize values for ttl each. Expired values are
// dropped when read or by CleanExpired.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	byKey map[string]*entry[T]
	// head is most recently used, tail least.
	head, tail *entry[T]

	hits, misses uint64
}

type Stats struct {
	Size   int    `json:"size"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// NewLRUCache returns an empty cache. maxSize below 1 means 1.
func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		maxSize: max(maxSize, 1),
		ttl:     ttl,
		now:     time.Now,
		byKey:   make(map[string]*entry[T]),
	}
}

func (c *LRUCache[T]) unlink(e *entry[T]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}

func (c *LRUCache[T]) pushFront(e *entry[T]) {
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *LRUCache[T]) drop(e *entry[T]) {
	c.unlink(e)
	delete(c.byKey, e.key)
}

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.byKey[key]
	if ok && c.now().After(e.expires) {
		c.drop(e)
		ok = false
	}
	if !ok {
		c.misses++
		var zero T
		return zero, false
	}
	c.unlink(e)
	c.pushFront(e)
	c.hits++
	return e.val, true
}

// Set stores val under key with a fresh ttl, evicting from the tail when full.
func (c *LRUCache[T]) Set(key string, val T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if e, ok := c.byKey[key]; ok {
		e.val, e.expires = val, expires
		c.unlink(e)
		c.pushFront(e)
		return
	}
	e := &entry[T]{key: key, val: val, expires: expires}
	c.byKey[key] = e
	c.pushFront(e)
	for len(c.byKey) > c.maxSize {
		c.drop(c.tail)
	}
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.byKey[key]; ok {
		c.drop(e)
	}
}

// Purge empties the cache. Hit and miss counters are kept.
func (c *LRUCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey = make(map[string]*entry[T])
	c.head, c.tail = nil, nil
}

// CleanExpired drops every expired value and returns how many went.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for e := c.head; e != nil; {
		next := e.next
		if now.After(e.expires) {
			c.drop(e)
			n++
		}
		e = next
	}
	return n
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byKey)
}

func (c *LRUCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Size: len(c.byKey), Hits: c.hits, Misses: c.misses}
}
