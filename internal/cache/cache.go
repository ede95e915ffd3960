// Package cache provides a TTL key-value cache bounded by capacity, and a
// cache-aside fetch helper that cancels a consumer's superseded requests.
package cache

import (
	"container/list"
	"sync"
	"time"
)

const (
	DefaultCapacity = 100
	DefaultTTL      = 5 * time.Minute
)

type entry struct {
	key      string
	payload  any
	inserted time.Time
	ttl      time.Duration
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.inserted) > e.ttl
}

// Cache evicts in insertion order once full. Reads do not refresh an
// entry's position, so this is not an LRU.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	order    *list.List
	items    map[string]*list.Element
}

type Option func(*Cache)

func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

func WithDefaultTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{
		capacity: DefaultCapacity,
		ttl:      DefaultTTL,
		now:      time.Now,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the payload stored under key if it has not expired.
// Expired entries are removed on read.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if e.expired(c.now()) {
		c.removeElement(el)
		return nil, false
	}
	return e.payload, true
}

// Set stores payload under key. A ttl <= 0 uses the cache's default TTL.
// Inserting a new key into a full cache first evicts the oldest insertion.
func (c *Cache) Set(key string, payload any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	} else if c.order.Len() >= c.capacity {
		if oldest := c.order.Front(); oldest != nil {
			c.removeElement(oldest)
		}
	}

	c.items[key] = c.order.PushBack(&entry{
		key:      key,
		payload:  payload,
		inserted: c.now(),
		ttl:      ttl,
	})
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element)
}

// Len counts physically present entries, including expired ones not yet purged.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) removeElement(el *list.Element) {
	e := c.order.Remove(el).(*entry)
	delete(c.items, e.key)
}

// Lookup is a typed Get. A payload of a different type reads as a miss.
func Lookup[T any](c *Cache, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
