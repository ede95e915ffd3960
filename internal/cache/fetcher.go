package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded is returned by a fetch that a newer fetch from the same
// Fetcher cancelled.
var ErrSuperseded = errors.New("cache: fetch superseded")

// Fetcher memoizes one key for one consumer. Starting a fetch cancels the
// consumer's previous in-flight fetch; fetchers on the same key do not
// coordinate with each other.
type Fetcher[T any] struct {
	cache *Cache
	key   string
	ttl   time.Duration

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewFetcher[T any](c *Cache, key string, ttl time.Duration) *Fetcher[T] {
	return &Fetcher[T]{cache: c, key: key, ttl: ttl}
}

func (f *Fetcher[T]) Key() string {
	return f.key
}

// Fetch returns the cached value unless forceRefresh is set or the entry is
// missing, in which case fn is called and its result cached.
func (f *Fetcher[T]) Fetch(ctx context.Context, fn func(ctx context.Context) (T, error), forceRefresh bool) (T, error) {
	if !forceRefresh {
		if v, ok := Lookup[T](f.cache, f.key); ok {
			return v, nil
		}
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.seq++
	seq := f.seq
	f.cancel = cancel
	f.mu.Unlock()

	v, err := fn(fetchCtx)

	f.mu.Lock()
	superseded := seq != f.seq
	if !superseded {
		f.cancel = nil
	}
	f.mu.Unlock()
	cancel()

	var zero T
	if superseded {
		return zero, ErrSuperseded
	}
	if err != nil {
		return zero, err
	}

	f.cache.Set(f.key, v, f.ttl)
	return v, nil
}

func (f *Fetcher[T]) Invalidate() {
	f.cache.Delete(f.key)
}

func (f *Fetcher[T]) Clear() {
	f.cache.Clear()
}
