package cache

import (
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader reads through a Cache, computing missing values at most once per key
// even when several goroutines ask for the same key concurrently
type Loader struct {
	cache Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewLoader creates a new read-through loader. A nil cache disables caching
// but still collapses concurrent computations.
func NewLoader(c Cache, ttl time.Duration) *Loader {
	return &Loader{cache: c, ttl: ttl}
}

// Load returns the cached value for key, or computes and stores it. hit
// reports whether the value came from the cache. A failed store is not an
// error: the computed value is still returned.
func (l *Loader) Load(key string, compute func() ([]byte, error)) (data []byte, hit bool, err error) {
	if l.cache != nil {
		if val, found := l.cache.Get(key); found {
			return val, true, nil
		}
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		val, err := compute()
		if err != nil {
			return nil, err
		}
		if l.cache != nil {
			_ = l.cache.Set(key, val, l.ttl)
		}
		return val, nil
	})
	if err != nil {
		return nil, false, err
	}

	return v.([]byte), false, nil
}

// Invalidate drops a key from the underlying cache
func (l *Loader) Invalidate(key string) error {
	if l.cache == nil {
		return nil
	}
	return l.cache.Delete(key)
}
