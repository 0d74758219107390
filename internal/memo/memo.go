// Package memo caches endpoint results per client by their stringified arguments.
//
// A Cache is not safe for concurrent use. Two goroutines asking for the same
// key may both miss and both fetch; callers that share a client across
// goroutines must serialize access themselves.
package memo

import (
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// Cache maps call keys to results. With size <= 0 it never evicts; with a
// positive size it keeps only the most recently used entries.
type Cache[V any] struct {
	entries map[string]V
	bounded *lru.Cache
	hits    int
	misses  int
}

// New returns a Cache. A positive size bounds it with LRU eviction.
func New[V any](size int) (*Cache[V], error) {
	if size <= 0 {
		return &Cache[V]{entries: make(map[string]V)}, nil
	}
	bounded, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Cache[V]{bounded: bounded}, nil
}

// Key builds a cache key from the endpoint name and its arguments. Every
// argument is stringified first, so 5 and "5" share a key.
func Key(endpoint string, args ...any) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, endpoint)
	for _, arg := range args {
		parts = append(parts, stringify(arg))
	}
	data, _ := json.Marshal(parts)
	return string(data)
}

func stringify(arg any) string {
	switch a := arg.(type) {
	case nil:
		return ""
	case string:
		return a
	case *string:
		if a == nil {
			return ""
		}
		return *a
	case fmt.Stringer:
		return a.String()
	default:
		return fmt.Sprint(a)
	}
}

// Get returns the cached value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	if c.bounded != nil {
		if v, ok := c.bounded.Get(key); ok {
			return v.(V), true
		}
		var zero V
		return zero, false
	}
	v, ok := c.entries[key]
	return v, ok
}

// Add stores value under key.
func (c *Cache[V]) Add(key string, value V) {
	if c.bounded != nil {
		c.bounded.Add(key, value)
		return
	}
	c.entries[key] = value
}

// Do returns the cached value for key, calling fetch on a miss. Errors are
// not cached.
func (c *Cache[V]) Do(key string, fetch func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		c.hits++
		return v, nil
	}
	c.misses++
	v, err := fetch()
	if err != nil {
		return v, err
	}
	c.Add(key, v)
	return v, nil
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	if c.bounded != nil {
		return c.bounded.Len()
	}
	return len(c.entries)
}

// Stats returns hit and miss counts since creation or the last Purge.
func (c *Cache[V]) Stats() (hits, misses int) { return c.hits, c.misses }

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	if c.bounded != nil {
		c.bounded.Purge()
	} else {
		c.entries = make(map[string]V)
	}
	c.hits, c.misses = 0, 0
}
