package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store memoizes single-entity lookups keyed by entity id. Implementations
// must be safe for concurrent use. The system must behave identically with
// Noop wired in; the cache only buys speed.
type Store interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Delete(key string)
}

// TaskKey returns the cache key for a task id.
func TaskKey(id string) string {
	return "task:" + id
}

// CategoryKey returns the cache key for a category id.
func CategoryKey(id string) string {
	return "category:" + id
}

// Memory is a Store backed by an in-process TTL cache.
type Memory struct {
	c *gocache.Cache
}

// NewMemory creates a Memory store whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{c: gocache.New(ttl, 2*ttl)}
}

func (m *Memory) Get(key string) (interface{}, bool) {
	return m.c.Get(key)
}

func (m *Memory) Set(key string, value interface{}) {
	m.c.Set(key, value, gocache.DefaultExpiration)
}

func (m *Memory) Delete(key string) {
	m.c.Delete(key)
}

// Noop is a Store that remembers nothing.
type Noop struct{}

func (Noop) Get(key string) (interface{}, bool) { return nil, false }

func (Noop) Set(key string, value interface{}) {}

func (Noop) Delete(key string) {}
