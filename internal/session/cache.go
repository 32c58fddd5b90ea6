package session

import (
	"context"
	"sync"
)

// Query cache keys.
const (
	CurrentEmployeeKey = "currentEmployee"
	CurrentBusinessKey = "currentBusiness"
)

// queryCache memoizes tenant-scoped reads. A fetch that started before a
// reset or invalidation is not stored, so a late response cannot
// resurrect a stale identity.
type queryCache struct {
	mu      sync.Mutex
	entries map[string]any
	epochs  map[string]uint64
	epoch   uint64
}

func newQueryCache() *queryCache {
	return &queryCache{entries: map[string]any{}, epochs: map[string]uint64{}}
}

func (c *queryCache) get(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	started := c.generation(key)
	c.mu.Unlock()

	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generation(key) == started {
		c.entries[key] = v
	}
	c.mu.Unlock()
	return v, nil
}

// generation must be called with mu held.
func (c *queryCache) generation(key string) uint64 {
	return c.epoch + c.epochs[key]
}

func (c *queryCache) put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

func (c *queryCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.epochs[key]++
}

func (c *queryCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]any{}
	c.epoch++
}
