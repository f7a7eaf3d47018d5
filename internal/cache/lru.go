package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryCache implements ReportCache in process with a fixed-size LRU.
// The default backend when no Redis is configured.
type MemoryCache struct {
	lru *lru.Cache[string, []byte]
}

// NewMemoryCache creates a new in-process report cache.
func NewMemoryCache(maxItems int) (*MemoryCache, error) {
	if maxItems <= 0 {
		maxItems = 128
	}
	c, err := lru.New[string, []byte](maxItems)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{lru: c}, nil
}

// Get retrieves a cached report.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok := c.lru.Get(key)
	return val, ok, nil
}

// Set stores a report, evicting the least recently used entry when
// full.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte) error {
	c.lru.Add(key, value)
	return nil
}

// Close is a no-op for the in-process cache.
func (c *MemoryCache) Close() error {
	return nil
}
