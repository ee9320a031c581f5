package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/clintables/codefinder/internal/domain/providers"
)

// MemoryAdapter implements the CacheProvider interface with an in-process
// expirable LRU. The TTL is fixed per adapter; the per-call expiration is
// ignored, so construct one adapter per TTL class (e.g. API responses vs
// expansion results).
type MemoryAdapter struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryAdapter creates an in-memory cache adapter with the given
// capacity and entry lifetime.
func NewMemoryAdapter(maxSize, ttlSeconds int) providers.CacheProvider {
	if maxSize <= 0 {
		maxSize = 1000
	}
	ttl := time.Duration(ttlSeconds) * time.Second
	return &MemoryAdapter{
		lru: expirable.NewLRU[string, []byte](maxSize, nil, ttl),
	}
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := a.lru.Get(key)
	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}
	return value, nil
}

// Set stores a value in cache. The adapter-wide TTL applies regardless of
// the requested expiration.
func (a *MemoryAdapter) Set(_ context.Context, key string, value []byte, _ int) error {
	a.lru.Add(key, value)
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(_ context.Context, key string) error {
	a.lru.Remove(key)
	return nil
}
