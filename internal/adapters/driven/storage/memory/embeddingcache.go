package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driven"
)

// Ensure EmbeddingCache implements the interface.
var _ driven.EmbeddingCache = (*EmbeddingCache)(nil)

// EmbeddingCache is an in-memory implementation of driven.EmbeddingCache.
// With a positive capacity the oldest entry is evicted first.
type EmbeddingCache struct {
	mu       sync.RWMutex
	entries  map[string]domain.Embedding
	order    []string
	capacity int
}

// NewEmbeddingCache creates a cache holding at most capacity entries.
// A capacity of zero or less means unbounded.
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	return &EmbeddingCache{
		entries:  make(map[string]domain.Embedding),
		capacity: capacity,
	}
}

// Get returns a copy of the cached embedding, or domain.ErrNotFound.
func (c *EmbeddingCache) Get(_ context.Context, key string) (*domain.Embedding, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Embedding{Vector: slices.Clone(e.Vector), TokenCount: e.TokenCount}, nil
}

// Put stores a copy of embedding under key.
func (c *EmbeddingCache) Put(_ context.Context, key string, embedding domain.Embedding) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = domain.Embedding{
		Vector:     slices.Clone(embedding.Vector),
		TokenCount: embedding.TokenCount,
	}

	for c.capacity > 0 && len(c.order) > c.capacity {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	return nil
}

// Len returns the number of cached entries.
func (c *EmbeddingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close drops all entries.
func (c *EmbeddingCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]domain.Embedding)
	c.order = nil
	return nil
}
