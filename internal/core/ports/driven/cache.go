package driven

import (
	"context"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
)

// EmbeddingCache stores computed embeddings by content key.
// Keys are derived from the model name and text, so an entry is only
// ever reused for the exact same input on the same model.
type EmbeddingCache interface {
	// Get returns the cached embedding or domain.ErrNotFound.
	Get(ctx context.Context, key string) (*domain.Embedding, error)

	// Put stores an embedding under key, replacing any previous entry.
	Put(ctx context.Context, key string, embedding domain.Embedding) error

	// Close releases resources.
	Close() error
}
