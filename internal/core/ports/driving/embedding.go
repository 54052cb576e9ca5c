package driving

import (
	"context"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
)

// EmbeddingService turns text of any length into unit-length vectors.
type EmbeddingService interface {
	// Embed returns the embedding of one text and the tokens it consumed.
	// Text longer than the model limit is chunked and averaged.
	Embed(ctx context.Context, text string) (*domain.Embedding, error)

	// EmbedAll embeds each text and returns the results in input order.
	// A failure on any item fails the whole call; no partial results.
	EmbedAll(ctx context.Context, texts []string) (*domain.EmbeddingBatch, error)

	// Dimension returns the vector size of the loaded model.
	Dimension() int

	// ModelSpec returns the fixed constants of the loaded model.
	ModelSpec() domain.ModelSpec
}
