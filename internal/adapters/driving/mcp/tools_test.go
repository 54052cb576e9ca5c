package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
)

func newTestServer(t *testing.T, svc *mockEmbeddingService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Embedding: svc})
	require.NoError(t, err)
	return server
}

func TestServer_handleEmbed(t *testing.T) {
	ctx := context.Background()

	t.Run("returns vector and token count", func(t *testing.T) {
		svc := &mockEmbeddingService{vectors: map[string]domain.Vector{"hello": {0.6, 0.8}}}
		server := newTestServer(t, svc)

		_, output, err := server.handleEmbed(ctx, nil, EmbedInput{Text: "hello"})

		require.NoError(t, err)
		assert.Equal(t, []float32{0.6, 0.8}, output.Vector)
		assert.Equal(t, 5, output.TokenCount)
		assert.Equal(t, 2, output.Dimension)
	})

	t.Run("propagates errors", func(t *testing.T) {
		server := newTestServer(t, &mockEmbeddingService{err: domain.ErrEmptyInput})

		_, _, err := server.handleEmbed(ctx, nil, EmbedInput{})

		assert.ErrorIs(t, err, domain.ErrEmptyInput)
	})
}

func TestServer_handleEmbedBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps order and sums usage", func(t *testing.T) {
		svc := &mockEmbeddingService{vectors: map[string]domain.Vector{
			"a":  {1, 0},
			"bb": {0, 1},
		}}
		server := newTestServer(t, svc)

		_, output, err := server.handleEmbedBatch(ctx, nil, EmbedBatchInput{Texts: []string{"bb", "a"}})

		require.NoError(t, err)
		require.Len(t, output.Embeddings, 2)
		assert.Equal(t, []float32{0, 1}, output.Embeddings[0].Vector)
		assert.Equal(t, []float32{1, 0}, output.Embeddings[1].Vector)
		assert.Equal(t, 3, output.InputTokens)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		server := newTestServer(t, &mockEmbeddingService{})

		_, _, err := server.handleEmbedBatch(ctx, nil, EmbedBatchInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("propagates errors", func(t *testing.T) {
		server := newTestServer(t, &mockEmbeddingService{err: errors.New("server down")})

		_, _, err := server.handleEmbedBatch(ctx, nil, EmbedBatchInput{Texts: []string{"a"}})

		assert.EqualError(t, err, "server down")
	})
}

func TestServer_handleSimilarity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		first     domain.Vector
		second    domain.Vector
		cosine    float64
		relevance float64
	}{
		{"identical", domain.Vector{1, 0}, domain.Vector{1, 0}, 1, 1},
		{"orthogonal", domain.Vector{1, 0}, domain.Vector{0, 1}, 0, 0.5},
		{"opposite", domain.Vector{1, 0}, domain.Vector{-1, 0}, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockEmbeddingService{vectors: map[string]domain.Vector{"x": tt.first, "y": tt.second}}
			server := newTestServer(t, svc)

			_, output, err := server.handleSimilarity(ctx, nil, SimilarityInput{First: "x", Second: "y"})

			require.NoError(t, err)
			assert.Equal(t, []string{"x", "y"}, svc.lastCall)
			assert.InDelta(t, tt.cosine, output.CosineSimilarity, 1e-9)
			assert.InDelta(t, tt.relevance, output.RelevanceScore, 1e-9)
			assert.Equal(t, 2, output.InputTokens)
		})
	}

	t.Run("propagates errors", func(t *testing.T) {
		server := newTestServer(t, &mockEmbeddingService{err: domain.ErrInference})

		_, _, err := server.handleSimilarity(ctx, nil, SimilarityInput{First: "x", Second: "y"})

		assert.ErrorIs(t, err, domain.ErrInference)
	})
}
