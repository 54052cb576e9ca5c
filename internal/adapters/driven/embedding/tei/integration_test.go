//go:build integration

package tei_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-embed/internal/adapters/driven/embedding/tei"
	"github.com/custodia-labs/sercha-embed/internal/core/domain"
	"github.com/custodia-labs/sercha-embed/internal/core/services"
)

// Run against a live server serving BAAI/bge-small-en-v1.5:
//
//	SERCHA_EMBED_TEI_URL=http://localhost:8080 go test -tags integration ./internal/adapters/driven/embedding/tei/
func newLiveService(t *testing.T) *services.EmbeddingService {
	t.Helper()
	url := os.Getenv("SERCHA_EMBED_TEI_URL")
	if url == "" {
		t.Skip("SERCHA_EMBED_TEI_URL not set")
	}

	client := tei.NewClient(tei.Config{BaseURL: url})
	require.NoError(t, client.Health(context.Background()))

	spec, ok := domain.LookupModel(domain.ModelBgeSmallEnV15Quantized)
	require.True(t, ok)

	loader := services.StaticModel(&services.Model{
		Tokenizer: tei.NewTokenizer(client),
		Encoder:   tei.NewEncoder(client),
	})
	svc, err := services.NewEmbeddingService(loader, spec, services.WithKnownDimension(384))
	require.NoError(t, err)
	return svc
}

func TestLive_SimilarGreetings(t *testing.T) {
	svc := newLiveService(t)

	batch, err := svc.EmbedAll(context.Background(), []string{"hi", "hello"})

	require.NoError(t, err)
	assert.Equal(t, 2, batch.Usage.InputTokens)
	for _, e := range batch.Embeddings {
		assert.Len(t, e.Vector, 384)
		assert.InDelta(t, 1.0, domain.Magnitude(e.Vector), 1e-4)
	}
	assert.Greater(t, domain.CosineSimilarity(batch.Embeddings[0].Vector, batch.Embeddings[1].Vector), 0.97)
}

func TestLive_ContinuityAcrossChunkBoundary(t *testing.T) {
	svc := newLiveService(t)

	a, err := svc.Embed(context.Background(), strings.TrimSpace(strings.Repeat("hello ", 510)))
	require.NoError(t, err)
	b, err := svc.Embed(context.Background(), strings.TrimSpace(strings.Repeat("hello ", 511)))
	require.NoError(t, err)

	assert.Equal(t, 510, a.TokenCount)
	assert.Equal(t, 511, b.TokenCount)
	assert.Greater(t, domain.CosineSimilarity(a.Vector, b.Vector), 0.99)
}

func TestLive_LongTextIsUnitLength(t *testing.T) {
	svc := newLiveService(t)

	got, err := svc.Embed(context.Background(), strings.Repeat("the quick brown fox jumps over the lazy dog. ", 200))

	require.NoError(t, err)
	assert.Greater(t, got.TokenCount, 510)
	assert.InDelta(t, 1.0, domain.Magnitude(got.Vector), 1e-4)
}
