package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-embed/internal/logger"
	"github.com/custodia-labs/sercha-embed/internal/observability"
)

// Ensure CachedEmbeddingService implements the interface.
var _ driving.EmbeddingService = (*CachedEmbeddingService)(nil)

// CachedEmbeddingService serves repeated texts from an EmbeddingCache.
// Embeddings are deterministic for a given model spec and text, so a
// cached entry is identical to what the inner service would compute.
type CachedEmbeddingService struct {
	inner   driving.EmbeddingService
	cache   driven.EmbeddingCache
	metrics *observability.Metrics
}

// NewCachedEmbeddingService wraps inner with cache.
// The metrics parameter is optional (can be nil).
func NewCachedEmbeddingService(
	inner driving.EmbeddingService,
	cache driven.EmbeddingCache,
	metrics *observability.Metrics,
) *CachedEmbeddingService {
	return &CachedEmbeddingService{
		inner:   inner,
		cache:   cache,
		metrics: metrics,
	}
}

// CacheKey returns the content key for text embedded under spec. Every
// field that changes the output vector is part of the key, so overriding
// pooling, sequence length or special tokens never reuses stale entries.
func CacheKey(spec domain.ModelSpec, text string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00%d\x00%d\x00%d\x00%d\x00",
		spec.Name, spec.Pooling, spec.MaxSequenceLength, spec.Dimension,
		spec.PadTokenID, spec.ClsTokenID, spec.SepTokenID)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Embed returns the cached embedding or computes and stores it.
func (s *CachedEmbeddingService) Embed(ctx context.Context, text string) (*domain.Embedding, error) {
	key := CacheKey(s.inner.ModelSpec(), text)

	if cached, ok := s.lookup(ctx, key); ok {
		return cached, nil
	}

	embedding, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, *embedding)
	return embedding, nil
}

// EmbedAll serves hits from the cache and embeds all misses in one inner batch.
// Usage counts every text, whether it was cached or not.
func (s *CachedEmbeddingService) EmbedAll(ctx context.Context, texts []string) (*domain.EmbeddingBatch, error) {
	batch := &domain.EmbeddingBatch{
		Embeddings: make([]domain.Embedding, len(texts)),
	}

	spec := s.inner.ModelSpec()
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		keys[i] = CacheKey(spec, text)
		if cached, ok := s.lookup(ctx, keys[i]); ok {
			batch.Embeddings[i] = *cached
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	logger.Debug("Cache: %d hits, %d misses", len(texts)-len(missIdx), len(missIdx))

	if len(missTexts) > 0 {
		computed, err := s.inner.EmbedAll(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		for j, i := range missIdx {
			batch.Embeddings[i] = computed.Embeddings[j]
			s.store(ctx, keys[i], computed.Embeddings[j])
		}
	}

	for i := range batch.Embeddings {
		batch.Usage.InputTokens += batch.Embeddings[i].TokenCount
	}
	return batch, nil
}

// Dimension returns the vector size of the loaded model.
func (s *CachedEmbeddingService) Dimension() int {
	return s.inner.Dimension()
}

// ModelSpec returns the fixed constants of the loaded model.
func (s *CachedEmbeddingService) ModelSpec() domain.ModelSpec {
	return s.inner.ModelSpec()
}

func (s *CachedEmbeddingService) modelName() string {
	return s.inner.ModelSpec().Name
}

// lookup returns a cache hit. Cache failures other than a miss are
// logged and treated as a miss.
func (s *CachedEmbeddingService) lookup(ctx context.Context, key string) (*domain.Embedding, bool) {
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Cache lookup failed: %v", err)
		}
		s.metrics.RecordCacheLookup(ctx, s.modelName(), false)
		return nil, false
	}
	s.metrics.RecordCacheLookup(ctx, s.modelName(), true)
	return cached, true
}

func (s *CachedEmbeddingService) store(ctx context.Context, key string, embedding domain.Embedding) {
	if err := s.cache.Put(ctx, key, embedding); err != nil {
		logger.Warn("Cache write failed: %v", err)
	}
}
