package services

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-embed/internal/logger"
	"github.com/custodia-labs/sercha-embed/internal/observability"
)

// Ensure EmbeddingService implements the interface.
var _ driving.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService embeds text of any length with a local bi-encoder.
//
// Text that tokenizes to more than the model limit is split into
// consecutive chunks; chunk vectors are averaged, weighted by their
// real token count, and the result is normalised to unit length.
type EmbeddingService struct {
	loader      *ModelLoader
	spec        domain.ModelSpec
	concurrency int
	dimension   int
	metrics     *observability.Metrics
}

// Option configures the embedding service.
type Option func(*EmbeddingService)

// WithConcurrency bounds how many batch items are embedded in parallel.
func WithConcurrency(n int) Option {
	return func(s *EmbeddingService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithKnownDimension asserts the model's output dimension.
// A mismatch fails NewEmbeddingService.
func WithKnownDimension(d int) Option {
	return func(s *EmbeddingService) {
		s.dimension = d
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *EmbeddingService) {
		s.metrics = m
	}
}

// NewEmbeddingService creates an embedding service for the model described
// by spec. The model itself is loaded lazily through loader.
func NewEmbeddingService(loader *ModelLoader, spec domain.ModelSpec, opts ...Option) (*EmbeddingService, error) {
	if loader == nil {
		return nil, fmt.Errorf("%w: model loader is required", domain.ErrInvalidInput)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	s := &EmbeddingService{
		loader:      loader,
		spec:        spec,
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.dimension != 0 && s.dimension != spec.Dimension {
		return nil, &domain.DimensionMismatchError{Expected: s.dimension, Actual: spec.Dimension}
	}

	return s, nil
}

// Embed returns the embedding of one text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) (*domain.Embedding, error) {
	start := time.Now()

	model, err := s.loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	embedding, err := s.embedText(ctx, model, text)
	if err != nil {
		s.metrics.RecordError(ctx, s.spec.Name, observability.OperationEmbed)
		return nil, err
	}

	s.metrics.RecordDuration(ctx, s.spec.Name, observability.OperationEmbed, time.Since(start))
	return embedding, nil
}

// EmbedAll embeds each text independently and returns results in input order.
// Items run on a bounded worker pool; each worker writes into its item's
// slot, so completion order never affects the result. The first failure
// cancels the remaining work and is returned as is.
func (s *EmbeddingService) EmbedAll(ctx context.Context, texts []string) (*domain.EmbeddingBatch, error) {
	batch := &domain.EmbeddingBatch{
		Embeddings: make([]domain.Embedding, len(texts)),
	}
	if len(texts) == 0 {
		return batch, nil
	}

	start := time.Now()

	model, err := s.loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	batchID := uuid.NewString()
	workers := min(s.concurrency, len(texts))
	logger.Debug("Batch %s: %d texts, %d workers", batchID, len(texts), workers)

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	jobs := make(chan int)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				embedding, err := s.embedText(workCtx, model, texts[i])
				if err != nil {
					errOnce.Do(func() {
						logger.Debug("Batch %s: item %d failed: %v", batchID, i, err)
						firstErr = err
						cancel()
					})
					continue
				}
				batch.Embeddings[i] = *embedding
			}
		}()
	}

	aborted := false
feed:
	for i := range texts {
		select {
		case jobs <- i:
		case <-workCtx.Done():
			aborted = true
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	// Every item was dispatched and none failed: the batch is complete
	// even if ctx ended afterwards.
	if firstErr == nil && aborted {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		s.metrics.RecordError(ctx, s.spec.Name, observability.OperationEmbedAll)
		return nil, firstErr
	}

	for i := range batch.Embeddings {
		batch.Usage.InputTokens += batch.Embeddings[i].TokenCount
	}

	logger.Debug("Batch %s: %d input tokens in %s", batchID, batch.Usage.InputTokens, time.Since(start))
	s.metrics.RecordDuration(ctx, s.spec.Name, observability.OperationEmbedAll, time.Since(start))
	return batch, nil
}

// Dimension returns the vector size of the loaded model.
func (s *EmbeddingService) Dimension() int {
	return s.spec.Dimension
}

// ModelSpec returns the fixed constants of the loaded model.
func (s *EmbeddingService) ModelSpec() domain.ModelSpec {
	return s.spec
}

// embedText runs tokenize -> partition -> encode/pool per chunk ->
// weighted average -> normalise for a single text.
func (s *EmbeddingService) embedText(ctx context.Context, model *Model, text string) (*domain.Embedding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens, err := model.Tokenizer.Tokenize(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, domain.ErrEmptyInput
	}

	chunks := domain.Partition(tokens, s.spec.MaxChunkTokens())
	if len(chunks) > 1 {
		logger.Debug("Splitting %d tokens into %d chunks of up to %d", len(tokens), len(chunks), s.spec.MaxChunkTokens())
	}

	vectors := make([]domain.Vector, len(chunks))
	weights := make([]int, len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := s.embedChunk(ctx, model, chunk)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
		weights[i] = chunk.Weight()
	}

	combined := vectors[0]
	if len(vectors) > 1 {
		combined, err = domain.WeightedAverage(vectors, weights)
		if err != nil {
			return nil, &domain.InferenceError{Err: err}
		}
	}

	normalized, err := domain.Normalize(combined)
	if err != nil {
		return nil, &domain.InferenceError{Err: err}
	}

	s.metrics.RecordText(ctx, s.spec.Name, len(tokens), len(chunks))
	return &domain.Embedding{Vector: normalized, TokenCount: len(tokens)}, nil
}

// embedChunk frames one chunk, runs the encoder and pools the hidden states.
func (s *EmbeddingService) embedChunk(ctx context.Context, model *Model, chunk domain.Chunk) (domain.Vector, error) {
	ids, mask := domain.Frame(chunk, s.spec)

	hidden, err := model.Encoder.Encode(ctx, ids, mask)
	if err != nil {
		return nil, err
	}
	if len(hidden) != len(ids) {
		return nil, &domain.InferenceError{
			Err: fmt.Errorf("encoder returned %d hidden states for %d positions", len(hidden), len(ids)),
		}
	}

	v, err := s.spec.Pooling.Pool(hidden, mask)
	if err != nil {
		return nil, &domain.InferenceError{Err: err}
	}
	if len(v) != s.spec.Dimension {
		return nil, &domain.InferenceError{
			Err: &domain.DimensionMismatchError{Expected: s.spec.Dimension, Actual: len(v)},
		}
	}
	return v, nil
}
