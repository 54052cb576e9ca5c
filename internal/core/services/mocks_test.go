package services

import (
	"context"
	"hash/fnv"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driving"
)

// wordTokenizer maps each whitespace-separated word to a stable id.
type wordTokenizer struct {
	err   error
	calls atomic.Int64
}

var _ driven.Tokenizer = (*wordTokenizer)(nil)

func (t *wordTokenizer) Tokenize(_ context.Context, text string) ([]int64, error) {
	t.calls.Add(1)
	if t.err != nil {
		return nil, t.err
	}
	words := strings.Fields(text)
	ids := make([]int64, len(words))
	for i, w := range words {
		ids[i] = wordID(w)
	}
	return ids, nil
}

// wordID keeps ids clear of the BERT special tokens.
func wordID(word string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(word))
	return 1000 + int64(h.Sum32()%30000)
}

// fixedTokenizer returns the same ids for every text.
type fixedTokenizer struct {
	ids []int64
}

func (t *fixedTokenizer) Tokenize(_ context.Context, _ string) ([]int64, error) {
	return t.ids, nil
}

// contextEncoder is a deterministic stand-in for a bi-encoder. Each real
// row is the mean of all real token vectors plus half its own token vector,
// so a row depends on the whole frame. Padding rows are filled with a large
// constant that must never reach a pooled result.
type contextEncoder struct {
	dim int

	// failOn makes Encode fail when the frame contains this token id.
	failOn int64
	err    error

	// delay is applied per call, keyed by the first text token.
	delay func(firstToken int64) time.Duration

	calls atomic.Int64

	mu     sync.Mutex
	frames [][]int64
	masks  [][]int64
}

var _ driven.Encoder = (*contextEncoder)(nil)

const padRowValue = 1e6

func (e *contextEncoder) Encode(ctx context.Context, ids, mask []int64) ([][]float32, error) {
	e.calls.Add(1)
	e.mu.Lock()
	e.frames = append(e.frames, append([]int64(nil), ids...))
	e.masks = append(e.masks, append([]int64(nil), mask...))
	e.mu.Unlock()

	if e.err != nil && (e.failOn == 0 || slices.Contains(ids, e.failOn)) {
		return nil, e.err
	}

	if e.delay != nil && len(ids) > 1 {
		select {
		case <-time.After(e.delay(ids[1])):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	mean := make([]float64, e.dim)
	var n float64
	for i, id := range ids {
		if mask[i] == 0 {
			continue
		}
		for j, x := range tokenVector(id, e.dim) {
			mean[j] += float64(x)
		}
		n++
	}

	hidden := make([][]float32, len(ids))
	for i, id := range ids {
		row := make([]float32, e.dim)
		if mask[i] == 0 {
			for j := range row {
				row[j] = padRowValue
			}
			hidden[i] = row
			continue
		}
		own := tokenVector(id, e.dim)
		for j := range row {
			row[j] = float32(mean[j]/n) + 0.5*own[j]
		}
		hidden[i] = row
	}
	return hidden, nil
}

func (e *contextEncoder) Ping(context.Context) error { return nil }

func (e *contextEncoder) Close() error { return nil }

// recorded returns the real text tokens of every encoded frame, in call order.
func (e *contextEncoder) recorded() [][]int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]int64, len(e.frames))
	for i, ids := range e.frames {
		var used int
		for _, m := range e.masks[i] {
			used += int(m)
		}
		out[i] = ids[1 : used-1]
	}
	return out
}

// tokenVector derives a pseudo-random vector in [-1, 1) from id.
func tokenVector(id int64, dim int) []float32 {
	v := make([]float32, dim)
	x := uint64(id)*6364136223846793005 + 1442695040888963407
	for j := range v {
		x = x*6364136223846793005 + 1442695040888963407
		v[j] = float32(int64(x>>33)%2000)/1000 - 1
	}
	return v
}

// encoderFunc adapts a function to driven.Encoder.
type encoderFunc func(ids, mask []int64) ([][]float32, error)

func (f encoderFunc) Encode(_ context.Context, ids, mask []int64) ([][]float32, error) {
	return f(ids, mask)
}

func (f encoderFunc) Ping(context.Context) error { return nil }

func (f encoderFunc) Close() error { return nil }

// failingCache fails every operation.
type failingCache struct {
	err error
}

func (c *failingCache) Get(context.Context, string) (*domain.Embedding, error) {
	return nil, c.err
}

func (c *failingCache) Put(context.Context, string, domain.Embedding) error {
	return c.err
}

func (c *failingCache) Close() error { return nil }

// countingService records calls to an inner embedding service.
type countingService struct {
	driving.EmbeddingService
	embedCalls    atomic.Int64
	embedAllCalls atomic.Int64
	lastBatch     []string
}

func (s *countingService) Embed(ctx context.Context, text string) (*domain.Embedding, error) {
	s.embedCalls.Add(1)
	return s.EmbeddingService.Embed(ctx, text)
}

func (s *countingService) EmbedAll(ctx context.Context, texts []string) (*domain.EmbeddingBatch, error) {
	s.embedAllCalls.Add(1)
	s.lastBatch = texts
	return s.EmbeddingService.EmbedAll(ctx, texts)
}

// testSpec is a small model so tests can cross chunk boundaries cheaply.
func testSpec(pooling domain.PoolingMode) domain.ModelSpec {
	return domain.ModelSpec{
		Name:              "test-model",
		MaxSequenceLength: 8,
		Dimension:         16,
		Pooling:           pooling,
		PadTokenID:        domain.BertPadTokenID,
		ClsTokenID:        domain.BertClsTokenID,
		SepTokenID:        domain.BertSepTokenID,
	}
}

func words(word string, n int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}
