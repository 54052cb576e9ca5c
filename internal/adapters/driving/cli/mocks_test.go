package cli

import (
	"context"
	"strings"

	"github.com/custodia-labs/sercha-embed/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-embed/internal/core/domain"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-embed/internal/core/services"
)

var testSpec = domain.ModelSpec{
	Name:              "test-model",
	MaxSequenceLength: 8,
	Dimension:         4,
	Pooling:           domain.PoolingMean,
	PadTokenID:        domain.BertPadTokenID,
	ClsTokenID:        domain.BertClsTokenID,
	SepTokenID:        domain.BertSepTokenID,
}

// mockEmbeddingService embeds a text as a unit vector derived from its
// word count and length, one token per word.
type mockEmbeddingService struct {
	err   error
	texts []string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) (*domain.Embedding, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return nil, m.err
	}
	return fakeEmbedding(text)
}

func (m *mockEmbeddingService) EmbedAll(_ context.Context, texts []string) (*domain.EmbeddingBatch, error) {
	m.texts = append(m.texts, texts...)
	if m.err != nil {
		return nil, m.err
	}
	batch := &domain.EmbeddingBatch{Embeddings: make([]domain.Embedding, len(texts))}
	for i, text := range texts {
		e, err := fakeEmbedding(text)
		if err != nil {
			return nil, err
		}
		batch.Embeddings[i] = *e
		batch.Usage.InputTokens += e.TokenCount
	}
	return batch, nil
}

func (m *mockEmbeddingService) Dimension() int {
	return testSpec.Dimension
}

func (m *mockEmbeddingService) ModelSpec() domain.ModelSpec {
	return testSpec
}

func fakeEmbedding(text string) (*domain.Embedding, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, domain.ErrEmptyInput
	}
	v, err := domain.Normalize(domain.Vector{1, float32(len(words)), float32(len(text)), 0})
	if err != nil {
		return nil, err
	}
	return &domain.Embedding{Vector: v, TokenCount: len(words)}, nil
}

// setupTestServices installs a mock embedding service and a settings
// service over an in-memory config store. The returned function restores
// the previous services and resets command flags.
func setupTestServices() (*mockEmbeddingService, driving.SettingsService, func()) {
	oldEmbedding, oldSettings, oldErr := embeddingService, settingsService, embeddingErr

	mock := &mockEmbeddingService{}
	settings := services.NewSettingsService(memory.NewConfigStore())
	embeddingService = mock
	settingsService = settings
	embeddingErr = nil

	return mock, settings, func() {
		embeddingService, settingsService, embeddingErr = oldEmbedding, oldSettings, oldErr
		resetFlags()
	}
}

func resetFlags() {
	embedFile, embedRaw, embedJSON, embedFull = "", false, false, false
	batchFile, batchJSON = "", false
	similarityJSON = false
	modelJSON = false
	cacheBackendFlag = ""
	verbose, configDir, withMetrics = false, "", false
}
