package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
)

// mockEmbeddingService is a mock implementation of driving.EmbeddingService.
// Each text maps to the vector in vectors, or to [1, 0] by default.
type mockEmbeddingService struct {
	vectors  map[string]domain.Vector
	spec     domain.ModelSpec
	err      error
	lastCall []string
}

func (m *mockEmbeddingService) embedding(text string) domain.Embedding {
	v, ok := m.vectors[text]
	if !ok {
		v = domain.Vector{1, 0}
	}
	return domain.Embedding{Vector: v, TokenCount: len(text)}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) (*domain.Embedding, error) {
	m.lastCall = []string{text}
	if m.err != nil {
		return nil, m.err
	}
	e := m.embedding(text)
	return &e, nil
}

func (m *mockEmbeddingService) EmbedAll(_ context.Context, texts []string) (*domain.EmbeddingBatch, error) {
	m.lastCall = texts
	if m.err != nil {
		return nil, m.err
	}
	batch := &domain.EmbeddingBatch{}
	for _, text := range texts {
		e := m.embedding(text)
		batch.Embeddings = append(batch.Embeddings, e)
		batch.Usage.InputTokens += e.TokenCount
	}
	return batch, nil
}

func (m *mockEmbeddingService) Dimension() int {
	return m.spec.Dimension
}

func (m *mockEmbeddingService) ModelSpec() domain.ModelSpec {
	return m.spec
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings *domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error { return m.err }

func (m *mockSettingsService) SetModel(_ string) error { return m.err }

func (m *mockSettingsService) SetBaseURL(_ string) error { return m.err }

func (m *mockSettingsService) SetCache(_ bool, _ domain.CacheBackend) error { return m.err }

func (m *mockSettingsService) Validate() error { return m.err }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
