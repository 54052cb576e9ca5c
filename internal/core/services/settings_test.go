package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-embed/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-embed/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Model, settings.Embedding.Model)
	assert.Equal(t, defaults.Embedding.BaseURL, settings.Embedding.BaseURL)
	assert.Equal(t, defaults.Embedding.Timeout, settings.Embedding.Timeout)
	assert.Equal(t, defaults.Cache, settings.Cache)
	assert.Nil(t, settings.Embedding.PadTokenID)
	assert.Empty(t, settings.Embedding.Pooling)
}

func TestSettingsService_Get_ReadsAllFields(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.model", "custom-bert")
	_ = store.Set("embedding.base_url", "http://tei:80")
	_ = store.Set("embedding.dimension", int64(768))
	_ = store.Set("embedding.pooling", "mean")
	_ = store.Set("embedding.max_input_length", int64(256))
	_ = store.Set("embedding.pad_token_id", int64(1))
	_ = store.Set("embedding.cls_token_id", int64(0))
	_ = store.Set("embedding.sep_token_id", int64(2))
	_ = store.Set("embedding.concurrency", int64(3))
	_ = store.Set("embedding.timeout_seconds", int64(5))
	_ = store.Set("embedding.requests_per_second", 2.5)
	_ = store.Set("cache.enabled", true)
	_ = store.Set("cache.backend", "sqlite")
	_ = store.Set("cache.dir", "/tmp/cache")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	e := settings.Embedding
	assert.Equal(t, "custom-bert", e.Model)
	assert.Equal(t, "http://tei:80", e.BaseURL)
	assert.Equal(t, 768, e.Dimension)
	assert.Equal(t, domain.PoolingMean, e.Pooling)
	assert.Equal(t, 256, e.MaxInputLength)
	require.NotNil(t, e.PadTokenID)
	require.NotNil(t, e.ClsTokenID)
	require.NotNil(t, e.SepTokenID)
	assert.Equal(t, int64(1), *e.PadTokenID)
	assert.Equal(t, int64(0), *e.ClsTokenID)
	assert.Equal(t, int64(2), *e.SepTokenID)
	assert.Equal(t, 3, e.Concurrency)
	assert.Equal(t, 5*time.Second, e.Timeout)
	assert.InDelta(t, 2.5, e.RequestsPerSecond, 1e-9)
	assert.Equal(t, domain.CacheSettings{Enabled: true, Backend: domain.CacheBackendSQLite, Dir: "/tmp/cache"}, settings.Cache)
}

func TestSettingsService_Get_InvalidPooling(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.pooling", "max")

	_, err := NewSettingsService(store).Get()

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Get_InvalidBackendFallsBack(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("cache.backend", "redis")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.CacheBackendMemory, settings.Cache.Backend)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	pad := int64(1)

	want := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Model:             domain.ModelAllMiniLML6V2,
			BaseURL:           "http://localhost:9000",
			Dimension:         384,
			Pooling:           domain.PoolingMean,
			PadTokenID:        &pad,
			Concurrency:       2,
			Timeout:           30 * time.Second,
			RequestsPerSecond: 10,
		},
		Cache: domain.CacheSettings{Enabled: true, Backend: domain.CacheBackendSQLite, Dir: "/data"},
	}

	require.NoError(t, service.Save(want))
	got, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSettingsService_Save_SkipsUnsetValues(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	require.NoError(t, service.Save(&settings))

	for _, key := range []string{
		"embedding.dimension",
		"embedding.pooling",
		"embedding.max_input_length",
		"embedding.pad_token_id",
		"embedding.concurrency",
		"embedding.requests_per_second",
		"cache.dir",
	} {
		_, ok := store.Get(key)
		assert.False(t, ok, key)
	}
	assert.Equal(t, domain.DefaultModel, store.GetString("embedding.model"))
}

func TestSettingsService_SetModel(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetModel(domain.ModelBgeSmallZhV15))

	assert.Equal(t, domain.ModelBgeSmallZhV15, store.GetString("embedding.model"))
}

func TestSettingsService_SetModel_Unknown(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	err := service.SetModel("gpt-embed")

	assert.ErrorIs(t, err, domain.ErrUnknownModel)
	assert.Empty(t, store.GetString("embedding.model"))
}

func TestSettingsService_SetModel_CustomWithOverrides(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.dimension", int64(768))
	_ = store.Set("embedding.pooling", "cls")
	service := NewSettingsService(store)

	require.NoError(t, service.SetModel("custom-bert"))

	assert.Equal(t, "custom-bert", store.GetString("embedding.model"))
}

func TestSettingsService_SetModel_Empty(t *testing.T) {
	err := NewSettingsService(memory.NewConfigStore()).SetModel("")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_SetBaseURL(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetBaseURL("http://gpu-box:8080"))
	assert.Equal(t, "http://gpu-box:8080", store.GetString("embedding.base_url"))

	assert.ErrorIs(t, service.SetBaseURL(""), domain.ErrInvalidInput)
}

func TestSettingsService_SetCache(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetCache(true, domain.CacheBackendSQLite))

	assert.True(t, store.GetBool("cache.enabled"))
	assert.Equal(t, "sqlite", store.GetString("cache.backend"))

	assert.Error(t, service.SetCache(true, domain.CacheBackend("redis")))
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr error
	}{
		{name: "defaults", values: nil},
		{name: "unknown model", values: map[string]any{"embedding.model": "nope"}, wantErr: domain.ErrUnknownModel},
		{name: "invalid pooling", values: map[string]any{"embedding.pooling": "max"}, wantErr: domain.ErrInvalidInput},
		{name: "tiny input length", values: map[string]any{"embedding.max_input_length": int64(2)}, wantErr: domain.ErrInvalidInput},
		{name: "custom model", values: map[string]any{
			"embedding.model":     "custom",
			"embedding.dimension": int64(256),
			"embedding.pooling":   "mean",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			for k, v := range tt.values {
				_ = store.Set(k, v)
			}

			err := NewSettingsService(store).Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
