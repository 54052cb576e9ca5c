package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-embed/internal/adapters/driven/embedding/tei"
	"github.com/custodia-labs/sercha-embed/internal/core/domain"
	"github.com/custodia-labs/sercha-embed/internal/core/services"
)

func TestBootstrap_Defaults(t *testing.T) {
	dir := t.TempDir()

	svcs, err := bootstrap(context.Background(), dir)

	require.NoError(t, err)
	require.NotNil(t, svcs.Settings)
	require.NotNil(t, svcs.Embedding)
	assert.NoError(t, svcs.EmbeddingErr)
	assert.Equal(t, domain.DefaultModel, svcs.Embedding.ModelSpec().Name)
	assert.Equal(t, 384, svcs.Embedding.Dimension())
	require.NotNil(t, svcs.Close)
	assert.NoError(t, svcs.Close())
}

func TestBootstrap_UnknownModelKeepsSettings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[embedding]\nmodel = \"no-such-model\"\n"), 0o600))

	svcs, err := bootstrap(context.Background(), dir)

	require.NoError(t, err)
	require.NotNil(t, svcs.Settings)
	assert.Nil(t, svcs.Embedding)
	assert.ErrorIs(t, svcs.EmbeddingErr, domain.ErrUnknownModel)

	require.NoError(t, svcs.Settings.SetModel(domain.ModelAllMiniLML6V2))
	again, err := bootstrap(context.Background(), dir)
	require.NoError(t, err)
	require.NotNil(t, again.Embedding)
	assert.Equal(t, domain.PoolingMean, again.Embedding.ModelSpec().Pooling)
}

func TestBootstrap_DimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[embedding]\nmodel = \"bge-small-en-v1.5-q\"\ndimension = 768\n"), 0o600))

	svcs, err := bootstrap(context.Background(), dir)

	require.NoError(t, err)
	assert.Nil(t, svcs.Embedding)
	var mismatch *domain.DimensionMismatchError
	assert.ErrorAs(t, svcs.EmbeddingErr, &mismatch)
}

func TestBootstrap_SQLiteCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[cache]\nenabled = true\nbackend = \"sqlite\"\n"), 0o600))

	svcs, err := bootstrap(context.Background(), dir)

	require.NoError(t, err)
	_, ok := svcs.Embedding.(*services.CachedEmbeddingService)
	assert.True(t, ok, "expected a cached service")
	assert.FileExists(t, filepath.Join(dir, "cache", "embeddings.db"))
	assert.NoError(t, svcs.Close())
}

func TestBootstrap_MemoryCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[cache]\nenabled = true\nbackend = \"memory\"\n"), 0o600))

	svcs, err := bootstrap(context.Background(), dir)

	require.NoError(t, err)
	_, ok := svcs.Embedding.(*services.CachedEmbeddingService)
	assert.True(t, ok, "expected a cached service")
	assert.NoError(t, svcs.Close())
}

func newInfoServer(t *testing.T, maxInput int, healthy bool) *tei.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /info", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model_id":"BAAI/bge-small-en-v1.5","model_dtype":"float16","max_input_length":` +
			strconv.Itoa(maxInput) + `,"version":"1.5.0"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return tei.NewClient(tei.Config{BaseURL: server.URL})
}

func TestLoadModel(t *testing.T) {
	spec, _ := domain.LookupModel(domain.DefaultModel)

	t.Run("compatible server", func(t *testing.T) {
		model, err := loadModel(context.Background(), newInfoServer(t, 512, true), spec)
		require.NoError(t, err)
		assert.NotNil(t, model.Tokenizer)
		assert.NotNil(t, model.Encoder)
	})

	t.Run("server limit too small", func(t *testing.T) {
		_, err := loadModel(context.Background(), newInfoServer(t, 256, true), spec)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unhealthy server", func(t *testing.T) {
		_, err := loadModel(context.Background(), newInfoServer(t, 512, false), spec)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}
