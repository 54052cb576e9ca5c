package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/custodia-labs/sercha-embed/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-embed/internal/adapters/driven/embedding/tei"
	"github.com/custodia-labs/sercha-embed/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-embed/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-embed/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-embed/internal/core/domain"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-embed/internal/core/services"
	"github.com/custodia-labs/sercha-embed/internal/logger"
	"github.com/custodia-labs/sercha-embed/internal/observability"
)

// memoryCacheEntries bounds the in-process embedding cache.
const memoryCacheEntries = 10_000

// healthTimeout bounds the readiness check made when the model first loads.
const healthTimeout = 10 * time.Second

// closer is an embedding cache that holds resources.
type closer interface {
	driven.EmbeddingCache
	Close() error
}

// bootstrap opens the config in configDir and builds the services.
// A model that cannot be resolved leaves the settings usable and
// reports the reason through Services.EmbeddingErr.
func bootstrap(ctx context.Context, configDir string) (*cli.Services, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	logger.Debug("Config: %s", store.Path())

	settingsService := services.NewSettingsService(store)
	svcs := &cli.Services{Settings: settingsService}

	settings, err := settingsService.Get()
	if err != nil {
		svcs.EmbeddingErr = err
		return svcs, nil
	}

	embedding, closeFn, err := buildEmbedding(ctx, configDir, settings)
	if err != nil {
		svcs.EmbeddingErr = err
		return svcs, nil
	}
	svcs.Embedding = embedding
	svcs.Close = closeFn
	return svcs, nil
}

// buildEmbedding wires the TEI backend, the chunking service and the
// optional cache for settings.
func buildEmbedding(
	ctx context.Context,
	configDir string,
	settings *domain.AppSettings,
) (driving.EmbeddingService, func() error, error) {
	spec, err := settings.Embedding.ModelSpec()
	if err != nil {
		return nil, nil, err
	}

	client := tei.NewClient(tei.Config{
		BaseURL:           settings.Embedding.BaseURL,
		Timeout:           settings.Embedding.Timeout,
		RequestsPerSecond: settings.Embedding.RequestsPerSecond,
	})

	loader := services.NewModelLoader(func() (*services.Model, error) {
		return loadModel(ctx, client, spec)
	})

	metrics := observability.Global()
	core, err := services.NewEmbeddingService(loader, spec,
		services.WithConcurrency(settings.Embedding.Concurrency),
		services.WithKnownDimension(settings.Embedding.Dimension),
		services.WithMetrics(metrics),
	)
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	if !settings.Cache.Enabled {
		return core, client.Close, nil
	}

	cache, err := openCache(configDir, settings.Cache)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	logger.Debug("Cache: %s", settings.Cache.Backend)

	closeAll := func() error {
		return errors.Join(cache.Close(), client.Close())
	}
	return services.NewCachedEmbeddingService(core, cache, metrics), closeAll, nil
}

// loadModel checks the server is up and serves a compatible model.
func loadModel(ctx context.Context, client *tei.Client, spec domain.ModelSpec) (*services.Model, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrEmbeddingUnavailable, client.BaseURL(), err)
	}

	info, err := client.Info(ctx)
	if err != nil {
		logger.Warn("Could not read server info: %v", err)
	} else {
		logger.Debug("Server model %s (%s), max input %d", info.ModelID, info.ModelDType, info.MaxInputLength)
		if info.MaxInputLength > 0 && info.MaxInputLength < spec.MaxSequenceLength {
			return nil, fmt.Errorf("%w: server accepts %d tokens but %s needs %d",
				domain.ErrInvalidInput, info.MaxInputLength, spec.Name, spec.MaxSequenceLength)
		}
	}

	return &services.Model{
		Tokenizer: tei.NewTokenizer(client),
		Encoder:   tei.NewEncoder(client),
	}, nil
}

func openCache(configDir string, settings domain.CacheSettings) (closer, error) {
	switch settings.Backend {
	case domain.CacheBackendMemory:
		return memory.NewEmbeddingCache(memoryCacheEntries), nil
	case domain.CacheBackendSQLite:
		dir := settings.Dir
		if dir == "" && configDir != "" {
			dir = filepath.Join(configDir, "cache")
		}
		store, err := sqlite.NewStore(dir)
		if err != nil {
			return nil, fmt.Errorf("open embedding cache: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid cache backend: %s", settings.Backend)
	}
}
