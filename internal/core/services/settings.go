package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-embed/internal/core/domain"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-embed/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedDimension   = "embedding.dimension"
	keyEmbedPooling     = "embedding.pooling"
	keyEmbedMaxInputLen = "embedding.max_input_length"
	keyEmbedPadTokenID  = "embedding.pad_token_id"
	keyEmbedClsTokenID  = "embedding.cls_token_id"
	keyEmbedSepTokenID  = "embedding.sep_token_id"
	keyEmbedConcurrency = "embedding.concurrency"
	keyEmbedTimeout     = "embedding.timeout_seconds"
	keyEmbedRate        = "embedding.requests_per_second"
	keyCacheEnabled     = "cache.enabled"
	keyCacheBackend     = "cache.backend"
	keyCacheDir         = "cache.dir"
)

// configValue is one key written by Save; unset values are skipped.
type configValue struct {
	key   string
	value any
	set   bool
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	pooling, err := s.getPooling()
	if err != nil {
		return nil, err
	}

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.getString(keyEmbedBaseURL, defaults.Embedding.BaseURL),
			Dimension:         s.configStore.GetInt(keyEmbedDimension),
			Pooling:           pooling,
			MaxInputLength:    s.configStore.GetInt(keyEmbedMaxInputLen),
			PadTokenID:        s.getTokenID(keyEmbedPadTokenID),
			ClsTokenID:        s.getTokenID(keyEmbedClsTokenID),
			SepTokenID:        s.getTokenID(keyEmbedSepTokenID),
			Concurrency:       s.configStore.GetInt(keyEmbedConcurrency),
			Timeout:           s.getTimeout(defaults.Embedding.Timeout),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRate),
		},
		Cache: domain.CacheSettings{
			Enabled: s.getBool(keyCacheEnabled, defaults.Cache.Enabled),
			Backend: s.getCacheBackend(defaults.Cache.Backend),
			Dir:     s.configStore.GetString(keyCacheDir),
		},
	}

	return settings, nil
}

// Save persists application settings.
// Optional values left at their zero value are not written.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	e := settings.Embedding

	values := []configValue{
		{keyEmbedModel, e.Model, true},
		{keyEmbedBaseURL, e.BaseURL, true},
		{keyEmbedDimension, e.Dimension, e.Dimension > 0},
		{keyEmbedPooling, e.Pooling.String(), e.Pooling != ""},
		{keyEmbedMaxInputLen, e.MaxInputLength, e.MaxInputLength > 0},
		{keyEmbedConcurrency, e.Concurrency, e.Concurrency > 0},
		{keyEmbedTimeout, int(e.Timeout / time.Second), e.Timeout > 0},
		{keyEmbedRate, e.RequestsPerSecond, e.RequestsPerSecond > 0},
		{keyCacheEnabled, settings.Cache.Enabled, true},
		{keyCacheBackend, settings.Cache.Backend.String(), settings.Cache.Backend != ""},
		{keyCacheDir, settings.Cache.Dir, settings.Cache.Dir != ""},
	}
	for _, id := range []struct {
		key   string
		value *int64
	}{
		{keyEmbedPadTokenID, e.PadTokenID},
		{keyEmbedClsTokenID, e.ClsTokenID},
		{keyEmbedSepTokenID, e.SepTokenID},
	} {
		if id.value != nil {
			values = append(values, configValue{id.key, *id.value, true})
		}
	}

	for _, v := range values {
		if !v.set {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetModel selects the embedding model.
func (s *SettingsService) SetModel(model string) error {
	if model == "" {
		return fmt.Errorf("%w: model name is required", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Model = model
	if _, err := settings.Embedding.ModelSpec(); err != nil {
		return err
	}

	return s.Save(settings)
}

// SetBaseURL sets the inference server endpoint.
func (s *SettingsService) SetBaseURL(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("%w: base URL is required", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.BaseURL = baseURL
	return s.Save(settings)
}

// SetCache configures the embedding cache.
func (s *SettingsService) SetCache(enabled bool, backend domain.CacheBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid cache backend: %s", backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Cache.Enabled = enabled
	settings.Cache.Backend = backend
	return s.Save(settings)
}

// Validate checks that the current settings resolve to a usable model.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return domain.ErrEmbeddingUnavailable
	}

	if _, err := settings.Embedding.ModelSpec(); err != nil {
		return err
	}

	if settings.Cache.Enabled && !settings.Cache.Backend.IsValid() {
		return fmt.Errorf("invalid cache backend: %s", settings.Cache.Backend)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getTokenID(key string) *int64 {
	if _, exists := s.configStore.Get(key); !exists {
		return nil
	}
	id := int64(s.configStore.GetInt(key))
	return &id
}

func (s *SettingsService) getTimeout(defaultVal time.Duration) time.Duration {
	secs := s.configStore.GetInt(keyEmbedTimeout)
	if secs <= 0 {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

// getPooling returns an empty mode when unset, leaving the catalogue default.
func (s *SettingsService) getPooling() (domain.PoolingMode, error) {
	val := s.configStore.GetString(keyEmbedPooling)
	if val == "" {
		return "", nil
	}
	return domain.ParsePoolingMode(val)
}

func (s *SettingsService) getCacheBackend(defaultVal domain.CacheBackend) domain.CacheBackend {
	val := s.configStore.GetString(keyCacheBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.CacheBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
