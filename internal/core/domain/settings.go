package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// CacheBackend identifies where computed embeddings are cached.
type CacheBackend string

// Available cache backends.
const (
	// CacheBackendMemory keeps embeddings for the lifetime of the process.
	CacheBackendMemory CacheBackend = "memory"

	// CacheBackendSQLite persists embeddings in a local database.
	CacheBackendSQLite CacheBackend = "sqlite"
)

// IsValid returns true if the cache backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheBackendMemory, CacheBackendSQLite:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b CacheBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b CacheBackend) Description() string {
	switch b {
	case CacheBackendMemory:
		return "Memory (per process)"
	case CacheBackendSQLite:
		return "SQLite (persistent)"
	default:
		return unknownDescription
	}
}

// Default configuration values.
const (
	DefaultModel             = ModelBgeSmallEnV15Quantized
	DefaultBaseURL           = "http://localhost:8080"
	DefaultTimeout           = 60 * time.Second
	DefaultRequestsPerSecond = 0 // unlimited
)

// EmbeddingSettings holds inference backend and model configuration.
type EmbeddingSettings struct {
	// Model is the catalogued or custom model name.
	Model string

	// BaseURL is the inference server endpoint.
	BaseURL string

	// Dimension asserts the output dimension. Zero accepts the model's own.
	Dimension int

	// Pooling overrides the catalogue pooling mode. Required for custom models.
	Pooling PoolingMode

	// MaxInputLength overrides the encoder input limit (special tokens included).
	MaxInputLength int

	// PadTokenID, ClsTokenID and SepTokenID override the special token ids.
	PadTokenID *int64
	ClsTokenID *int64
	SepTokenID *int64

	// Concurrency bounds parallel batch items. Zero uses the CPU count.
	Concurrency int

	// Timeout bounds a single request to the inference server.
	Timeout time.Duration

	// RequestsPerSecond limits the request rate. Zero disables limiting.
	RequestsPerSecond float64
}

// IsConfigured returns true if a model and endpoint are set.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Model != "" && e.BaseURL != ""
}

// ModelSpec resolves the model constants from the catalogue and overrides.
// A custom model needs both a dimension and a pooling mode.
func (e EmbeddingSettings) ModelSpec() (ModelSpec, error) {
	spec, ok := LookupModel(e.Model)
	if !ok {
		if e.Dimension <= 0 || !e.Pooling.IsValid() {
			return ModelSpec{}, fmt.Errorf("%w: %q (set embedding.dimension and embedding.pooling)",
				ErrUnknownModel, e.Model)
		}
		spec = ModelSpec{
			Name:              e.Model,
			MaxSequenceLength: DefaultMaxSequenceLength,
			Dimension:         e.Dimension,
			PadTokenID:        BertPadTokenID,
			ClsTokenID:        BertClsTokenID,
			SepTokenID:        BertSepTokenID,
		}
	}

	if e.Pooling != "" {
		spec.Pooling = e.Pooling
	}
	if e.MaxInputLength > 0 {
		spec.MaxSequenceLength = e.MaxInputLength
	}
	if e.PadTokenID != nil {
		spec.PadTokenID = *e.PadTokenID
	}
	if e.ClsTokenID != nil {
		spec.ClsTokenID = *e.ClsTokenID
	}
	if e.SepTokenID != nil {
		spec.SepTokenID = *e.SepTokenID
	}

	if err := spec.Validate(); err != nil {
		return ModelSpec{}, err
	}
	return spec, nil
}

// CacheSettings holds embedding cache configuration.
type CacheSettings struct {
	// Enabled turns the cache on.
	Enabled bool

	// Backend selects the cache implementation.
	Backend CacheBackend

	// Dir is the data directory for persistent backends.
	Dir string
}

// AppSettings aggregates all user-configurable settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	Cache     CacheSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Model:             DefaultModel,
			BaseURL:           DefaultBaseURL,
			Timeout:           DefaultTimeout,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Cache: CacheSettings{
			Enabled: false,
			Backend: CacheBackendMemory,
		},
	}
}

// AllCacheBackends returns all supported cache backends.
func AllCacheBackends() []CacheBackend {
	return []CacheBackend{CacheBackendMemory, CacheBackendSQLite}
}
