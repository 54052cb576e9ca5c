package driving

import "github.com/custodia-labs/sercha-embed/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetModel selects the embedding model.
	SetModel(model string) error

	// SetBaseURL sets the inference server endpoint.
	SetBaseURL(baseURL string) error

	// SetCache configures the embedding cache.
	SetCache(enabled bool, backend domain.CacheBackend) error

	// Validate checks that the current settings resolve to a usable model.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
