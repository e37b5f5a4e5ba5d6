package driving

import "github.com/custodia-labs/folio/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.Settings, error)

	// Save persists application settings.
	Save(settings *domain.Settings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// ConfigPath returns where settings are stored.
	ConfigPath() string
}
