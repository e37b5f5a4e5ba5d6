package services

import (
	"fmt"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyDefaultScale      = "viewer.default_scale"
	keyPageGap           = "viewer.page_gap"
	keyPreRenderPages    = "viewer.prerender_pages"
	keyScaleThrottle     = "viewer.scale_throttle_ms"
	keyFindCaseSensitive = "find.case_sensitive"
	keyFindEntireWord    = "find.entire_word"
	keyFindHighlightAll  = "find.highlight_all"
	keyAnnotationColor   = "annotations.color"
	keyAnnotationOpacity = "annotations.opacity"
	keyAnnotationStore   = "annotations.store"
	keyDataDir           = "data.dir"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
// Missing or invalid values fall back to defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Viewer: domain.ViewerSettings{
			DefaultScale:    s.getScale(defaults.Viewer.DefaultScale),
			PageGap:         s.getFloat(keyPageGap, defaults.Viewer.PageGap),
			PreRenderPages:  s.getInt(keyPreRenderPages, defaults.Viewer.PreRenderPages),
			ScaleThrottleMS: s.getInt(keyScaleThrottle, defaults.Viewer.ScaleThrottleMS),
		},
		Find: domain.FindSettings{
			CaseSensitive: s.getBool(keyFindCaseSensitive, defaults.Find.CaseSensitive),
			EntireWord:    s.getBool(keyFindEntireWord, defaults.Find.EntireWord),
			HighlightAll:  s.getBool(keyFindHighlightAll, defaults.Find.HighlightAll),
		},
		Annotations: domain.AnnotationSettings{
			Color:   s.getColor(defaults.Annotations.Color),
			Opacity: s.getOpacity(defaults.Annotations.Opacity),
			Store:   s.getStore(defaults.Annotations.Store),
		},
		DataDir: s.configStore.GetString(keyDataDir), // No default - empty means next to the config
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}

	values := []struct {
		key   string
		value any
	}{
		{keyDefaultScale, settings.Viewer.DefaultScale},
		{keyPageGap, settings.Viewer.PageGap},
		{keyPreRenderPages, settings.Viewer.PreRenderPages},
		{keyScaleThrottle, settings.Viewer.ScaleThrottleMS},
		{keyFindCaseSensitive, settings.Find.CaseSensitive},
		{keyFindEntireWord, settings.Find.EntireWord},
		{keyFindHighlightAll, settings.Find.HighlightAll},
		{keyAnnotationColor, settings.Annotations.Color},
		{keyAnnotationOpacity, settings.Annotations.Opacity},
		{keyAnnotationStore, settings.Annotations.Store.String()},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	if settings.DataDir != "" {
		if err := s.configStore.Set(keyDataDir, settings.DataDir); err != nil {
			return fmt.Errorf("save %s: %w", keyDataDir, err)
		}
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return *domain.DefaultSettings()
}

// ConfigPath returns the configuration file path.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetFloat(key)
	if val < 0 {
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

func (s *SettingsService) getScale(defaultVal string) string {
	val := s.configStore.GetString(keyDefaultScale)
	if val == "" {
		return defaultVal
	}
	if _, _, err := domain.ParseScale(val); err != nil {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getColor(defaultVal string) string {
	val := s.configStore.GetString(keyAnnotationColor)
	if val == "" {
		return defaultVal
	}
	if _, err := domain.ParseColor(val); err != nil {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getOpacity(defaultVal float64) float64 {
	val := s.getFloat(keyAnnotationOpacity, defaultVal)
	if val <= 0 || val > 1 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getStore(defaultVal domain.AnnotationStoreKind) domain.AnnotationStoreKind {
	val := s.configStore.GetString(keyAnnotationStore)
	if val == "" {
		return defaultVal
	}
	kind := domain.AnnotationStoreKind(val)
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}
