package domain

import "fmt"

// AnnotationStoreKind selects the annotation persistence backend.
type AnnotationStoreKind string

// Available annotation stores.
const (
	// AnnotationStoreSQLite persists annotations in a SQLite database.
	AnnotationStoreSQLite AnnotationStoreKind = "sqlite"

	// AnnotationStoreMemory keeps annotations for the process lifetime only.
	AnnotationStoreMemory AnnotationStoreKind = "memory"
)

// IsValid returns true if the store kind is recognised.
func (k AnnotationStoreKind) IsValid() bool {
	return k == AnnotationStoreSQLite || k == AnnotationStoreMemory
}

// String returns the string representation.
func (k AnnotationStoreKind) String() string {
	return string(k)
}

// ViewerSettings configures layout and rendering.
type ViewerSettings struct {
	// DefaultScale is a preset name or a number, as accepted by ParseScale.
	DefaultScale string `json:"default_scale"`

	// PageGap is the vertical space between pages in pixels.
	PageGap float64 `json:"page_gap"`

	// PreRenderPages is how many pages beyond each end of the visible range
	// are rendered ahead.
	PreRenderPages int `json:"prerender_pages"`

	// ScaleThrottleMS is the minimum interval between scheduling passes
	// started by the background loop.
	ScaleThrottleMS int `json:"scale_throttle_ms"`
}

// FindSettings holds the default find options.
type FindSettings struct {
	CaseSensitive bool `json:"case_sensitive"`
	EntireWord    bool `json:"entire_word"`
	HighlightAll  bool `json:"highlight_all"`
}

// Options converts the settings to find options.
func (f FindSettings) Options() FindOptions {
	return FindOptions{
		CaseSensitive: f.CaseSensitive,
		EntireWord:    f.EntireWord,
		HighlightAll:  f.HighlightAll,
	}
}

// AnnotationSettings holds annotation defaults.
type AnnotationSettings struct {
	Color   string              `json:"color"`
	Opacity float64             `json:"opacity"`
	Store   AnnotationStoreKind `json:"store"`
}

// Settings contains all user-configurable settings.
type Settings struct {
	Viewer      ViewerSettings     `json:"viewer"`
	Find        FindSettings       `json:"find"`
	Annotations AnnotationSettings `json:"annotations"`

	// DataDir holds the annotation database. Empty means ~/.folio.
	DataDir string `json:"data_dir"`
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		Viewer: ViewerSettings{
			DefaultScale:    string(ScaleAuto),
			PageGap:         10,
			PreRenderPages:  2,
			ScaleThrottleMS: 50,
		},
		Find: FindSettings{
			HighlightAll: true,
		},
		Annotations: AnnotationSettings{
			Color:   "#FFEB3B",
			Opacity: 0.4,
			Store:   AnnotationStoreSQLite,
		},
	}
}

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	if _, _, err := ParseScale(s.Viewer.DefaultScale); err != nil {
		return err
	}
	if s.Viewer.PreRenderPages < 0 {
		return ErrInvalidInput
	}
	if s.Viewer.PageGap < 0 {
		return ErrInvalidInput
	}
	if !s.Annotations.Store.IsValid() {
		return ErrInvalidInput
	}
	if s.Annotations.Opacity <= 0 || s.Annotations.Opacity > 1 {
		return fmt.Errorf("%w: opacity %v outside (0, 1]", ErrInvalidInput, s.Annotations.Opacity)
	}
	if _, err := ParseColor(s.Annotations.Color); err != nil {
		return err
	}
	return nil
}
