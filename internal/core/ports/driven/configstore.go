package driven

// ConfigStore holds flat, dot-separated settings keys such as
// "viewer.default_scale". The settings service applies defaults, so getters
// return zero values for missing keys or mismatched types.
type ConfigStore interface {
	// Get returns the raw value and whether the key exists.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int

	// GetFloat also accepts integer values.
	GetFloat(key string) float64

	GetBool(key string) bool

	// Set stores a value. File-backed stores write it through.
	Set(key string, value any) error

	// Save writes the current values to storage.
	Save() error

	// Load replaces the current values with those in storage.
	Load() error

	// Path identifies where values are stored.
	Path() string
}
