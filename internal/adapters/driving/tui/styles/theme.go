// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette and styling for the TUI.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Gutter is the background between and around pages.
	Gutter lipgloss.Color

	// Paper is the page background where a page has no fill of its own.
	Paper lipgloss.Color

	// Ink is the default text colour on a page.
	Ink lipgloss.Color

	// Placeholder is drawn over pages that are not rendered yet.
	Placeholder lipgloss.Color

	// Match is the background of find matches.
	Match lipgloss.Color

	// Selected is the background of the selected match.
	Selected lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Warning indicates a wrapped search.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:     lipgloss.Color("#7C3AED"), // Purple
		Gutter:      lipgloss.Color("#1E1E2E"), // Dark gray
		Paper:       lipgloss.Color("#F5F5F4"), // Off white
		Ink:         lipgloss.Color("#1C1917"), // Near black
		Placeholder: lipgloss.Color("#A8A29E"), // Stone
		Match:       lipgloss.Color("#FDE047"), // Yellow
		Selected:    lipgloss.Color("#FB923C"), // Orange
		Muted:       lipgloss.Color("#6C7086"), // Medium gray
		Warning:     lipgloss.Color("#F9E2AF"), // Yellow
		Error:       lipgloss.Color("#F38BA8"), // Red
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Gutter fills the screen outside pages.
	Gutter lipgloss.Style

	// Paper is the base style of page cells.
	Paper lipgloss.Style

	// Placeholder marks pages still rendering.
	Placeholder lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Prompt style for the find label.
	Prompt lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// Warning style for warnings.
	Warning lipgloss.Style

	// StatusBar style for the status bar.
	StatusBar lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Gutter: lipgloss.NewStyle().
			Background(theme.Gutter),

		Paper: lipgloss.NewStyle().
			Foreground(theme.Ink).
			Background(theme.Paper),

		Placeholder: lipgloss.NewStyle().
			Foreground(theme.Placeholder).
			Background(theme.Paper),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Paper),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Prompt: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#181825")).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
