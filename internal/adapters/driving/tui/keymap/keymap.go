// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help toggles the help line.
	Help key.Binding

	// Up scrolls up one line.
	Up key.Binding

	// Down scrolls down one line.
	Down key.Binding

	// PageUp scrolls up one screen.
	PageUp key.Binding

	// PageDown scrolls down one screen.
	PageDown key.Binding

	// First jumps to the first page.
	First key.Binding

	// Last jumps to the last page.
	Last key.Binding

	// ZoomIn increases the scale.
	ZoomIn key.Binding

	// ZoomOut decreases the scale.
	ZoomOut key.Binding

	// ActualSize resets the scale to 100%.
	ActualSize key.Binding

	// FitWidth fits the page width to the screen.
	FitWidth key.Binding

	// Find opens the find prompt.
	Find key.Binding

	// FindNext selects the next match.
	FindNext key.Binding

	// FindPrevious selects the previous match.
	FindPrevious key.Binding

	// Submit confirms the find prompt.
	Submit key.Binding

	// Cancel closes the find prompt.
	Cancel key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", " "),
			key.WithHelp("pgdn", "page down"),
		),
		First: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first page"),
		),
		Last: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last page"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "zoom out"),
		),
		ActualSize: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "100%"),
		),
		FitWidth: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "fit width"),
		),
		Find: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "find"),
		),
		FindNext: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next"),
		),
		FindPrevious: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "previous"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "find"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Find, k.Help, k.Quit}
}

// FindHelp returns keybindings shown while a query is active.
func (k *KeyMap) FindHelp() []key.Binding {
	return []key.Binding{k.FindNext, k.FindPrevious, k.Find, k.Quit}
}

// PromptHelp returns keybindings shown while the find prompt is open.
func (k *KeyMap) PromptHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel}
}

// FullHelp returns the full list of keybindings for the help line.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.First, k.Last},
		{k.ZoomIn, k.ZoomOut, k.ActualSize, k.FitWidth},
		{k.Find, k.FindNext, k.FindPrevious, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
