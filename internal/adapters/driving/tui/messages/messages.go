// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/folio/internal/core/domain"
)

// ViewerEvent carries a notification from the viewer's event bus.
type ViewerEvent struct {
	Event domain.Event
}

// Announced carries a status message from the viewer's notifier.
type Announced struct {
	Message string
}

// FindRequested is a command to start or repeat a query.
type FindRequested struct {
	Query   string
	Options domain.FindOptions
}

// DocumentChanged is sent when the document file changed on disk.
type DocumentChanged struct {
	Path string
}

// Reloaded signals that a reload finished.
type Reloaded struct {
	Err error
}

// ModeChanged is sent when switching input modes.
type ModeChanged struct {
	Mode Mode
}

// Mode identifies how key presses are interpreted.
type Mode int

const (
	// ModeView scrolls and zooms the document.
	ModeView Mode = iota
	// ModeFind edits the find query.
	ModeFind
	// ModeHelp shows all keybindings.
	ModeHelp
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeView:
		return "view"
	case ModeFind:
		return "find"
	case ModeHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
