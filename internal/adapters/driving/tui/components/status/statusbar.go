// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// Bar displays the position, scale, find progress and keybinding hints.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	page      int
	pageCount int
	scale     float64

	query     string
	findState domain.FindState
	counts    domain.FindCounts

	message string
	err     error
	mode    messages.Mode
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		scale:  1,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.Announced:
		s.message = msg.Message
	case messages.ErrorOccurred:
		s.err = msg.Err
	case messages.ModeChanged:
		s.mode = msg.Mode
	case messages.ViewerEvent:
		if u, ok := msg.Event.Payload.(domain.FindUpdate); ok {
			s.findState, s.counts = u.State, u.Counts
		}
	}
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders position, scale and the latest message.
func (s *Bar) renderLeft() string {
	parts := []string{
		s.styles.Normal.Render(fmt.Sprintf("Page %d/%d", s.page, s.pageCount)),
		s.styles.Normal.Render(fmt.Sprintf("%d%%", int(math.Round(s.scale*100)))),
	}
	if s.query != "" {
		parts = append(parts, s.renderFind())
	}
	switch {
	case s.err != nil:
		parts = append(parts, s.styles.Error.Render(fmt.Sprintf("Error: %v", s.err)))
	case s.message != "":
		parts = append(parts, s.styles.Muted.Render(s.message))
	}
	return strings.Join(parts, "  ")
}

func (s *Bar) renderFind() string {
	switch s.findState {
	case domain.FindFound:
		return s.styles.Normal.Render(fmt.Sprintf("%q %d/%d", s.query, s.counts.Current, s.counts.Total))
	case domain.FindWrapped:
		return s.styles.Warning.Render(fmt.Sprintf("%q %d/%d wrapped", s.query, s.counts.Current, s.counts.Total))
	case domain.FindNotFound:
		return s.styles.Error.Render(fmt.Sprintf("%q not found", s.query))
	default:
		return s.styles.Muted.Render(fmt.Sprintf("%q searching...", s.query))
	}
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	switch {
	case s.mode == messages.ModeFind:
		bindings = s.keymap.PromptHelp()
	case s.query != "":
		bindings = s.keymap.FindHelp()
	default:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetPosition sets the current page, page count and scale.
func (s *Bar) SetPosition(page, pageCount int, scale float64) {
	s.page, s.pageCount, s.scale = page, pageCount, scale
}

// SetQuery sets the active query and resets find progress.
func (s *Bar) SetQuery(query string) {
	s.query = query
	s.findState = domain.FindPending
	s.counts = domain.FindCounts{}
}

// Query returns the active query.
func (s *Bar) Query() string {
	return s.query
}

// FindState returns the last find state and counts.
func (s *Bar) FindState() (domain.FindState, domain.FindCounts) {
	return s.findState, s.counts
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// Err returns the last error.
func (s *Bar) Err() error {
	return s.err
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear drops the message and error.
func (s *Bar) Clear() {
	s.message = ""
	s.err = nil
}
