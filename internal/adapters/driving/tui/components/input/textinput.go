// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
)

// FindInput is the single-line find prompt.
type FindInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewFindInput creates a blurred find prompt.
func NewFindInput(s *styles.Styles) *FindInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "text to find"
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 50

	return &FindInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the find input.
func (f *FindInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (f *FindInput) Update(msg tea.Msg) (*FindInput, tea.Cmd) {
	var cmd tea.Cmd
	f.textinput, cmd = f.textinput.Update(msg)
	return f, cmd
}

// View renders the prompt on one line.
func (f *FindInput) View() string {
	label := f.styles.Prompt.Render("/")
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, f.textinput.View())
}

// Value returns the current input value.
func (f *FindInput) Value() string {
	return f.textinput.Value()
}

// SetValue sets the input value.
func (f *FindInput) SetValue(value string) {
	f.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (f *FindInput) Focus() tea.Cmd {
	return f.textinput.Focus()
}

// Blur removes focus from the input.
func (f *FindInput) Blur() {
	f.textinput.Blur()
}

// Focused returns whether the input is focused.
func (f *FindInput) Focused() bool {
	return f.textinput.Focused()
}

// SetWidth sets the width of the prompt.
func (f *FindInput) SetWidth(width int) {
	f.width = width
	f.textinput.Width = max(width-3, 10)
}

// Width returns the current width.
func (f *FindInput) Width() int {
	return f.width
}
