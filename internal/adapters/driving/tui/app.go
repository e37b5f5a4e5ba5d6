package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driven/textgrid"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/views/page"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// zoomStep is the factor applied by one zoom key press.
const zoomStep = 1.1

// chromeRows is the number of rows below the pages: prompt line and status bar.
const chromeRows = 2

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports
	inbox *Inbox

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	pageView  *page.View
	statusBar *status.Bar
	findInput *input.FindInput

	mode     messages.Mode
	findOpts domain.FindOptions
	title    string

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
// inbox must be the one wired to the viewer's bus and notifier.
func NewApp(ports *Ports, inbox *Inbox, findOpts domain.FindOptions) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if inbox == nil {
		inbox = NewInbox()
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	title := "folio"
	if info, err := ports.Viewer.Info(); err == nil && info.Title() != "" {
		title = "folio - " + info.Title()
	}

	return &App{
		ports:     ports,
		inbox:     inbox,
		ctx:       context.Background(),
		styles:    s,
		keymap:    km,
		pageView:  page.NewView(s, textgrid.CellWidth, textgrid.CellHeight),
		statusBar: status.NewBar(s, km),
		findInput: input.NewFindInput(s),
		findOpts:  findOpts,
		title:     title,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle(a.title),
		a.inbox.Wait(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.mode {
		case messages.ModeFind:
			return a.updateFind(msg)
		case messages.ModeHelp:
			a.setMode(messages.ModeView)
			return a, nil
		default:
			return a.updateView(msg)
		}

	case messages.ViewerEvent:
		a.statusBar.Update(msg)
		if msg.Event.Type == domain.EventDocumentLoaded {
			a.ports.Viewer.Update()
		}
		a.syncStatus()
		return a, a.inbox.Wait()

	case messages.Announced:
		a.statusBar.Update(msg)
		return a, a.inbox.Wait()

	case messages.FindRequested:
		a.statusBar.SetQuery(msg.Query)
		a.ports.Find.Find(msg.Query, msg.Options)
		return a, nil

	case messages.DocumentChanged:
		return a, tea.Batch(a.inbox.Wait(), a.reload())

	case messages.Reloaded:
		if msg.Err != nil {
			a.statusBar.Update(messages.ErrorOccurred{Err: msg.Err})
			return a, nil
		}
		a.statusBar.Clear()
		a.statusBar.Update(messages.Announced{Message: "Reloaded"})
		if q := a.statusBar.Query(); q != "" {
			a.statusBar.SetQuery(q)
			a.ports.Find.Find(q, a.findOpts)
		}
		a.ports.Viewer.Update()
		a.syncStatus()
		return a, nil

	case messages.ErrorOccurred:
		a.statusBar.Update(msg)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	if a.mode == messages.ModeFind {
		var cmd tea.Cmd
		a.findInput, cmd = a.findInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

// updateView handles keys while reading the document.
func (a *App) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := a.ports.Viewer
	km := a.keymap
	lineHeight := textgrid.CellHeight
	screen := a.pageView.PixelSize().Height

	switch {
	case key.Matches(msg, km.Quit):
		return a, tea.Quit
	case key.Matches(msg, km.Help):
		a.setMode(messages.ModeHelp)
	case key.Matches(msg, km.Down):
		v.ScrollBy(0, lineHeight)
	case key.Matches(msg, km.Up):
		v.ScrollBy(0, -lineHeight)
	case key.Matches(msg, km.PageDown):
		v.ScrollBy(0, max(screen-lineHeight, lineHeight))
	case key.Matches(msg, km.PageUp):
		v.ScrollBy(0, -max(screen-lineHeight, lineHeight))
	case key.Matches(msg, km.First):
		a.goTo(1)
	case key.Matches(msg, km.Last):
		a.goTo(v.PageCount())
	case key.Matches(msg, km.ZoomIn):
		v.SetScaleValue(v.Scale() * zoomStep)
	case key.Matches(msg, km.ZoomOut):
		v.SetScaleValue(v.Scale() / zoomStep)
	case key.Matches(msg, km.ActualSize):
		v.SetScaleValue(1)
	case key.Matches(msg, km.FitWidth):
		if err := v.SetScale(string(domain.ScalePageWidth)); err != nil {
			a.statusBar.Update(messages.ErrorOccurred{Err: err})
		}
	case key.Matches(msg, km.Find):
		a.setMode(messages.ModeFind)
		a.findInput.SetValue(a.statusBar.Query())
		return a, a.findInput.Focus()
	case key.Matches(msg, km.FindNext):
		if a.statusBar.Query() != "" {
			a.ports.Find.FindNext()
		}
	case key.Matches(msg, km.FindPrevious):
		if a.statusBar.Query() != "" {
			a.ports.Find.FindPrevious()
		}
	default:
		return a, nil
	}
	a.syncStatus()
	return a, nil
}

// updateFind handles keys while the find prompt is open.
func (a *App) updateFind(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keymap.Cancel):
		a.findInput.Blur()
		a.setMode(messages.ModeView)
		return a, nil
	case key.Matches(msg, a.keymap.Submit):
		query := strings.TrimSpace(a.findInput.Value())
		a.findInput.Blur()
		a.setMode(messages.ModeView)
		return a, func() tea.Msg {
			return messages.FindRequested{Query: query, Options: a.findOpts}
		}
	}
	var cmd tea.Cmd
	a.findInput, cmd = a.findInput.Update(msg)
	return a, cmd
}

func (a *App) goTo(n int) {
	if err := a.ports.Viewer.GoToPage(n); err != nil {
		a.statusBar.Update(messages.ErrorOccurred{Err: err})
	}
}

func (a *App) setMode(m messages.Mode) {
	a.mode = m
	a.statusBar.Update(messages.ModeChanged{Mode: m})
}

// reload re-opens the document in the background.
func (a *App) reload() tea.Cmd {
	if a.ports.Reload == nil {
		return nil
	}
	ctx := a.ctx
	reload := a.ports.Reload
	return func() tea.Msg {
		return messages.Reloaded{Err: reload(ctx)}
	}
}

func (a *App) resize(width, height int) {
	a.width, a.height = width, height
	a.ready = true
	a.pageView.SetDimensions(width, max(height-chromeRows, 1))
	a.statusBar.SetWidth(width)
	a.findInput.SetWidth(width)

	px := a.pageView.PixelSize()
	a.ports.Viewer.Resize(px.Width, px.Height)
	a.syncStatus()
}

func (a *App) syncStatus() {
	v := a.ports.Viewer
	a.statusBar.SetPosition(v.CurrentPage(), v.PageCount(), v.Scale())
}

// frame collects what the page view needs for the visible range.
func (a *App) frame() page.Frame {
	visible := a.ports.Viewer.VisiblePages()
	var pages []int
	if !visible.Empty() {
		for p := visible.First; p <= visible.Last; p++ {
			pages = append(pages, p)
		}
	}
	return page.Frame{
		Pages:      pages,
		Scale:      a.ports.Viewer.Scale(),
		Bounds:     a.ports.Layout.ContainerBounds,
		Grid:       a.ports.Pages.Page,
		Highlights: a.ports.Find.PageHighlightRects,
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var line string
	switch a.mode {
	case messages.ModeFind:
		line = a.findInput.View()
	case messages.ModeHelp:
		line = a.helpLine()
	}

	return a.pageView.Render(a.frame()) + "\n" + line + "\n" + a.statusBar.View()
}

func (a *App) helpLine() string {
	var parts []string
	for _, group := range a.keymap.FullHelp() {
		for _, b := range group {
			h := b.Help()
			parts = append(parts, h.Key+" "+h.Desc)
		}
	}
	return a.styles.Muted.Render(strings.Join(parts, " · "))
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Mode returns the current input mode.
func (a *App) Mode() messages.Mode {
	return a.mode
}

// Query returns the active find query.
func (a *App) Query() string {
	return a.statusBar.Query()
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.resize(width, height)
}
