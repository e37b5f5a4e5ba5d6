package cli

import (
	"context"
	"fmt"
	"image/color"
	"sync"

	"github.com/custodia-labs/folio/internal/adapters/driven/layout"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/core/services"
)

// Headless commands lay pages out in a fixed visible area.
const (
	headlessWidth  = 1024
	headlessHeight = 768
)

// Services holds the driven ports and services shared by all commands.
type Services struct {
	Settings    driving.SettingsService
	Loader      driven.DocumentLoader
	Annotations driven.AnnotationStore

	// Normalize is applied to extracted text and queries. May be nil.
	Normalize func(string) string

	// Close releases the services, such as the annotation database. May be nil.
	Close func() error
}

// ServicesFactory builds the services for a configuration directory.
// An empty directory means the default location.
type ServicesFactory func(configDir string) (*Services, error)

var (
	servicesMu      sync.Mutex
	servicesFactory ServicesFactory
	current         *Services
)

// SetServicesFactory sets how commands obtain their services.
func SetServicesFactory(f ServicesFactory) {
	servicesMu.Lock()
	defer servicesMu.Unlock()
	servicesFactory = f
	current = nil
}

// Shutdown closes services built during the run.
func Shutdown() error {
	servicesMu.Lock()
	svc := current
	current = nil
	servicesMu.Unlock()
	if svc == nil || svc.Close == nil {
		return nil
	}
	return svc.Close()
}

// loadServices builds the services on first use.
func loadServices() (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()
	if current != nil {
		return current, nil
	}
	if servicesFactory == nil {
		return nil, errNotConfigured
	}
	svc, err := servicesFactory(configDir)
	if err != nil {
		return nil, fmt.Errorf("initialise services: %w", err)
	}
	current = svc
	return svc, nil
}

// session is one open document with its viewer and annotations.
type session struct {
	viewer      *services.Viewer
	layout      *layout.Vertical
	annotations *services.AnnotationService
	settings    *domain.Settings
}

// sessionOptions customise openSession.
type sessionOptions struct {
	target    driven.RenderTarget
	announcer driven.Announcer
	width     float64
	height    float64
}

// openSession loads path into a new viewer.
func openSession(ctx context.Context, path string, opts sessionOptions) (*session, error) {
	svc, err := loadServices()
	if err != nil {
		return nil, err
	}
	settings, err := svc.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if opts.target == nil {
		opts.target = discardTarget{}
	}
	if opts.width <= 0 || opts.height <= 0 {
		opts.width, opts.height = headlessWidth, headlessHeight
	}

	vl := layout.NewVertical(settings.Viewer.PageGap)
	vl.Resize(domain.Size{Width: opts.width, Height: opts.height})
	viewer := services.NewViewer(services.ViewerDeps{
		Loader:    svc.Loader,
		Layout:    vl,
		Target:    opts.target,
		Announcer: opts.announcer,
		Normalize: svc.Normalize,
	}, settings.Viewer)

	if err := viewer.Load(ctx, path); err != nil {
		return nil, err
	}
	return &session{
		viewer:      viewer,
		layout:      vl,
		annotations: services.NewAnnotationService(viewer, svc.Annotations, settings.Annotations),
		settings:    settings,
	}, nil
}

// close closes the document.
func (s *session) close() {
	_ = s.viewer.Close()
}

// discardTarget hands out surfaces that draw nothing.
type discardTarget struct{}

func (discardTarget) Surface(_ int, size domain.Size) (driven.Surface, error) {
	return discardSurface{size: size}, nil
}

type discardSurface struct {
	size domain.Size
}

func (s discardSurface) Size() domain.Size { return s.size }
func (discardSurface) Clear(color.Color) {}
func (discardSurface) FillRect(domain.Rect, color.Color) {}
func (discardSurface) FillQuad(domain.Quad, color.Color) {}
func (discardSurface) DrawText(domain.Point, float64, string, color.Color) {}
