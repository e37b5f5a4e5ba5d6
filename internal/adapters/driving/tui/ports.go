// Package tui provides an interactive terminal viewer for folio.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"context"

	"github.com/custodia-labs/folio/internal/adapters/driven/textgrid"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// PageGrids returns the latest rendered grid of a page.
type PageGrids interface {
	Page(page int) (*textgrid.Grid, bool)
}

// PageBounds places pages on screen.
type PageBounds interface {
	ContainerBounds(page int) (domain.Rect, bool)
}

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Viewer drives scrolling, scale and rendering.
	Viewer driving.ViewerService

	// Find searches the document.
	Find driving.FindService

	// Pages holds the rendered page grids.
	Pages PageGrids

	// Layout gives each page's screen rectangle.
	Layout PageBounds

	// Reload re-opens the document. Optional.
	Reload func(ctx context.Context) error
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Viewer == nil {
		return ErrMissingViewer
	}
	if p.Find == nil {
		return ErrMissingFind
	}
	if p.Pages == nil || p.Layout == nil {
		return ErrMissingPages
	}
	return nil
}
