package mcp

import (
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Viewer describes the open document.
	Viewer driving.ViewerService

	// Find searches and extracts page text.
	Find driving.FindService

	// Annotations lists stored annotations. Optional.
	Annotations driving.AnnotationService
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
	return nil
}
