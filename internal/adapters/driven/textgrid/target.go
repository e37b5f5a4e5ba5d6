package textgrid

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Target implements the interface.
var _ driven.RenderTarget = (*Target)(nil)

// Target keeps the latest grid of every page.
type Target struct {
	cellW, cellH float64

	mu    sync.RWMutex
	grids map[int]*Grid
}

// NewTarget creates a target producing grids with the given cell size.
func NewTarget(cellW, cellH float64) *Target {
	return &Target{cellW: cellW, cellH: cellH, grids: make(map[int]*Grid)}
}

// Surface allocates a fresh grid for page, replacing any previous one.
func (t *Target) Surface(page int, size domain.Size) (driven.Surface, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("%w: grid %vx%v", domain.ErrInvalidInput, size.Width, size.Height)
	}
	g := NewGrid(size, t.cellW, t.cellH)

	t.mu.Lock()
	t.grids[page] = g
	t.mu.Unlock()
	return g, nil
}

// Page returns the latest grid of page.
func (t *Target) Page(page int) (*Grid, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	g, ok := t.grids[page]
	return g, ok
}

// Reset drops every grid.
func (t *Target) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.grids = make(map[int]*Grid)
}
