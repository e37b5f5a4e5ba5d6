package raster

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// MaxSide bounds either surface dimension in pixels.
const MaxSide = 16384

// Ensure Target implements the interface.
var _ driven.RenderTarget = (*Target)(nil)

// Target keeps the latest surface of every page.
type Target struct {
	mu       sync.RWMutex
	surfaces map[int]*Surface
}

// NewTarget creates an empty render target.
func NewTarget() *Target {
	return &Target{surfaces: make(map[int]*Surface)}
}

// Surface allocates a fresh surface for page, replacing any previous one.
func (t *Target) Surface(page int, size domain.Size) (driven.Surface, error) {
	w := int(math.Ceil(size.Width))
	h := int(math.Ceil(size.Height))
	if w <= 0 || h <= 0 || w > MaxSide || h > MaxSide {
		return nil, fmt.Errorf("%w: surface %dx%d", domain.ErrInvalidInput, w, h)
	}
	s := NewSurface(w, h)

	t.mu.Lock()
	t.surfaces[page] = s
	t.mu.Unlock()
	return s, nil
}

// Page returns the latest surface of page.
func (t *Target) Page(page int) (*Surface, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.surfaces[page]
	return s, ok
}

// Pages returns the number of pages holding a surface.
func (t *Target) Pages() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.surfaces)
}

// Reset drops every surface.
func (t *Target) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.surfaces = make(map[int]*Surface)
}

// WritePNG encodes page's surface as PNG.
func (t *Target) WritePNG(w io.Writer, page int) error {
	s, ok := t.Page(page)
	if !ok {
		return fmt.Errorf("page %d: %w", page, domain.ErrNotFound)
	}
	return EncodePNG(w, s.Image())
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
