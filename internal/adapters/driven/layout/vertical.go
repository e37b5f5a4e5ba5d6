package layout

import (
	"math"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Vertical implements the interface.
var _ driven.PageLayout = (*Vertical)(nil)

// Vertical is a single column of pages, centred horizontally, separated by a
// fixed gap.
type Vertical struct {
	mu       sync.RWMutex
	gap      float64
	pages    []domain.Rect
	content  domain.Size
	viewport domain.Size
	scroll   domain.Point
}

// NewVertical creates a layout with gap pixels around every page.
func NewVertical(gap float64) *Vertical {
	return &Vertical{gap: math.Max(gap, 0)}
}

// Layout places pages top to bottom at the given scale.
func (l *Vertical) Layout(sizes []domain.Size, scale float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var widest float64
	for _, s := range sizes {
		widest = math.Max(widest, s.Width*scale)
	}

	l.pages = make([]domain.Rect, len(sizes))
	y := l.gap
	for i, s := range sizes {
		w, h := s.Width*scale, s.Height*scale
		l.pages[i] = domain.Rect{X: l.gap + (widest-w)/2, Y: y, Width: w, Height: h}
		y += h + l.gap
	}
	if len(sizes) == 0 {
		y = 0
	}
	l.content = domain.Size{Width: widest + 2*l.gap, Height: y}
	l.clampLocked()
}

// ContainerBounds returns the page's rectangle in screen space.
func (l *Vertical) ContainerBounds(page int) (domain.Rect, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if page < 1 || page > len(l.pages) {
		return domain.Rect{}, false
	}
	r := l.pages[page-1]
	r.X -= l.scroll.X
	r.Y -= l.scroll.Y
	return r, true
}

// PageRect returns the page's rectangle in content space.
func (l *Vertical) PageRect(page int) (domain.Rect, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if page < 1 || page > len(l.pages) {
		return domain.Rect{}, false
	}
	return l.pages[page-1], true
}

// PageTop returns the content-space y of the page's top edge, 0 if unknown.
func (l *Vertical) PageTop(page int) float64 {
	r, ok := l.PageRect(page)
	if !ok {
		return 0
	}
	return r.Y
}

// PageAt returns the page under a content-space point.
func (l *Vertical) PageAt(p domain.Point) (int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i, r := range l.pages {
		if r.Contains(p) {
			return i + 1, true
		}
	}
	return 0, false
}

// ScrollOffset returns the content point at the top-left of the visible area.
func (l *Vertical) ScrollOffset() domain.Point {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.scroll
}

// ViewportSize returns the visible area size.
func (l *Vertical) ViewportSize() domain.Size {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.viewport
}

// ContentSize returns the size of all pages including gaps.
func (l *Vertical) ContentSize() domain.Size {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.content
}

// ScrollTo moves the visible area, clamped so it stays within the content.
func (l *Vertical) ScrollTo(p domain.Point) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scroll = p
	l.clampLocked()
}

// Resize changes the visible area size.
func (l *Vertical) Resize(size domain.Size) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.viewport = size
	l.clampLocked()
}

func (l *Vertical) clampLocked() {
	maxX := math.Max(0, l.content.Width-l.viewport.Width)
	maxY := math.Max(0, l.content.Height-l.viewport.Height)
	l.scroll.X = math.Min(math.Max(l.scroll.X, 0), maxX)
	l.scroll.Y = math.Min(math.Max(l.scroll.Y, 0), maxY)
}
