package pdf

import (
	"context"
	"fmt"
	"image/color"
	"sync"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// US Letter, used when a page has no usable box.
const (
	defaultWidth  = 612.0
	defaultHeight = 792.0
)

var (
	paperColor = color.White
	inkColor   = color.Black
	fillColor  = color.Gray{Y: 0xdd}
)

// Ensure Document implements the interface.
var _ driven.Document = (*Document)(nil)

// Document is an open PDF. Pages are built on first use and cached.
type Document struct {
	ctx         *model.Context
	fingerprint string

	// The content reader is not safe for concurrent use.
	readerMu sync.Mutex
	reader   *lpdf.Reader

	mu     sync.Mutex
	pages  map[int]*Page
	closed bool
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// Fingerprint returns the SHA-256 of the file content.
func (d *Document) Fingerprint() string {
	return d.fingerprint
}

// Page returns page n (1-based).
func (d *Document) Page(ctx context.Context, n int) (driven.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 1 || n > d.ctx.PageCount {
		return nil, fmt.Errorf("%w: %d", domain.ErrPageOutOfRange, n)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, domain.ErrNoDocument
	}
	if p, ok := d.pages[n]; ok {
		return p, nil
	}

	_, _, attrs, err := d.ctx.PageDict(n, false)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", n, err)
	}
	p := &Page{doc: d, number: n, decode: d.content}
	p.box, p.rotation = pageGeometry(attrs)
	d.pages[n] = p
	return p, nil
}

// Close releases cached pages. Further page requests fail.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.pages = nil
	return nil
}

// content decodes page n's content stream.
// The decoder panics on some malformed streams; that is reported as an error.
func (d *Document) content(n int) (c lpdf.Content, err error) {
	d.readerMu.Lock()
	defer d.readerMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode page %d: %v", n, r)
		}
	}()

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return lpdf.Content{}, fmt.Errorf("page %d not found", n)
	}
	return page.Content(), nil
}

// pageGeometry picks the visible box (crop box, else media box) and rotation.
func pageGeometry(attrs *model.InheritedPageAttrs) (box, int) {
	b := box{urx: defaultWidth, ury: defaultHeight}
	if attrs == nil {
		return b, 0
	}
	var r *types.Rectangle
	switch {
	case attrs.CropBox != nil && attrs.CropBox.Width() > 0 && attrs.CropBox.Height() > 0:
		r = attrs.CropBox
	case attrs.MediaBox != nil && attrs.MediaBox.Width() > 0 && attrs.MediaBox.Height() > 0:
		r = attrs.MediaBox
	}
	if r != nil {
		b = box{llx: r.LL.X, lly: r.LL.Y, urx: r.UR.X, ury: r.UR.Y}
	}
	return b, domain.NormalizeRotation(attrs.Rotate)
}

// box is a page box in PDF user space (bottom-left origin).
type box struct {
	llx, lly, urx, ury float64
}

func (b box) width() float64  { return b.urx - b.llx }
func (b box) height() float64 { return b.ury - b.lly }

// Ensure Page implements the interface.
var _ driven.Page = (*Page)(nil)

// Page is one PDF page.
type Page struct {
	doc      *Document
	number   int
	box      box
	rotation int

	decode func(n int) (lpdf.Content, error)

	// A failed decode leaves loaded false, so the next use tries again.
	mu     sync.Mutex
	loaded bool
	runs   []domain.TextRun
	fills  []domain.Rect
}

// Number returns the 1-based page number.
func (p *Page) Number() int {
	return p.number
}

// UnitViewport returns the rotated page size in points.
func (p *Page) UnitViewport() domain.PageViewport {
	w, h := p.box.width(), p.box.height()
	if p.rotation == 90 || p.rotation == 270 {
		w, h = h, w
	}
	return domain.PageViewport{Width: w, Height: h, Scale: 1, Rotation: p.rotation}
}

// TextRuns returns the page text grouped into runs.
func (p *Page) TextRuns(ctx context.Context) ([]domain.TextRun, error) {
	if err := p.load(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.TextRun, len(p.runs))
	copy(out, p.runs)
	return out, nil
}

// RenderInto paints the page: paper, filled rectangles, then text.
func (p *Page) RenderInto(ctx context.Context, s driven.Surface, vp domain.PageViewport) error {
	if err := p.load(ctx); err != nil {
		return err
	}
	scale := vp.Scale
	if scale <= 0 {
		scale = 1
	}

	s.Clear(paperColor)
	for _, r := range p.fills {
		s.FillRect(scaleRect(r, scale), fillColor)
	}
	for i, run := range p.runs {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		r := scaleRect(run.Rect, scale)
		s.DrawText(r.Origin(), r.Height, run.Text, inkColor)
	}
	return nil
}

func (p *Page) load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		return nil
	}

	content, err := p.decode(p.number)
	if err != nil {
		return err
	}
	t := transform{box: p.box, rotation: p.rotation}
	var runs []domain.TextRun
	for _, run := range groupGlyphs(content.Text) {
		run.Rect = t.userRect(run.Rect)
		runs = append(runs, run)
	}
	var fills []domain.Rect
	for _, r := range content.Rect {
		rect := domain.RectFromEdges(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
		fills = append(fills, t.userRect(rect))
	}
	p.runs, p.fills, p.loaded = runs, fills, true
	return nil
}

func scaleRect(r domain.Rect, scale float64) domain.Rect {
	return domain.Rect{X: r.X * scale, Y: r.Y * scale, Width: r.Width * scale, Height: r.Height * scale}
}
