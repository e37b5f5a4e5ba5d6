package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Merge tolerances in document units.
const (
	// lineTolerance is how far apart the top and bottom edges of two
	// rectangles may be for them to count as the same text line.
	lineTolerance = 3.0

	// adjacencyGap is the largest horizontal gap bridged on one line.
	adjacencyGap = 2.0
)

// PageMetrics answers the scale and page size queries the geometry engine needs.
type PageMetrics interface {
	// Scale returns the current display scale.
	Scale() float64

	// UnitSize returns a page's size at scale 1.
	UnitSize(page int) (domain.Size, bool)
}

// GeometryEngine converts between screen pixels and page document units and
// turns pointer input into annotation geometry.
// It holds no state of its own.
type GeometryEngine struct {
	provider driven.ViewportGeometryProvider
	metrics  PageMetrics
}

// NewGeometryEngine creates a geometry engine.
func NewGeometryEngine(provider driven.ViewportGeometryProvider, metrics PageMetrics) *GeometryEngine {
	return &GeometryEngine{provider: provider, metrics: metrics}
}

// frame returns the page container's screen origin and the display scale.
func (g *GeometryEngine) frame(page int) (domain.Point, float64, error) {
	bounds, ok := g.provider.ContainerBounds(page)
	if !ok {
		return domain.Point{}, 0, fmt.Errorf("page %d: %w", page, domain.ErrPageOutOfRange)
	}
	scale := g.metrics.Scale()
	if scale <= 0 {
		return domain.Point{}, 0, fmt.Errorf("%w: %v", domain.ErrInvalidScale, scale)
	}
	return bounds.Origin(), scale, nil
}

// ScreenToDocument converts a screen point to the page's document units.
func (g *GeometryEngine) ScreenToDocument(p domain.Point, page int) (domain.Point, error) {
	origin, scale, err := g.frame(page)
	if err != nil {
		return domain.Point{}, err
	}
	return p.Sub(origin).Mul(1 / scale), nil
}

// DocumentToScreen converts a page document point to screen pixels.
func (g *GeometryEngine) DocumentToScreen(p domain.Point, page int) (domain.Point, error) {
	origin, scale, err := g.frame(page)
	if err != nil {
		return domain.Point{}, err
	}
	return p.Mul(scale).Add(origin), nil
}

// RectToScreen converts a document rectangle to screen pixels.
func (g *GeometryEngine) RectToScreen(r domain.Rect, page int) (domain.Rect, error) {
	origin, scale, err := g.frame(page)
	if err != nil {
		return domain.Rect{}, err
	}
	return domain.Rect{
		X:      r.X*scale + origin.X,
		Y:      r.Y*scale + origin.Y,
		Width:  r.Width * scale,
		Height: r.Height * scale,
	}, nil
}

// SelectionRectsToQuads turns text selection rectangles into highlight quads.
//
// Rectangles smaller than one screen pixel in either dimension, or wholly
// outside the page, are dropped. The rest are clipped to the page, merged
// until no pair qualifies (see MergeRects) and emitted top to bottom, then
// left to right.
func (g *GeometryEngine) SelectionRectsToQuads(screenRects []domain.Rect, page int) ([]domain.Quad, error) {
	origin, scale, err := g.frame(page)
	if err != nil {
		return nil, err
	}
	size, ok := g.metrics.UnitSize(page)
	if !ok {
		return nil, fmt.Errorf("page %d: %w", page, domain.ErrPageOutOfRange)
	}
	pageRect := domain.Rect{Width: size.Width, Height: size.Height}
	minSize := 1 / scale

	rects := make([]domain.Rect, 0, len(screenRects))
	for _, sr := range screenRects {
		r := domain.Rect{
			X:      (sr.X - origin.X) / scale,
			Y:      (sr.Y - origin.Y) / scale,
			Width:  sr.Width / scale,
			Height: sr.Height / scale,
		}
		if r.Width < minSize || r.Height < minSize {
			continue
		}
		clipped := r.Intersect(pageRect)
		if clipped.Empty() {
			continue
		}
		rects = append(rects, clipped)
	}

	merged := MergeRects(rects)
	quads := make([]domain.Quad, len(merged))
	for i, r := range merged {
		quads[i] = r.Quad()
	}
	return quads, nil
}

// MergeRects merges rectangles that overlap on both axes, or that sit on the
// same line (top and bottom within lineTolerance) with a horizontal gap below
// adjacencyGap. Merging repeats until no pair qualifies, so applying it to
// its own output changes nothing. The result is sorted top to bottom, then
// left to right.
func MergeRects(rects []domain.Rect) []domain.Rect {
	out := append([]domain.Rect(nil), rects...)

	for changed := true; changed; {
		changed = false
		for i := 0; i < len(out); i++ {
			for j := i + 1; j < len(out); j++ {
				if !shouldMerge(out[i], out[j]) {
					continue
				}
				out[i] = out[i].Union(out[j])
				out = append(out[:j], out[j+1:]...)
				changed = true
				j = i
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func shouldMerge(a, b domain.Rect) bool {
	overlapX := a.X < b.Right() && b.X < a.Right()
	overlapY := a.Y < b.Bottom() && b.Y < a.Bottom()
	if overlapX && overlapY {
		return true
	}

	sameLine := math.Abs(a.Y-b.Y) <= lineTolerance && math.Abs(a.Bottom()-b.Bottom()) <= lineTolerance
	gap := math.Max(a.X, b.X) - math.Min(a.Right(), b.Right())
	return sameLine && gap < adjacencyGap
}

// StrokesToDocument converts strokes point by point, keeping point order.
func (g *GeometryEngine) StrokesToDocument(strokes []domain.Stroke, page int) ([]domain.Stroke, error) {
	origin, scale, err := g.frame(page)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Stroke, len(strokes))
	for i, s := range strokes {
		pts := make([]domain.Point, len(s.Points))
		for j, p := range s.Points {
			pts[j] = p.Sub(origin).Mul(1 / scale)
		}
		out[i] = domain.Stroke{Points: pts}
	}
	return out, nil
}

// ThicknessToDocument converts a screen line width to document units.
func (g *GeometryEngine) ThicknessToDocument(thickness float64) float64 {
	scale := g.metrics.Scale()
	if scale <= 0 {
		return thickness
	}
	return thickness / scale
}

// StrokePathToQuads converts a screen pointer path of the given screen
// thickness into one thin quad per segment, in document units.
func (g *GeometryEngine) StrokePathToQuads(points []domain.Point, thickness float64, page int) ([]domain.Quad, error) {
	doc, err := g.StrokesToDocument([]domain.Stroke{{Points: points}}, page)
	if err != nil {
		return nil, err
	}
	return PathQuads(doc[0].Points, g.ThicknessToDocument(thickness)), nil
}

// PathQuads converts a path in document units into one quad per segment.
// Each quad is the segment offset by half the thickness along the segment's
// unit perpendicular on both sides. Zero-length segments are skipped.
//
// Corners are ordered so that for a left-to-right segment P1 and P2 are the
// top edge and P3 and P4 the bottom edge.
func PathQuads(points []domain.Point, thickness float64) []domain.Quad {
	half := thickness / 2
	var quads []domain.Quad
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		d := b.Sub(a)
		length := math.Hypot(d.X, d.Y)
		if length == 0 {
			continue
		}
		perp := domain.Point{X: -d.Y / length, Y: d.X / length}.Mul(half)
		quads = append(quads, domain.Quad{
			P1: a.Sub(perp),
			P2: b.Sub(perp),
			P3: a.Add(perp),
			P4: b.Add(perp),
		})
	}
	return quads
}

// QuadsBoundingRect returns the bounding box of all quad corners.
func QuadsBoundingRect(quads []domain.Quad) domain.Rect {
	pts := make([]domain.Point, 0, len(quads)*4)
	for _, q := range quads {
		p := q.Points()
		pts = append(pts, p[:]...)
	}
	return domain.BoundingRect(pts...)
}

// StrokesBoundingRect returns the bounding box of all stroke points grown by
// half the line thickness on every side.
func StrokesBoundingRect(strokes []domain.Stroke, thickness float64) domain.Rect {
	var pts []domain.Point
	for _, s := range strokes {
		pts = append(pts, s.Points...)
	}
	if len(pts) == 0 {
		return domain.Rect{}
	}
	r := domain.BoundingRect(pts...)
	half := thickness / 2
	return domain.RectFromEdges(r.X-half, r.Y-half, r.Right()+half, r.Bottom()+half)
}
