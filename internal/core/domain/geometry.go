package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point is a 2D coordinate in screen pixels or document units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul scales both coordinates by f.
func (p Point) Mul(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Mul scales both dimensions by f.
func (s Size) Mul(f float64) Size {
	return Size{Width: s.Width * f, Height: s.Height * f}
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
// It marshals to the [x, y, w, h] array used by the annotation contract.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// RectFromEdges builds a rectangle from its four edges.
func RectFromEdges(left, top, right, bottom float64) Rect {
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r (edges included).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Overlaps reports whether r and o share any area or touch along an edge.
func (r Rect) Overlaps(o Rect) bool {
	return r.X <= o.Right() && o.X <= r.Right() && r.Y <= o.Bottom() && o.Y <= r.Bottom()
}

// Intersect returns the overlapping part of r and o.
// The result is empty when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	left := math.Max(r.X, o.X)
	top := math.Max(r.Y, o.Y)
	right := math.Min(r.Right(), o.Right())
	bottom := math.Min(r.Bottom(), o.Bottom())
	if right < left || bottom < top {
		return Rect{}
	}
	return RectFromEdges(left, top, right, bottom)
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return RectFromEdges(
		math.Min(r.X, o.X),
		math.Min(r.Y, o.Y),
		math.Max(r.Right(), o.Right()),
		math.Max(r.Bottom(), o.Bottom()),
	)
}

// Quad returns the rectangle's corners in quad winding order.
func (r Rect) Quad() Quad {
	return Quad{
		P1: Point{X: r.X, Y: r.Y},
		P2: Point{X: r.Right(), Y: r.Y},
		P3: Point{X: r.X, Y: r.Bottom()},
		P4: Point{X: r.Right(), Y: r.Bottom()},
	}
}

// MarshalJSON encodes the rectangle as [x, y, w, h].
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{r.X, r.Y, r.Width, r.Height})
}

// UnmarshalJSON decodes the [x, y, w, h] form.
func (r *Rect) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("rect: %w", err)
	}
	if len(v) != 4 {
		return fmt.Errorf("rect: expected 4 values, got %d: %w", len(v), ErrInvalidInput)
	}
	*r = Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	return nil
}

// MarshalYAML encodes the rectangle as a [x, y, w, h] sequence.
func (r Rect) MarshalYAML() (any, error) {
	return []float64{r.X, r.Y, r.Width, r.Height}, nil
}

// UnmarshalYAML decodes the [x, y, w, h] sequence.
func (r *Rect) UnmarshalYAML(unmarshal func(any) error) error {
	var v []float64
	if err := unmarshal(&v); err != nil {
		return fmt.Errorf("rect: %w", err)
	}
	if len(v) != 4 {
		return fmt.Errorf("rect: expected 4 values, got %d: %w", len(v), ErrInvalidInput)
	}
	*r = Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	return nil
}

// Quad is a quadrilateral in document units.
// Points are always in the order top-left, top-right, bottom-left,
// bottom-right so consumers can rely on edge correspondence.
type Quad struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
	P3 Point `json:"p3"`
	P4 Point `json:"p4"`
}

// Points returns the four corners in winding order.
func (q Quad) Points() [4]Point {
	return [4]Point{q.P1, q.P2, q.P3, q.P4}
}

// Bounds returns the axis-aligned bounding box of the quad.
func (q Quad) Bounds() Rect {
	return BoundingRect(q.P1, q.P2, q.P3, q.P4)
}

// Stroke is one continuous pointer drag.
type Stroke struct {
	Points []Point `json:"points"`
}

// Bounds returns the bounding box of the stroke's points.
func (s Stroke) Bounds() Rect {
	return BoundingRect(s.Points...)
}

// BoundingRect returns the min/max box around pts.
// It returns the zero Rect for no points.
func BoundingRect(pts ...Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return RectFromEdges(minX, minY, maxX, maxY)
}
