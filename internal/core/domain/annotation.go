package domain

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"
)

// AnnotationType identifies the kind of markup an annotation draws.
type AnnotationType string

// Available annotation types.
const (
	AnnotationHighlight AnnotationType = "highlight"
	AnnotationUnderline AnnotationType = "underline"
	AnnotationStrikeOut AnnotationType = "strikeout"
	AnnotationSquiggly  AnnotationType = "squiggly"
	AnnotationInk       AnnotationType = "ink"
	AnnotationSquare    AnnotationType = "square"
)

// IsValid returns true if the annotation type is recognised.
func (t AnnotationType) IsValid() bool {
	switch t {
	case AnnotationHighlight, AnnotationUnderline, AnnotationStrikeOut,
		AnnotationSquiggly, AnnotationInk, AnnotationSquare:
		return true
	default:
		return false
	}
}

// UsesQuads returns true for text markup types carried by quads.
func (t AnnotationType) UsesQuads() bool {
	switch t {
	case AnnotationHighlight, AnnotationUnderline, AnnotationStrikeOut, AnnotationSquiggly:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t AnnotationType) String() string {
	return string(t)
}

// Annotation is the geometry exchanged with annotation persistence.
// All coordinates are document units with a top-left origin.
type Annotation struct {
	ID      string         `json:"id,omitempty" yaml:"id,omitempty"`
	Type    AnnotationType `json:"annotation_type" yaml:"annotation_type"`
	Page    int            `json:"page" yaml:"page"`
	Rect    Rect           `json:"rect" yaml:"rect"`
	Quads   []Quad         `json:"quads,omitempty" yaml:"quads,omitempty"`
	Strokes []Stroke       `json:"ink_strokes,omitempty" yaml:"ink_strokes,omitempty"`

	// Thickness is the ink line width in document units.
	Thickness float64 `json:"thickness,omitempty" yaml:"thickness,omitempty"`

	// Color is #RRGGBB or #RRGGBBAA; the alpha byte encodes opacity.
	Color string `json:"color,omitempty" yaml:"color,omitempty"`

	// Opacity is 0-1. Zero means unset.
	Opacity float64 `json:"opacity,omitempty" yaml:"opacity,omitempty"`

	Contents  string    `json:"contents,omitempty" yaml:"contents,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
}

// Validate checks the annotation against the exchange contract.
func (a *Annotation) Validate() error {
	if !a.Type.IsValid() {
		return fmt.Errorf("%w: annotation type %q", ErrInvalidInput, a.Type)
	}
	if a.Page < 1 {
		return fmt.Errorf("%w: page %d", ErrInvalidInput, a.Page)
	}
	if a.Type.UsesQuads() && len(a.Quads) == 0 {
		return fmt.Errorf("%w: %s annotation without quads", ErrInvalidInput, a.Type)
	}
	if a.Type == AnnotationInk && len(a.Strokes) == 0 {
		return fmt.Errorf("%w: ink annotation without strokes", ErrInvalidInput)
	}
	if a.Opacity < 0 || a.Opacity > 1 {
		return fmt.Errorf("%w: opacity %v outside 0-1", ErrInvalidInput, a.Opacity)
	}
	if a.Color != "" {
		if _, err := ParseColor(a.Color); err != nil {
			return err
		}
	}
	return nil
}

// EffectiveOpacity resolves the opacity to draw with.
// An explicit Opacity wins, then the colour's alpha byte, then 1.
func (a *Annotation) EffectiveOpacity() float64 {
	if a.Opacity > 0 {
		return a.Opacity
	}
	if c, err := ParseColor(a.Color); err == nil && len(strings.TrimPrefix(a.Color, "#")) == 8 {
		return float64(c.A) / 255
	}
	return 1
}

// ParseColor decodes #RRGGBB or #RRGGBBAA.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", ErrInvalidInput, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", ErrInvalidInput, s)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// FormatColor encodes a colour as #RRGGBB, adding the alpha byte when not opaque.
func FormatColor(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
