package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderState is a page's position in the rendering state machine.
// Transitions: Initial -> Running -> Finished, and Running -> Initial on
// failure or cancellation.
type RenderState int

const (
	// RenderInitial means the page has no current visual output.
	RenderInitial RenderState = iota

	// RenderRunning means the page is being rendered.
	RenderRunning

	// RenderFinished means the page was rendered at its RenderedScale.
	RenderFinished
)

// String returns the state name.
func (s RenderState) String() string {
	switch s {
	case RenderInitial:
		return "initial"
	case RenderRunning:
		return "running"
	case RenderFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// PageViewport is a page's visual extent at a given scale.
type PageViewport struct {
	// Width and Height are in pixels at Scale (document units when Scale is 1).
	Width  float64
	Height float64

	// Scale is the display scale the viewport was computed for.
	Scale float64

	// Rotation is the page rotation in degrees (0, 90, 180, 270).
	Rotation int
}

// WithScale returns the viewport recomputed for another scale.
func (v PageViewport) WithScale(scale float64) PageViewport {
	base := v.Scale
	if base <= 0 {
		base = 1
	}
	f := scale / base
	return PageViewport{
		Width:    v.Width * f,
		Height:   v.Height * f,
		Scale:    scale,
		Rotation: v.Rotation,
	}
}

// Size returns the viewport dimensions.
func (v PageViewport) Size() Size {
	return Size{Width: v.Width, Height: v.Height}
}

// NormalizeRotation maps any multiple of 90 degrees into [0, 360).
func NormalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg - deg%90
}

// Scale limits and layout constants.
const (
	DefaultScale     = 1.0
	MinScale         = 0.1
	MaxScale         = 10.0
	MaxAutoScale     = 1.25
	ScrollbarPadding = 40.0
	VerticalPadding  = 5.0
)

// ScalePreset is a named scale computed from the container size.
type ScalePreset string

// Available scale presets.
const (
	// ScaleNone marks an explicit numeric scale.
	ScaleNone ScalePreset = ""

	// ScaleAuto fits the page width, capped at MaxAutoScale; landscape pages fit the page.
	ScaleAuto ScalePreset = "auto"

	// ScalePageWidth fits the page width to the container.
	ScalePageWidth ScalePreset = "page-width"

	// ScalePageFit fits the whole page inside the container.
	ScalePageFit ScalePreset = "page-fit"

	// ScalePageActual shows the page at 100%.
	ScalePageActual ScalePreset = "page-actual"
)

// IsValid returns true if the preset is recognised.
func (p ScalePreset) IsValid() bool {
	switch p {
	case ScaleAuto, ScalePageWidth, ScalePageFit, ScalePageActual:
		return true
	default:
		return false
	}
}

// ParseScale parses either a preset name or a number.
// Numbers may be given as a factor ("1.5") or a percentage ("150%").
func ParseScale(value string) (ScalePreset, float64, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if p := ScalePreset(value); p.IsValid() {
		return p, 0, nil
	}

	factor := 1.0
	if strings.HasSuffix(value, "%") {
		value = strings.TrimSuffix(value, "%")
		factor = 0.01
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || n <= 0 {
		return ScaleNone, 0, fmt.Errorf("%w: %q", ErrInvalidScale, value)
	}
	return ScaleNone, ClampScale(n * factor), nil
}

// ClampScale bounds a scale to [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
