package raster

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red   = color.RGBA{R: 0xff, A: 0xff}
)

func at(s *Surface, x, y int) color.RGBA {
	return s.Image().RGBAAt(x, y)
}

func TestSurface_SizeAndClear(t *testing.T) {
	s := NewSurface(40, 30)

	assert.Equal(t, domain.Size{Width: 40, Height: 30}, s.Size())

	s.Clear(color.White)
	assert.Equal(t, white, at(s, 0, 0))
	assert.Equal(t, white, at(s, 39, 29))
}

func TestSurface_FillRect(t *testing.T) {
	s := NewSurface(20, 20)
	s.Clear(color.White)

	s.FillRect(domain.Rect{X: 5, Y: 5, Width: 5, Height: 5}, red)

	assert.Equal(t, red, at(s, 5, 5))
	assert.Equal(t, red, at(s, 9, 9))
	assert.Equal(t, white, at(s, 10, 10))
	assert.Equal(t, white, at(s, 4, 5))
}

func TestSurface_FillRectClipsAndBlends(t *testing.T) {
	s := NewSurface(10, 10)
	s.Clear(color.White)

	s.FillRect(domain.Rect{X: -5, Y: -5, Width: 8, Height: 8}, color.NRGBA{A: 0x80})
	s.FillRect(domain.Rect{X: 50, Y: 50, Width: 8, Height: 8}, red)

	got := at(s, 0, 0)
	assert.InDelta(t, 0x7f, int(got.R), 1, "half black over white")
	assert.Equal(t, white, at(s, 5, 5))
}

func TestSurface_FillQuad(t *testing.T) {
	s := NewSurface(20, 20)
	s.Clear(color.White)

	s.FillQuad(domain.Rect{X: 2, Y: 2, Width: 10, Height: 6}.Quad(), red)

	assert.Equal(t, red, at(s, 6, 4), "inside")
	assert.Equal(t, white, at(s, 15, 15), "outside")
}

func TestSurface_FillQuadOutsideIgnored(t *testing.T) {
	s := NewSurface(10, 10)
	s.Clear(color.White)

	s.FillQuad(domain.Rect{X: 100, Y: 100, Width: 5, Height: 5}.Quad(), red)

	assert.Equal(t, white, at(s, 5, 5))
}

func TestSurface_DrawText(t *testing.T) {
	s := NewSurface(200, 40)
	s.Clear(color.White)

	s.DrawText(domain.Point{X: 0, Y: 0}, 26, "MMMM", color.Black)

	dark := 0
	for y := 0; y < 26; y++ {
		for x := 0; x < 60; x++ {
			if at(s, x, y).R < 0x80 {
				dark++
			}
		}
	}
	assert.Positive(t, dark, "glyph pixels drawn")
	for x := 0; x < 200; x++ {
		assert.Equal(t, white, at(s, x, 39), "nothing below the text box")
	}
}

func TestSurface_DrawTinyTextAsBar(t *testing.T) {
	s := NewSurface(40, 10)
	s.Clear(color.White)

	s.DrawText(domain.Point{X: 0, Y: 0}, 3, "abcd", color.Black)

	assert.NotEqual(t, white, at(s, 1, 1))
	assert.Equal(t, white, at(s, 20, 1))
}

func TestTarget_Surface(t *testing.T) {
	target := NewTarget()

	surface, err := target.Surface(2, domain.Size{Width: 10.2, Height: 5})
	require.NoError(t, err)
	assert.Equal(t, domain.Size{Width: 11, Height: 5}, surface.Size())

	got, ok := target.Page(2)
	require.True(t, ok)
	assert.Same(t, surface, got)
	assert.Equal(t, 1, target.Pages())

	replaced, err := target.Surface(2, domain.Size{Width: 4, Height: 4})
	require.NoError(t, err)
	got, _ = target.Page(2)
	assert.Same(t, replaced, got)

	target.Reset()
	assert.Equal(t, 0, target.Pages())
}

func TestTarget_SurfaceInvalidSize(t *testing.T) {
	target := NewTarget()

	for _, size := range []domain.Size{{}, {Width: -1, Height: 5}, {Width: MaxSide + 1, Height: 1}} {
		_, err := target.Surface(1, size)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestTarget_WritePNG(t *testing.T) {
	target := NewTarget()
	surface, err := target.Surface(1, domain.Size{Width: 8, Height: 6})
	require.NoError(t, err)
	surface.Clear(color.White)

	var buf bytes.Buffer
	require.NoError(t, target.WritePNG(&buf, 1))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())

	assert.ErrorIs(t, target.WritePNG(&buf, 9), domain.ErrNotFound)
}
