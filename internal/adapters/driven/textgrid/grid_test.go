package textgrid

import (
	"image/color"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func newTestGrid() *Grid {
	// 10 columns by 3 rows.
	g := NewGrid(domain.Size{Width: 60, Height: 36}, 0, 0)
	g.Clear(color.White)
	return g
}

func TestNewGrid_Dimensions(t *testing.T) {
	g := NewGrid(domain.Size{Width: 61, Height: 25}, 6, 12)

	assert.Equal(t, 11, g.Cols())
	assert.Equal(t, 3, g.Rows())
	assert.Equal(t, domain.Size{Width: 61, Height: 25}, g.Size())
	assert.Equal(t, ' ', g.Cell(0, 0).Rune)
	assert.Equal(t, ' ', g.Cell(-1, 99).Rune, "out of range cells are blank")
}

func TestGrid_Clear(t *testing.T) {
	g := newTestGrid()

	cell := g.Cell(4, 2)
	assert.True(t, cell.HasBG)
	assert.Equal(t, colorful.Color{R: 1, G: 1, B: 1}, cell.BG)

	g.Clear(color.Transparent)
	assert.False(t, g.Cell(4, 2).HasBG)
}

func TestGrid_FillRectUsesCellCentres(t *testing.T) {
	g := newTestGrid()
	red := colorful.Color{R: 1}

	g.FillRect(domain.Rect{X: 0, Y: 0, Width: 12, Height: 12}, color.NRGBA{R: 0xff, A: 0xff})

	assert.Equal(t, red, g.Cell(0, 0).BG)
	assert.Equal(t, red, g.Cell(1, 0).BG)
	assert.NotEqual(t, red, g.Cell(2, 0).BG)
	assert.NotEqual(t, red, g.Cell(0, 1).BG)
}

func TestGrid_FillBlends(t *testing.T) {
	g := newTestGrid()

	g.FillRect(domain.Rect{Width: 60, Height: 36}, color.NRGBA{A: 0x80})

	bg := g.Cell(5, 1).BG
	assert.InDelta(t, 0.5, bg.R, 0.01)
	assert.InDelta(t, 0.5, bg.G, 0.01)
}

func TestGrid_FillQuad(t *testing.T) {
	g := newTestGrid()
	green := colorful.Color{G: 1}

	g.FillQuad(domain.Rect{X: 0, Y: 12, Width: 60, Height: 12}.Quad(), color.NRGBA{G: 0xff, A: 0xff})

	for col := 0; col < g.Cols(); col++ {
		assert.Equal(t, green, g.Cell(col, 1).BG)
		assert.NotEqual(t, green, g.Cell(col, 0).BG)
	}
}

func TestGrid_FillQuadSlanted(t *testing.T) {
	g := newTestGrid()
	blue := colorful.Color{B: 1}

	// A thin diagonal band from the top-left to the bottom-right.
	q := domain.Quad{
		P1: domain.Point{X: 0, Y: -6}, P2: domain.Point{X: 60, Y: 30},
		P3: domain.Point{X: 0, Y: 6}, P4: domain.Point{X: 60, Y: 42},
	}
	g.FillQuad(q, color.NRGBA{B: 0xff, A: 0xff})

	assert.Equal(t, blue, g.Cell(0, 0).BG)
	assert.NotEqual(t, blue, g.Cell(9, 0).BG)
	assert.NotEqual(t, blue, g.Cell(0, 2).BG)
}

func TestGrid_DrawText(t *testing.T) {
	g := newTestGrid()

	g.DrawText(domain.Point{X: 0, Y: 12}, 12, "hello", color.Black)

	lines := g.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "hello     ", lines[1])
	assert.True(t, g.Cell(0, 1).HasFG)
	assert.Equal(t, "          ", lines[0])
}

func TestGrid_DrawTextSamplesNarrowText(t *testing.T) {
	g := newTestGrid()

	g.DrawText(domain.Point{X: 6, Y: 0}, 6, "abcdefgh", color.Black)

	assert.Equal(t, " aceg     ", g.Lines()[0])
}

func TestGrid_DrawTextClipped(t *testing.T) {
	g := newTestGrid()

	g.DrawText(domain.Point{X: 48, Y: 24}, 12, "overflow", color.Black)
	g.DrawText(domain.Point{X: 0, Y: 100}, 12, "below", color.Black)
	g.DrawText(domain.Point{X: 0, Y: 0}, 12, "\x01", color.Black)

	assert.Equal(t, "        ov", g.Lines()[2])
	assert.Equal(t, '?', g.Cell(0, 0).Rune)
}

func TestTarget_Surface(t *testing.T) {
	target := NewTarget(CellWidth, CellHeight)

	s, err := target.Surface(3, domain.Size{Width: 60, Height: 24})
	require.NoError(t, err)

	g, ok := target.Page(3)
	require.True(t, ok)
	assert.Same(t, s, g)
	assert.Equal(t, 10, g.Cols())

	_, err = target.Surface(1, domain.Size{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	target.Reset()
	_, ok = target.Page(3)
	assert.False(t, ok)
}
