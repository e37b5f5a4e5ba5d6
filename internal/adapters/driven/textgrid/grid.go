package textgrid

import (
	"image/color"
	"math"
	"strings"
	"unicode"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Default cell size in pixels.
const (
	CellWidth  = 6.0
	CellHeight = 12.0
)

// Average glyph advance as a fraction of the glyph height.
const glyphAdvance = 0.5

// Cell is one terminal cell.
type Cell struct {
	Rune rune

	// FG and BG are only meaningful when the matching Has flag is set.
	FG    colorful.Color
	HasFG bool
	BG    colorful.Color
	HasBG bool
}

// Ensure Grid implements the interface.
var _ driven.Surface = (*Grid)(nil)

// Grid is a page surface made of cells.
type Grid struct {
	cellW, cellH float64
	cols, rows   int
	size         domain.Size
	cells        []Cell
}

// NewGrid creates a grid covering size pixels with cells of cellW x cellH.
func NewGrid(size domain.Size, cellW, cellH float64) *Grid {
	if cellW <= 0 {
		cellW = CellWidth
	}
	if cellH <= 0 {
		cellH = CellHeight
	}
	cols := int(math.Ceil(size.Width / cellW))
	rows := int(math.Ceil(size.Height / cellH))
	g := &Grid{
		cellW: cellW,
		cellH: cellH,
		cols:  max(cols, 0),
		rows:  max(rows, 0),
		size:  size,
	}
	g.cells = make([]Cell, g.cols*g.rows)
	for i := range g.cells {
		g.cells[i].Rune = ' '
	}
	return g
}

// Size returns the covered size in pixels.
func (g *Grid) Size() domain.Size { return g.size }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cell returns the cell at col, row. Out of range cells are blank.
func (g *Grid) Cell(col, row int) Cell {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return Cell{Rune: ' '}
	}
	return g.cells[row*g.cols+col]
}

// Lines returns the grid text without colours.
func (g *Grid) Lines() []string {
	lines := make([]string, g.rows)
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		b.Reset()
		for c := 0; c < g.cols; c++ {
			b.WriteRune(g.cells[r*g.cols+c].Rune)
		}
		lines[r] = b.String()
	}
	return lines
}

// Clear blanks every cell and sets its background.
func (g *Grid) Clear(c color.Color) {
	bg, ok := opaque(c)
	for i := range g.cells {
		g.cells[i] = Cell{Rune: ' ', BG: bg, HasBG: ok}
	}
}

// FillRect blends c into the background of cells whose centre lies in r.
func (g *Grid) FillRect(r domain.Rect, c color.Color) {
	g.fill(r, c, func(p domain.Point) bool {
		return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
	})
}

// FillQuad blends c into the background of cells whose centre lies in q.
func (g *Grid) FillQuad(q domain.Quad, c color.Color) {
	// Corners in drawing order.
	poly := [4]domain.Point{q.P1, q.P2, q.P4, q.P3}
	g.fill(q.Bounds(), c, func(p domain.Point) bool {
		return insideConvex(poly, p)
	})
}

// DrawText writes text one rune per cell on the row holding the glyph's
// vertical centre. Text wider than its estimated extent is sampled.
func (g *Grid) DrawText(p domain.Point, size float64, text string, c color.Color) {
	runes := []rune(text)
	if len(runes) == 0 || size <= 0 {
		return
	}
	row := int(math.Floor((p.Y + size/2) / g.cellH))
	if row < 0 || row >= g.rows {
		return
	}
	fg, hasFG := opaque(c)

	width := float64(len(runes)) * size * glyphAdvance
	n := int(math.Round(width / g.cellW))
	n = max(n, 1)
	col0 := int(math.Floor(p.X / g.cellW))
	for i := 0; i < n; i++ {
		col := col0 + i
		if col < 0 || col >= g.cols {
			continue
		}
		r := runes[i*len(runes)/n]
		if !unicode.IsPrint(r) {
			r = '?'
		}
		cell := &g.cells[row*g.cols+col]
		cell.Rune = r
		cell.FG, cell.HasFG = fg, hasFG
	}
}

func (g *Grid) fill(bounds domain.Rect, c color.Color, inside func(domain.Point) bool) {
	src, alpha := colorAlpha(c)
	if alpha == 0 {
		return
	}
	c0 := max(int(math.Floor(bounds.X/g.cellW)), 0)
	c1 := min(int(math.Ceil(bounds.Right()/g.cellW)), g.cols)
	r0 := max(int(math.Floor(bounds.Y/g.cellH)), 0)
	r1 := min(int(math.Ceil(bounds.Bottom()/g.cellH)), g.rows)
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			centre := domain.Point{X: (float64(col) + 0.5) * g.cellW, Y: (float64(row) + 0.5) * g.cellH}
			if !inside(centre) {
				continue
			}
			cell := &g.cells[row*g.cols+col]
			if cell.HasBG && alpha < 1 {
				cell.BG = cell.BG.BlendRgb(src, alpha)
			} else {
				cell.BG = src
			}
			cell.HasBG = true
		}
	}
}

// insideConvex reports whether p lies inside or on the convex polygon.
func insideConvex(poly [4]domain.Point, p domain.Point) bool {
	var pos, neg bool
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		if cross > 0 {
			pos = true
		} else if cross < 0 {
			neg = true
		}
		if pos && neg {
			return false
		}
	}
	return true
}

// colorAlpha returns c without alpha and its opacity in 0-1.
func colorAlpha(c color.Color) (colorful.Color, float64) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	rgb := colorful.Color{R: float64(n.R) / 255, G: float64(n.G) / 255, B: float64(n.B) / 255}
	return rgb, float64(n.A) / 255
}

// opaque converts c, reporting false for fully transparent colours.
func opaque(c color.Color) (colorful.Color, bool) {
	rgb, alpha := colorAlpha(c)
	return rgb, alpha > 0
}
