// Package page composes rendered page grids into the terminal screen.
package page

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driven/textgrid"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// Frame is everything one screen needs.
type Frame struct {
	// Pages lists the visible pages.
	Pages []int

	// Scale converts document units to screen pixels.
	Scale float64

	// Bounds returns a page's rectangle in screen pixels.
	Bounds func(page int) (domain.Rect, bool)

	// Grid returns a page's rendered grid.
	Grid func(page int) (*textgrid.Grid, bool)

	// Highlights returns a page's find highlights in document units. May be nil.
	Highlights func(page int) []domain.HighlightRect
}

type cellKind uint8

const (
	kindGutter cellKind = iota
	kindPaper
	kindPlaceholder
)

type screenCell struct {
	textgrid.Cell
	kind      cellKind
	highlight domain.HighlightKind
}

// View draws frames at a fixed screen size in cells.
type View struct {
	styles       *styles.Styles
	cellW, cellH float64
	cols, rows   int
}

// NewView creates a view with cells of cellW x cellH pixels.
func NewView(s *styles.Styles, cellW, cellH float64) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if cellW <= 0 {
		cellW = textgrid.CellWidth
	}
	if cellH <= 0 {
		cellH = textgrid.CellHeight
	}
	return &View{styles: s, cellW: cellW, cellH: cellH}
}

// SetDimensions sets the screen size in cells.
func (v *View) SetDimensions(cols, rows int) {
	v.cols, v.rows = max(cols, 0), max(rows, 0)
}

// PixelSize returns the screen size in pixels.
func (v *View) PixelSize() domain.Size {
	return domain.Size{Width: float64(v.cols) * v.cellW, Height: float64(v.rows) * v.cellH}
}

// Lines returns the frame as plain text, one string per row.
func (v *View) Lines(f Frame) []string {
	cells := v.compose(f)
	lines := make([]string, v.rows)
	var b strings.Builder
	for r := 0; r < v.rows; r++ {
		b.Reset()
		for _, c := range cells[r*v.cols : (r+1)*v.cols] {
			b.WriteRune(c.Rune)
		}
		lines[r] = b.String()
	}
	return lines
}

// Render returns the frame with colours.
func (v *View) Render(f Frame) string {
	cells := v.compose(f)
	lines := make([]string, v.rows)
	var line, run strings.Builder
	for r := 0; r < v.rows; r++ {
		line.Reset()
		row := cells[r*v.cols : (r+1)*v.cols]
		for start := 0; start < len(row); {
			style := v.styleFor(row[start])
			end := start + 1
			for end < len(row) && sameStyle(row[start], row[end]) {
				end++
			}
			run.Reset()
			for _, c := range row[start:end] {
				run.WriteRune(c.Rune)
			}
			line.WriteString(style.Render(run.String()))
			start = end
		}
		lines[r] = line.String()
	}
	return strings.Join(lines, "\n")
}

func (v *View) compose(f Frame) []screenCell {
	cells := make([]screenCell, v.cols*v.rows)
	for i := range cells {
		cells[i].Rune = ' '
	}
	for _, p := range f.Pages {
		b, ok := f.Bounds(p)
		if !ok {
			continue
		}
		c0 := int(math.Floor(b.X / v.cellW))
		r0 := int(math.Floor(b.Y / v.cellH))
		cols := int(math.Ceil(b.Width / v.cellW))
		rows := int(math.Ceil(b.Height / v.cellH))

		g, rendered := f.Grid(p)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				sc := v.at(cells, c0+c, r0+r)
				if sc == nil {
					continue
				}
				if rendered {
					sc.Cell = g.Cell(c, r)
					sc.kind = kindPaper
				} else {
					sc.kind = kindPlaceholder
				}
			}
		}
		if !rendered {
			v.label(cells, c0, r0, cols, rows, fmt.Sprintf("Page %d", p))
			continue
		}
		if f.Highlights != nil {
			v.highlight(cells, b, f.Scale, f.Highlights(p))
		}
	}
	return cells
}

func (v *View) highlight(cells []screenCell, page domain.Rect, scale float64, rects []domain.HighlightRect) {
	for _, hr := range rects {
		x := page.X + hr.Rect.X*scale
		y := page.Y + hr.Rect.Y*scale
		c0 := int(math.Floor(x / v.cellW))
		r0 := int(math.Floor(y / v.cellH))
		c1 := int(math.Ceil((x + hr.Rect.Width*scale) / v.cellW))
		r1 := int(math.Ceil((y + hr.Rect.Height*scale) / v.cellH))
		for r := r0; r < max(r1, r0+1); r++ {
			for c := c0; c < max(c1, c0+1); c++ {
				if sc := v.at(cells, c, r); sc != nil && sc.kind == kindPaper && sc.highlight < hr.Kind {
					sc.highlight = hr.Kind
				}
			}
		}
	}
}

// label centres text in a page's cell box.
func (v *View) label(cells []screenCell, c0, r0, cols, rows int, text string) {
	r := r0 + rows/2
	c := c0 + (cols-len(text))/2
	for i, ch := range text {
		if sc := v.at(cells, c+i, r); sc != nil {
			sc.Rune = ch
		}
	}
}

func (v *View) at(cells []screenCell, col, row int) *screenCell {
	if col < 0 || row < 0 || col >= v.cols || row >= v.rows {
		return nil
	}
	return &cells[row*v.cols+col]
}

func (v *View) styleFor(c screenCell) lipgloss.Style {
	switch c.kind {
	case kindGutter:
		return v.styles.Gutter
	case kindPlaceholder:
		return v.styles.Placeholder
	}
	style := v.styles.Paper
	if c.HasFG {
		style = style.Foreground(lipgloss.Color(c.FG.Hex()))
	}
	if c.HasBG {
		style = style.Background(lipgloss.Color(c.BG.Hex()))
	}
	switch c.highlight {
	case domain.HighlightMatch:
		style = style.Background(v.styles.Theme().Match)
	case domain.HighlightSelected:
		style = style.Background(v.styles.Theme().Selected)
	}
	return style
}

func sameStyle(a, b screenCell) bool {
	if a.kind != b.kind || a.highlight != b.highlight {
		return false
	}
	if a.kind != kindPaper {
		return true
	}
	return a.HasFG == b.HasFG && a.HasBG == b.HasBG &&
		(!a.HasFG || a.FG == b.FG) && (!a.HasBG || a.BG == b.BG)
}
