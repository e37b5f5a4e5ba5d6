package pdf

import (
	"math"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Glyph metrics relative to the font size. The baseline sits at 80% of
// the glyph box, the usual ascent for Latin fonts.
const (
	ascent = 0.8

	// A gap wider than this starts a new word.
	wordGap = 0.2

	// A baseline shift larger than this starts a new line.
	lineShift = 0.5
)

// groupGlyphs joins decoded glyphs into runs, one per font span on a line.
// Rects are in user space: Y is the lower edge, growing upwards.
// The decoder drops space glyphs, so word breaks are restored from gaps.
func groupGlyphs(glyphs []lpdf.Text) []domain.TextRun {
	var runs []domain.TextRun
	var b strings.Builder
	var cur *lpdf.Text
	var left, right float64

	flush := func(eol bool) {
		if cur == nil {
			return
		}
		text := b.String()
		if eol {
			text = strings.TrimRight(text, " ")
		}
		if text != "" {
			size := cur.FontSize
			runs = append(runs, domain.TextRun{
				Text: text,
				Rect: domain.Rect{
					X:      left,
					Y:      cur.Y - (1-ascent)*size,
					Width:  right - left,
					Height: size,
				},
				EOL: eol,
			})
		} else if eol && len(runs) > 0 {
			runs[len(runs)-1].EOL = true
		}
		b.Reset()
		cur = nil
	}

	for i := range glyphs {
		g := &glyphs[i]
		if g.S == "" {
			continue
		}
		size := g.FontSize
		if size <= 0 {
			size = 1
		}
		if cur != nil {
			switch {
			case math.Abs(g.Y-cur.Y) > lineShift*size:
				flush(true)
			case g.X < right-size:
				flush(false)
			case g.FontSize != cur.FontSize || g.Font != cur.Font:
				if g.X-right > wordGap*size && !strings.HasSuffix(b.String(), " ") {
					b.WriteByte(' ')
				}
				flush(false)
			case g.X-right > wordGap*size && !strings.HasSuffix(b.String(), " ") && g.S != " ":
				b.WriteByte(' ')
			}
		}
		if cur == nil {
			if g.S == " " {
				continue
			}
			cur = g
			left = g.X
			right = g.X
		}
		b.WriteString(g.S)
		right = math.Max(right, g.X+g.W)
	}
	flush(true)
	return runs
}

// transform maps user space rectangles into document units: top-left origin
// relative to the page box, then rotated clockwise by the page rotation.
type transform struct {
	box      box
	rotation int
}

func (t transform) userRect(r domain.Rect) domain.Rect {
	w0, h0 := t.box.width(), t.box.height()
	// Flip to a top-left origin in the unrotated page.
	x := r.X - t.box.llx
	y := t.box.ury - (r.Y + r.Height)
	w, h := r.Width, r.Height

	switch t.rotation {
	case 90:
		return domain.Rect{X: h0 - (y + h), Y: x, Width: h, Height: w}
	case 180:
		return domain.Rect{X: w0 - (x + w), Y: h0 - (y + h), Width: w, Height: h}
	case 270:
		return domain.Rect{X: y, Y: w0 - (x + w), Width: h, Height: w}
	default:
		return domain.Rect{X: x, Y: y, Width: w, Height: h}
	}
}
