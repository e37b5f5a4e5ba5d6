package services

import (
	"sort"
	"unicode/utf8"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// PlaceHighlights maps matches on one page to run-local highlight markup.
//
// Each match is split across the runs its [Start, End) range intersects and
// marked in run-local offsets. Runs receive marks incrementally, so a run hit
// by several matches carries all of them. When all is false only selected is
// marked. The result is ordered by run index and omits unmarked runs.
func PlaceHighlights(content *domain.PageTextContent, matches []*domain.Match, selected *domain.Match, all bool) []domain.RunMarkup {
	if content == nil {
		return nil
	}

	markups := make(map[int]*domain.RunMarkup)
	for _, m := range matches {
		if m.Page != content.Page {
			continue
		}
		kind := domain.HighlightMatch
		if m == selected {
			kind = domain.HighlightSelected
		} else if !all {
			continue
		}

		for _, ri := range content.RunsIn(m.Start, m.End) {
			run := content.Runs[ri]
			mk, ok := markups[ri]
			if !ok {
				mk = domain.NewRunMarkup(ri, run.Text)
				markups[ri] = mk
			}
			begin := max(m.Start, run.Start) - run.Start
			end := min(m.End, run.End) - run.Start
			mk.Mark(begin, end, kind)
		}
	}

	out := make([]domain.RunMarkup, 0, len(markups))
	for _, mk := range markups {
		if mk.Marked() {
			out = append(out, *mk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Run < out[j].Run })
	return out
}

// HighlightRects converts run markup into page rectangles.
// A marked segment gets the share of its run's width proportional to its
// character count.
func HighlightRects(content *domain.PageTextContent, markups []domain.RunMarkup) []domain.HighlightRect {
	var out []domain.HighlightRect
	for _, mk := range markups {
		if mk.Run < 0 || mk.Run >= len(content.Runs) {
			continue
		}
		run := content.Runs[mk.Run]
		total := utf8.RuneCountInString(run.Text)
		if total == 0 || run.Rect.Empty() {
			continue
		}
		perChar := run.Rect.Width / float64(total)

		offset := 0
		for _, seg := range mk.Segments {
			n := utf8.RuneCountInString(seg.Text)
			if seg.Kind != domain.HighlightNone {
				out = append(out, domain.HighlightRect{
					Rect: domain.Rect{
						X:      run.Rect.X + float64(offset)*perChar,
						Y:      run.Rect.Y,
						Width:  float64(n) * perChar,
						Height: run.Rect.Height,
					},
					Kind: seg.Kind,
				})
			}
			offset += n
		}
	}
	return out
}
