package domain

import "strings"

// FindState is the state reported to find observers.
type FindState int

const (
	// FindPending means no query is active or the query is not resolved yet.
	FindPending FindState = iota

	// FindFound means a match is selected.
	FindFound

	// FindNotFound means extraction is complete and there are no matches.
	FindNotFound

	// FindWrapped means navigation looped past one end of the document.
	FindWrapped
)

// String returns the state name.
func (s FindState) String() string {
	switch s {
	case FindPending:
		return "pending"
	case FindFound:
		return "found"
	case FindNotFound:
		return "not_found"
	case FindWrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

// FindOptions controls how a query is matched and navigated.
type FindOptions struct {
	CaseSensitive bool `json:"case_sensitive"`
	EntireWord    bool `json:"entire_word"`

	// HighlightAll marks every match on a page; otherwise only the selected one.
	HighlightAll bool `json:"highlight_all"`

	// FindPrevious makes repeated and new queries move backwards.
	FindPrevious bool `json:"find_previous"`
}

// FindCounts is the progress delivered with each state update.
type FindCounts struct {
	// Current is the 1-based position of the selected match, 0 if none.
	Current int `json:"current"`

	// Total is the number of matches known so far.
	Total int `json:"total"`

	// Extracting is true while pages remain to be extracted.
	Extracting bool `json:"extracting"`
}

// FindUpdate is the payload of EventFindUpdated.
type FindUpdate struct {
	State  FindState  `json:"state"`
	Counts FindCounts `json:"counts"`
}

// Match is one occurrence of the query in a page's full string.
// Start and End are byte offsets, End exclusive.
// The selected match is tracked by pointer, so matches are always handled as *Match.
type Match struct {
	Page  int    `json:"page"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Less orders matches by (Page, Start).
func (m *Match) Less(o *Match) bool {
	if m.Page != o.Page {
		return m.Page < o.Page
	}
	return m.Start < o.Start
}

// TextRun is a fragment of page text as produced by the page engine.
type TextRun struct {
	Text string
	Rect Rect

	// EOL marks the last run of a visual line.
	EOL bool
}

// TextSpan is a run placed in the page's full string.
type TextSpan struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Rect  Rect   `json:"rect"`
}

// PageTextContent is the extracted text of one page.
type PageTextContent struct {
	Page       int        `json:"page"`
	FullString string     `json:"full_string"`
	Runs       []TextSpan `json:"runs"`
}

// NewPageTextContent concatenates runs into a full string.
// Each run is passed through normalize (if non-nil) before offsets are taken,
// and a single space that belongs to no run follows every EOL run.
func NewPageTextContent(page int, runs []TextRun, normalize func(string) string) *PageTextContent {
	var b strings.Builder
	spans := make([]TextSpan, 0, len(runs))
	for i, r := range runs {
		text := r.Text
		if normalize != nil {
			text = normalize(text)
		}
		start := b.Len()
		b.WriteString(text)
		spans = append(spans, TextSpan{Text: text, Start: start, End: b.Len(), Rect: r.Rect})
		if r.EOL && i < len(runs)-1 {
			b.WriteByte(' ')
		}
	}
	return &PageTextContent{Page: page, FullString: b.String(), Runs: spans}
}

// RunsIn returns the indices of runs intersecting [start, end).
func (c *PageTextContent) RunsIn(start, end int) []int {
	var out []int
	for i, r := range c.Runs {
		if r.End <= start {
			continue
		}
		if r.Start >= end {
			break
		}
		if r.End > r.Start {
			out = append(out, i)
		}
	}
	return out
}

// HighlightKind is the marking applied to part of a run.
// Larger values win when marks overlap.
type HighlightKind int

const (
	// HighlightNone is plain text.
	HighlightNone HighlightKind = iota

	// HighlightMatch marks a match.
	HighlightMatch

	// HighlightSelected marks the selected match.
	HighlightSelected
)

// String returns the kind name.
func (k HighlightKind) String() string {
	switch k {
	case HighlightMatch:
		return "match"
	case HighlightSelected:
		return "selected"
	default:
		return "none"
	}
}

// Segment is a contiguous piece of a run with one highlight kind.
type Segment struct {
	Text string        `json:"text"`
	Kind HighlightKind `json:"kind"`
}

// HighlightRect is a highlighted area of a page in document units.
type HighlightRect struct {
	Rect Rect          `json:"rect"`
	Kind HighlightKind `json:"kind"`
}

// RunMarkup is the highlight structure of one text run.
type RunMarkup struct {
	// Run is the index into PageTextContent.Runs.
	Run int `json:"run"`

	Segments []Segment `json:"segments"`
}

// NewRunMarkup returns unmarked markup for a run's text.
func NewRunMarkup(run int, text string) *RunMarkup {
	m := &RunMarkup{Run: run}
	if text != "" {
		m.Segments = []Segment{{Text: text}}
	}
	return m
}

// Text returns the run text reassembled from its segments.
func (m *RunMarkup) Text() string {
	var b strings.Builder
	for _, s := range m.Segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Mark highlights the run-local byte range [begin, end).
// It can be applied repeatedly: existing segments are walked left to right
// and only the part inside the range changes kind, with the stronger kind
// kept where marks overlap. Neighbouring segments of equal kind are joined.
func (m *RunMarkup) Mark(begin, end int, kind HighlightKind) {
	if begin < 0 {
		begin = 0
	}
	if end <= begin {
		return
	}

	out := make([]Segment, 0, len(m.Segments)+2)
	offset := 0
	for _, seg := range m.Segments {
		segStart, segEnd := offset, offset+len(seg.Text)
		offset = segEnd

		lo, hi := max(begin, segStart), min(end, segEnd)
		if lo >= hi {
			out = append(out, seg)
			continue
		}
		if lo > segStart {
			out = append(out, Segment{Text: seg.Text[:lo-segStart], Kind: seg.Kind})
		}
		out = append(out, Segment{Text: seg.Text[lo-segStart : hi-segStart], Kind: max(seg.Kind, kind)})
		if hi < segEnd {
			out = append(out, Segment{Text: seg.Text[hi-segStart:], Kind: seg.Kind})
		}
	}
	m.Segments = coalesce(out)
}

// Marked reports whether any segment carries a highlight.
func (m *RunMarkup) Marked() bool {
	for _, s := range m.Segments {
		if s.Kind != HighlightNone {
			return true
		}
	}
	return false
}

func coalesce(segs []Segment) []Segment {
	out := segs[:0]
	for _, s := range segs {
		if s.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Kind == s.Kind {
			out[n-1].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}
