package domain

import (
	"fmt"
	"strings"
)

// ScrollDirection is the direction of the last vertical scroll.
type ScrollDirection int

const (
	// ScrollDown means content moved towards later pages.
	ScrollDown ScrollDirection = iota

	// ScrollUp means content moved towards earlier pages.
	ScrollUp
)

// String returns "down" or "up".
func (d ScrollDirection) String() string {
	if d == ScrollUp {
		return "up"
	}
	return "down"
}

// ParseScrollDirection parses "down" or "up".
func ParseScrollDirection(s string) (ScrollDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "down", "":
		return ScrollDown, nil
	case "up":
		return ScrollUp, nil
	default:
		return ScrollDown, fmt.Errorf("%w: scroll direction %q", ErrInvalidInput, s)
	}
}

// VisiblePage is one page intersecting the visible area.
type VisiblePage struct {
	// Page is the 1-based page number.
	Page int

	// Percent is how much of the page is visible, 0-100.
	Percent int
}

// VisibleRange describes which pages are on screen.
type VisibleRange struct {
	// First and Last bound the visible pages (inclusive, 1-based).
	// Both are zero when nothing is visible.
	First int
	Last  int

	// Direction is the last scroll direction.
	Direction ScrollDirection

	// Pages holds per-page visibility in page order.
	Pages []VisiblePage
}

// Empty reports whether no page is visible.
func (v VisibleRange) Empty() bool {
	return v.First <= 0 || v.Last < v.First
}

// Contains reports whether page is inside [First, Last].
func (v VisibleRange) Contains(page int) bool {
	return !v.Empty() && page >= v.First && page <= v.Last
}
