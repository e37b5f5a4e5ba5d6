// Package layout stacks pages vertically on a scrollable surface and answers
// the viewport geometry queries the core needs.
//
// Content space has its origin at the top-left of the first page's gap.
// Screen space is content space shifted by the scroll offset, so a page's
// container bounds can have negative coordinates when it is scrolled past.
//
// Units are pixels. The TUI uses the same layout with a fixed cell size, so
// one terminal cell maps to a block of pixels.
package layout
