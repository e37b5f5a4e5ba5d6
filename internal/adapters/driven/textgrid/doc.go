// Package textgrid renders pages into grids of terminal cells.
//
// A cell stands for a block of pixels (6x12 by default, roughly the aspect of
// a terminal character), so the core lays out and schedules pages in pixels
// exactly as it does for raster output. Fills set cell backgrounds, blended
// in RGB space with go-colorful; text writes one rune per cell.
package textgrid
