// Package raster provides pixel render targets backed by image.RGBA.
//
// Quads are filled with the x/image vector rasterizer, so rotated ink
// segments and merged highlight quads are anti-aliased. Text is drawn with
// the 7x13 bitmap face and scaled to the requested glyph height. Pages are
// exported as PNG for the render command and the HTTP API.
package raster
