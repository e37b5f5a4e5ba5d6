// Package pdf implements the page-parsing engine ports for PDF files.
//
// Two libraries share the work. pdfcpu reads and validates the file and
// answers page geometry (crop box, media box, inherited rotation).
// ledongthuc/pdf decodes page content streams into positioned glyphs and
// filled rectangles, which become text runs and render operations.
//
// Everything the core sees is in document units with a top-left origin, in
// the page's rotated orientation.
package pdf
