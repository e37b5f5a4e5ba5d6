// Package domain defines the core entities of the Folio document viewer.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Geometry: Point, Size, Rect, Quad and Stroke in document units
//   - Rendering: RenderState, PageViewport, scale presets and limits
//   - Visibility: VisibleRange and ScrollDirection
//   - Find: Match, PageTextContent, FindState and run highlight markup
//   - Annotation: the geometry contract exchanged with persistence
//   - Event: the typed notifications carried by the event bus
//
// # Coordinate Spaces
//
// Screen space is measured in pixels relative to the scroll container's
// visible area. Document space is the page's intrinsic coordinate system at
// scale 1.0. Both use a top-left origin with y growing downwards.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
