// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the viewer to function:
//
//   - DocumentLoader: Opens a document source (the page engine)
//   - Document, Page: Page count, unit viewport, rendering and text runs
//   - RenderTarget, Surface: Where page pixels are drawn
//   - PageLayout: Positions pages on the scrollable surface; also serves as
//     the ViewportGeometryProvider the geometry engine reads from
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the viewer degrades gracefully:
//
//   - AnnotationStore: Annotation persistence. Without it, annotation
//     operations return domain.ErrNotFound.
//   - Announcer: Receives status messages. Without it, messages are dropped.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
