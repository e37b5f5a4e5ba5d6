// Package services implements the driving port interfaces.
// Services contain the viewer's core logic and orchestrate
// calls to driven ports (adapters).
//
// A Viewer owns one document and its collaborators: the event bus,
// the notifier, the viewport model, the rendering scheduler, the
// geometry engine and the find controller. Collaborators talk to each
// other through the bus or through narrow interfaces, never through
// package-level state, so several viewers can run side by side.
//
// Services are pure Go with no CGO.
package services
