package tui

import "errors"

// ErrMissingViewer is returned when the viewer service is not provided.
var ErrMissingViewer = errors.New("tui: viewer service is required")

// ErrMissingFind is returned when the find service is not provided.
var ErrMissingFind = errors.New("tui: find service is required")

// ErrMissingPages is returned when the page grids or layout are not provided.
var ErrMissingPages = errors.New("tui: page grids and layout are required")
