// Package mcp provides an MCP (Model Context Protocol) server adapter for folio.
// It lets AI assistants search, read and inspect annotations of the open document.
package mcp

import "errors"

var (
	// ErrMissingViewer is returned when the viewer service is not provided.
	ErrMissingViewer = errors.New("mcp: viewer service is required")

	// ErrMissingFind is returned when the find service is not provided.
	ErrMissingFind = errors.New("mcp: find service is required")
)
