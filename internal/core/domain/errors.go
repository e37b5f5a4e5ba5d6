package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent viewer failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoDocument indicates an operation needs a loaded document.
	ErrNoDocument = errors.New("no document loaded")

	// ErrPageOutOfRange indicates a page number outside [1, pageCount].
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrInvalidScale indicates a scale value or preset that cannot be used.
	ErrInvalidScale = errors.New("invalid scale")

	// Failure taxonomy.

	// ErrRenderFailure indicates one page's decode or draw failed.
	// It is isolated to the page and retried on the next scheduling pass.
	ErrRenderFailure = errors.New("render failure")

	// ErrExtractionFailure indicates one page's text fetch failed.
	// The page is skipped and extraction continues.
	ErrExtractionFailure = errors.New("extraction failure")

	// ErrSearchPattern indicates a query produced an unusable pattern.
	// It is treated as zero matches.
	ErrSearchPattern = errors.New("search pattern error")

	// ErrDocumentLoad indicates the document could not be loaded.
	// This is the only failure surfaced to callers.
	ErrDocumentLoad = errors.New("document load failure")
)

// PageError is a failure local to a single page.
// errors.Is matches both the failure kind and the underlying cause.
type PageError struct {
	// Kind is one of the taxonomy sentinels (ErrRenderFailure, ...).
	Kind error

	// Page is the 1-based page number.
	Page int

	// Err is the underlying cause.
	Err error
}

// NewPageError creates a page-local error.
func NewPageError(kind error, page int, err error) *PageError {
	return &PageError{Kind: kind, Page: page, Err: err}
}

// Error implements error.
func (e *PageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: page %d", e.Kind, e.Page)
	}
	return fmt.Sprintf("%v: page %d: %v", e.Kind, e.Page, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *PageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
