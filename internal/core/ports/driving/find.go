package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// FindService provides incremental text search within the open document.
type FindService interface {
	// Find starts a query, or moves to the next/previous match when the
	// query and options are unchanged. An empty query resets the state.
	Find(query string, opts domain.FindOptions)

	// FindAll extracts every page and returns all matches of query.
	FindAll(ctx context.Context, query string, opts domain.FindOptions) ([]*domain.Match, error)

	// FindNext selects the next match, wrapping at the end.
	FindNext()

	// FindPrevious selects the previous match, wrapping at the start.
	FindPrevious()

	// OnUpdate registers the state observer. It replaces any previous one.
	OnUpdate(fn func(domain.FindState, domain.FindCounts))

	// State returns the current state and counts.
	State() (domain.FindState, domain.FindCounts)

	// Matches returns the known matches in (page, start) order.
	Matches() []*domain.Match

	// Selected returns the selected match, or nil.
	Selected() *domain.Match

	// PageHighlights returns highlight markup for the page's text runs.
	PageHighlights(page int) []domain.RunMarkup

	// PageHighlightRects returns the highlighted areas of a page in document units.
	PageHighlightRects(page int) []domain.HighlightRect

	// PageText returns a page's extracted text, extracting it if needed.
	PageText(ctx context.Context, page int) (*domain.PageTextContent, error)

	// WaitExtracted blocks until every page has been extracted.
	WaitExtracted(ctx context.Context) error
}
