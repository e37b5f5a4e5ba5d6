package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/folio/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for folio resources.
	uriScheme = "folio://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource describing the open document.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "document",
		Name:        "document",
		Description: "The open document: source, fingerprint and page sizes",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)

	// Template for page text.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "pages/{page}/text",
		Name:        "page-text",
		Description: "Extracted text of a page",
		MIMEType:    "text/plain",
	}, s.handlePageTextResource)
}

// handleDocumentResource returns the open document's description.
func (s *Server) handleDocumentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info, err := s.ports.Viewer.Info()
	if errors.Is(err, domain.ErrNoDocument) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("describing document: %w", err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handlePageTextResource returns the text of one page.
func (s *Server) handlePageTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract page from URI: folio://pages/{page}/text
	page := extractPage(req.Params.URI)
	if page < 1 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := s.ports.Find.PageText(ctx, page)
	if errors.Is(err, domain.ErrPageOutOfRange) || errors.Is(err, domain.ErrNoDocument) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting page text: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     content.FullString,
		}},
	}, nil
}

// extractPage extracts the page number from a URI like folio://pages/{page}/text.
// Returns 0 when the URI does not match.
func extractPage(uri string) int {
	const prefix = uriScheme + "pages/"
	const suffix = "/text"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return 0
	}

	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix))
	if err != nil {
		return 0
	}
	return n
}
