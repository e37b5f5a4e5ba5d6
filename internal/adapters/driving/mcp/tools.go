package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// defaultFindLimit caps find results when the caller gives no limit.
const defaultFindLimit = 50

// FindInput is the input schema for the find tool.
type FindInput struct {
	Query         string `json:"query" jsonschema:"the text to find; whitespace matches any whitespace"`
	CaseSensitive bool   `json:"case_sensitive,omitempty" jsonschema:"match case"`
	EntireWord    bool   `json:"entire_word,omitempty" jsonschema:"match whole words only"`
	Limit         int    `json:"limit,omitempty" jsonschema:"maximum number of matches to return (default 50)"`
}

// FindOutput is the output schema for the find tool.
type FindOutput struct {
	Matches []MatchOutput `json:"matches"`
	Count   int           `json:"count"`
	Total   int           `json:"total"`
}

// MatchOutput represents a single match.
type MatchOutput struct {
	Page  int    `json:"page"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// PageTextInput is the input schema for the page_text tool.
type PageTextInput struct {
	Page int `json:"page" jsonschema:"1-based page number"`
}

// PageTextOutput is the output schema for the page_text tool.
type PageTextOutput struct {
	Page int    `json:"page"`
	Text string `json:"text"`
	Runs int    `json:"runs"`
}

// ListAnnotationsInput is the input schema for the list_annotations tool.
type ListAnnotationsInput struct {
	Page int `json:"page,omitempty" jsonschema:"only list this page (default all pages)"`
}

// ListAnnotationsOutput is the output schema for the list_annotations tool.
type ListAnnotationsOutput struct {
	Annotations []AnnotationOutput `json:"annotations"`
	Count       int                `json:"count"`
}

// AnnotationOutput summarises one annotation. Rect is [x, y, width, height]
// in document units with a top-left origin.
type AnnotationOutput struct {
	ID       string    `json:"id"`
	Type     string    `json:"annotation_type"`
	Page     int       `json:"page"`
	Rect     []float64 `json:"rect"`
	Color    string    `json:"color,omitempty"`
	Opacity  float64   `json:"opacity"`
	Contents string    `json:"contents,omitempty"`
	Quads    int       `json:"quads,omitempty"`
	Strokes  int       `json:"strokes,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find",
		Description: "Find text in the open document. Matches are ordered by page and position.",
	}, s.handleFind)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "page_text",
		Description: "Return the extracted text of one page of the open document",
	}, s.handlePageText)

	if s.ports.Annotations != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_annotations",
			Description: "List the annotations stored for the open document",
		}, s.handleListAnnotations)
	}
}

// handleFind handles the find tool invocation.
func (s *Server) handleFind(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindInput,
) (*mcp.CallToolResult, FindOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultFindLimit
	}

	opts := domain.FindOptions{
		CaseSensitive: input.CaseSensitive,
		EntireWord:    input.EntireWord,
		HighlightAll:  true,
	}
	matches, err := s.ports.Find.FindAll(ctx, input.Query, opts)
	if err != nil {
		return nil, FindOutput{}, err
	}

	n := min(len(matches), limit)
	output := FindOutput{
		Matches: make([]MatchOutput, n),
		Count:   n,
		Total:   len(matches),
	}
	for i, m := range matches[:n] {
		output.Matches[i] = MatchOutput{
			Page:  m.Page,
			Start: m.Start,
			End:   m.End,
			Text:  m.Text,
		}
	}

	return nil, output, nil
}

// handlePageText handles the page_text tool invocation.
func (s *Server) handlePageText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PageTextInput,
) (*mcp.CallToolResult, PageTextOutput, error) {
	content, err := s.ports.Find.PageText(ctx, input.Page)
	if err != nil {
		return nil, PageTextOutput{}, fmt.Errorf("page %d text: %w", input.Page, err)
	}

	return nil, PageTextOutput{
		Page: content.Page,
		Text: content.FullString,
		Runs: len(content.Runs),
	}, nil
}

// handleListAnnotations handles the list_annotations tool invocation.
func (s *Server) handleListAnnotations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListAnnotationsInput,
) (*mcp.CallToolResult, ListAnnotationsOutput, error) {
	var (
		list []domain.Annotation
		err  error
	)
	if input.Page > 0 {
		list, err = s.ports.Annotations.List(ctx, input.Page)
	} else {
		list, err = s.ports.Annotations.ListAll(ctx)
	}
	if err != nil {
		return nil, ListAnnotationsOutput{}, fmt.Errorf("listing annotations: %w", err)
	}

	output := ListAnnotationsOutput{
		Annotations: make([]AnnotationOutput, len(list)),
		Count:       len(list),
	}
	for i := range list {
		a := &list[i]
		output.Annotations[i] = AnnotationOutput{
			ID:       a.ID,
			Type:     a.Type.String(),
			Page:     a.Page,
			Rect:     []float64{a.Rect.X, a.Rect.Y, a.Rect.Width, a.Rect.Height},
			Color:    a.Color,
			Opacity:  a.EffectiveOpacity(),
			Contents: a.Contents,
			Quads:    len(a.Quads),
			Strokes:  len(a.Strokes),
		}
	}

	return nil, output, nil
}
