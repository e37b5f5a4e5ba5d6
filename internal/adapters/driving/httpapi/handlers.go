package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// maxBodyBytes limits request bodies.
const maxBodyBytes = 4 << 20

// CreateAnnotationRequest is the body for POST /api/v1/annotations.
// Rects are screen rectangles [x, y, width, height] of the current view.
type CreateAnnotationRequest struct {
	Type  domain.AnnotationType `json:"annotation_type"`
	Page  int                   `json:"page"`
	Rects []domain.Rect         `json:"rects"`
	Color string                `json:"color,omitempty"`
}

// FindResponse is the body returned by GET /api/v1/find.
type FindResponse struct {
	Query   string          `json:"query"`
	Matches []*domain.Match `json:"matches"`
	Count   int             `json:"count"`
}

// ImportResponse is the body returned by POST /api/v1/annotations/import.
type ImportResponse struct {
	Imported int `json:"imported"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleDocument describes the open document.
// GET /api/v1/document
func (s *Server) handleDocument(w http.ResponseWriter, _ *http.Request) {
	info, err := s.ports.Viewer.Info()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handlePageText returns one page's extracted text.
// GET /api/v1/pages/{page}/text
func (s *Server) handlePageText(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		writeError(w, domain.ErrInvalidInput)
		return
	}
	content, err := s.ports.Find.PageText(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// handleFind returns every match of q.
// GET /api/v1/find?q=&case=&word=
func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := domain.FindOptions{HighlightAll: true}
	var err error
	if opts.CaseSensitive, err = queryBool(q.Get("case")); err != nil {
		writeError(w, err)
		return
	}
	if opts.EntireWord, err = queryBool(q.Get("word")); err != nil {
		writeError(w, err)
		return
	}

	matches, err := s.ports.Find.FindAll(r.Context(), q.Get("q"), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	if matches == nil {
		matches = []*domain.Match{}
	}
	writeJSON(w, http.StatusOK, FindResponse{Query: q.Get("q"), Matches: matches, Count: len(matches)})
}

// handleListAnnotations lists annotations, optionally for one page.
// GET /api/v1/annotations[?page=]
func (s *Server) handleListAnnotations(w http.ResponseWriter, r *http.Request) {
	var (
		list []domain.Annotation
		err  error
	)
	if p := r.URL.Query().Get("page"); p != "" {
		page, convErr := strconv.Atoi(p)
		if convErr != nil {
			writeError(w, domain.ErrInvalidInput)
			return
		}
		list, err = s.ports.Annotations.List(r.Context(), page)
	} else {
		list, err = s.ports.Annotations.ListAll(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []domain.Annotation{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleCreateAnnotation creates a markup annotation from a screen selection.
// POST /api/v1/annotations
func (s *Server) handleCreateAnnotation(w http.ResponseWriter, r *http.Request) {
	var req CreateAnnotationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	a, err := s.ports.Annotations.CreateFromSelection(r.Context(), req.Page, req.Type, req.Rects, req.Color)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// handleImportAnnotations stores a JSON array of annotations.
// POST /api/v1/annotations/import
func (s *Server) handleImportAnnotations(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
		return
	}
	n, err := s.ports.Annotations.Import(r.Context(), data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Imported: n})
}

// handleDeleteAnnotation removes an annotation.
// DELETE /api/v1/annotations/{id}
func (s *Server) handleDeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Annotations.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryBool(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, domain.ErrInvalidInput
	}
	return b, nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrPageOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoDocument):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrSearchPattern),
		errors.Is(err, domain.ErrInvalidScale):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		httpLog.Error("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		httpLog.Warn("encode response: %v", err)
	}
}
