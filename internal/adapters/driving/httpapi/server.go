// Package httpapi serves the open document over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

var httpLog = logger.Named("http")

// ErrMissingPorts is returned when a driving port is not provided.
var ErrMissingPorts = errors.New("httpapi: viewer, find and annotation services are required")

// Ports aggregates the driving ports the API calls.
type Ports struct {
	Viewer      driving.ViewerService
	Find        driving.FindService
	Annotations driving.AnnotationService
}

// Server routes API requests to the driving ports.
type Server struct {
	ports  Ports
	router *chi.Mux
}

// NewServer builds the router. extra handlers are mounted by path, for
// example the MCP handler at /mcp.
func NewServer(ports Ports, extra map[string]http.Handler) (*Server, error) {
	if ports.Viewer == nil || ports.Find == nil || ports.Annotations == nil {
		return nil, ErrMissingPorts
	}

	s := &Server{ports: ports}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/document", s.handleDocument)
		r.Get("/pages/{page}/text", s.handlePageText)
		r.Get("/find", s.handleFind)
		r.Get("/annotations", s.handleListAnnotations)
		r.Post("/annotations", s.handleCreateAnnotation)
		r.Post("/annotations/import", s.handleImportAnnotations)
		r.Delete("/annotations/{id}", s.handleDeleteAnnotation)
	})
	for path, h := range extra {
		r.Mount(path, h)
	}

	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	httpLog.Info("listening on %s", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		httpLog.Debug("%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
