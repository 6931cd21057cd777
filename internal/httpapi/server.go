// Package httpapi implements the two read-only endpoints over the sync
// orchestrator's cache, grounded on the teacher's internal/api server
// wiring (net/http.ServeMux pattern routing, a request-ID middleware ported
// from its chi-based request-id/logging stack, but using the standard
// library's method+pattern mux since this repository does not carry the
// teacher's chi dependency).
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	apperrors "git.home.luguber.info/inful/pagesync/internal/apperrors"
	"git.home.luguber.info/inful/pagesync/internal/logfields"
	"git.home.luguber.info/inful/pagesync/internal/page"
)

// PageSource is the subset of the orchestrator the read surface depends on.
type PageSource interface {
	GetAllPages() []page.Page
	GetPageByIdentifier(identifier string) (page.Page, bool)
}

// Config carries the home-identifier aliasing knobs (§4.8).
type Config struct {
	ServeHome      bool
	HomeIdentifier string
}

// Server is the HTTP read surface: GET /api/pages and GET /api/pages/{slug}.
type Server struct {
	source Config
	pages  PageSource
	errs   *apperrors.HTTPErrorAdapter
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewServer builds a Server and registers its routes on a fresh ServeMux.
func NewServer(pages PageSource, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		source: cfg,
		pages:  pages,
		errs:   apperrors.NewHTTPErrorAdapter(logger),
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/pages", s.handleListPages)
	s.mux.HandleFunc("GET /api/pages/{slug}", s.handleGetPage)
	// {slug} never matches an empty segment, so the bare trailing-slash
	// form is registered separately to reach the home-identifier aliasing.
	s.mux.HandleFunc("GET /api/pages/{$}", s.handleGetPage)
}

// Handler returns the composed handler with request-ID and access logging
// middleware applied, in the teacher's request-scoped logging style.
func (s *Server) Handler() http.Handler {
	return s.withLogging(s.withRequestID(s.mux))
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type requestIDKey struct{}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		requestID, _ := r.Context().Value(requestIDKey{}).(string)
		s.logger.Info("http request",
			logfields.Method(r.Method), logfields.URL(r.URL.Path),
			logfields.Status(rec.status), logfields.RequestID(requestID),
			logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// handleListPages answers GET /api/pages: a JSON array of wire-form pages.
// Order is not guaranteed.
func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	pages := s.pages.GetAllPages()
	wire := make([]page.WireRow, 0, len(pages))
	for _, p := range pages {
		wire = append(wire, p.ToWireRow())
	}
	writeJSON(w, http.StatusOK, wire)
}

// handleGetPage answers GET /api/pages/{slug}: the wire-form page, or 404
// when the manifest has no binding for slug. An empty slug, "/", or the
// configured home identifier all alias the home identifier when ServeHome
// is enabled (§4.8).
func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	slug := s.normalizeSlug(r.PathValue("slug"))

	p, ok := s.pages.GetPageByIdentifier(slug)
	if !ok {
		s.errs.WriteErrorResponse(w, r, apperrors.NotFoundError("page not found: "+slug).Build())
		return
	}
	writeJSON(w, http.StatusOK, p.ToWireRow())
}

func (s *Server) normalizeSlug(slug string) string {
	if s.source.ServeHome && (slug == "" || slug == "/") {
		return s.source.HomeIdentifier
	}
	return slug
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
