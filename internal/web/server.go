// Package web exposes the merger over HTTP: upload up to MaxFiles
// workbooks, get one merged workbook back.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nconklindev/gopdon/internal/config"
	"github.com/nconklindev/gopdon/internal/history"
	"github.com/nconklindev/gopdon/internal/merger"
	"github.com/nconklindev/gopdon/internal/types"
)

// Merger is the part of merger.Merger the handlers need.
type Merger interface {
	Merge(files [][]byte, platform types.Platform, progressChan chan<- float64) (*types.MergeResult, error)
}

var _ Merger = (*merger.Merger)(nil)

type Server struct {
	merger  Merger
	history *history.Store
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	now     func() time.Time
}

// NewServer wires routes and middleware. history may be nil.
func NewServer(m Merger, h *history.Store, cfg *config.Config) *Server {
	s := &Server{
		merger:  m,
		history: h,
		cfg:     cfg,
		router:  chi.NewRouter(),
		now:     time.Now,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/merge", s.handleMerge)
		r.Get("/history", s.handleListHistory)
		r.Delete("/history", s.handleClearHistory)
	})
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	writeJSONBody(w, v)
}
