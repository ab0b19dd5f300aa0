// Package server exposes the clinical map pipeline over HTTP.
//
// The API previews maps without storing them, saves maps as sessions, and
// renders saved maps in any output format (svg, dot, png, json or gvsvg)
// with an optional hover or selection applied:
//
//	GET    /health
//	POST   /api/v1/maps/preview
//	POST   /api/v1/maps
//	GET    /api/v1/maps
//	GET    /api/v1/maps/{id}
//	GET    /api/v1/maps/{id}/render.{format}?hover=&selected=&interactive=&guides=&detailed=
//	DELETE /api/v1/maps/{id}
//
// Failures are reported as {"error": {"code": ..., "message": ...}} with the
// HTTP status derived from the error code.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vaidya-ai/clinicalmap/pkg/pipeline"
	"github.com/vaidya-ai/clinicalmap/pkg/session"
)

// DefaultMaxBodyBytes limits request bodies when Options.MaxBodyBytes is
// not set.
const DefaultMaxBodyBytes = 1 << 20

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	MaxBodyBytes   int64

	// SessionTTL is how long saved maps are kept. Zero means
	// session.DefaultTTL.
	SessionTTL time.Duration

	// Width and Height set the layout canvas. Zero means the pipeline
	// defaults.
	Width  float64
	Height float64
}

// Server serves the clinical map API.
type Server struct {
	runner *pipeline.Runner
	store  session.Store
	logger *log.Logger
	opts   Options
}

// New creates a server. The runner and store are borrowed; Close on the
// server does not close them.
func New(runner *pipeline.Runner, store session.Store, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{
		runner: runner,
		store:  store,
		logger: logger,
		opts:   opts,
	}
}

// Handler returns the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(observe)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(limitBody(s.opts.MaxBodyBytes))

	r.Get("/health", s.health)

	r.Route("/api/v1/maps", func(r chi.Router) {
		r.Post("/preview", s.previewMap)
		r.Post("/", s.createMap)
		r.Get("/", s.listMaps)
		r.Get("/{id}", s.getMap)
		r.Get("/{id}/render.{format}", s.renderMap)
		r.Delete("/{id}", s.deleteMap)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, s.logger, errNotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// Run serves on opts.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
