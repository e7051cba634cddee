// Package server exposes label runs over HTTP.
//
// # Endpoints
//
//	GET  /healthz      liveness probe
//	GET  /v1/counter   the persisted counter
//	GET  /v1/preview   the next sheet as a JSON page description, nothing committed
//	POST /v1/sheets    run once; responds with the rendered document
//
// POST /v1/sheets accepts the query parameters start (explicit start
// number) and force (allow a start below the counter). The allocated range
// is returned in the X-Label-First and X-Label-Last headers.
//
// Runs are serialized by a mutex, so one server process is a single writer
// to its counter. Several processes sharing a counter rely on the store's
// lock and compare-and-set commit.
//
// When a JWT secret is configured, every /v1 request needs an HS256 signed
// bearer token.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/labelsheet/pkg/artifact"
	"github.com/matzehuels/labelsheet/pkg/counter"
	"github.com/matzehuels/labelsheet/pkg/pipeline"
	"github.com/matzehuels/labelsheet/pkg/render"
	"github.com/matzehuels/labelsheet/pkg/render/sink"
)

const shutdownTimeout = 10 * time.Second

// Config configures the server.
type Config struct {
	Addr      string
	JWTSecret string
	Logger    *log.Logger
}

// Server serves label runs.
type Server struct {
	store    counter.Store
	renderer render.Renderer
	opts     pipeline.Options
	secret   []byte
	addr     string
	logger   *log.Logger
	backend  string

	// mu serializes runs.
	mu sync.Mutex
}

// New creates a server. opts are the base options of every run; requests
// may only change the start number.
func New(store counter.Store, renderer render.Renderer, opts pipeline.Options, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:    store,
		renderer: renderer,
		opts:     opts,
		secret:   []byte(cfg.JWTSecret),
		addr:     cfg.Addr,
		logger:   logger,
	}
}

// SetBackend names the store in hook events.
func (s *Server) SetBackend(name string) {
	s.backend = name
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		if len(s.secret) > 0 {
			r.Use(s.requireToken)
		}
		r.Get("/counter", s.handleCounter)
		r.Get("/preview", s.handlePreview)
		r.Post("/sheets", s.handleSheets)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr, "auth", len(s.secret) > 0)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// runner builds a runner whose documents stay in memory for the response.
func (s *Server) runner(logger *log.Logger) *pipeline.Runner {
	r := pipeline.NewRunner(s.store, s.renderer, artifact.NewMemorySink(), logger)
	r.Backend = s.backend
	return r
}

// previewRunner renders page descriptions instead of documents.
func (s *Server) previewRunner(logger *log.Logger) *pipeline.Runner {
	r := pipeline.NewRunner(s.store, sink.JSON{}, nil, logger)
	r.Backend = s.backend
	return r
}
