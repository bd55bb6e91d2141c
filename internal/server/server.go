// Package server exposes the import pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz     liveness probe
//	GET  /v1/rules    rename rules applied to every import
//	POST /v1/graphs   import a recorded trace (JSON or YAML body)
//
// POST /v1/graphs accepts the query parameters format (json, dot, svg),
// input_names (comma separated), indexed and detailed. Every response carries
// an X-Request-Id header.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tracegraph/pkg/pipeline"
	"github.com/matzehuels/tracegraph/pkg/transform"
)

// DefaultMaxBodyBytes bounds the size of an uploaded trace.
const DefaultMaxBodyBytes = 32 << 20

// Options configures a Server.
type Options struct {
	// Rules are applied after the framework transforms on every request.
	Rules []transform.Rule
	// MaxBodyBytes limits request bodies. Defaults to DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// RequestTimeout bounds a single request. Zero means no limit.
	RequestTimeout time.Duration
}

// Server serves the HTTP API. Each request runs its own pipeline, so the
// server can handle requests concurrently.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
}

// New creates a server backed by runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{runner: runner, logger: logger, opts: opts}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	if s.opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/rules", s.handleRules)
		r.Post("/graphs", s.handleCreateGraph)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
