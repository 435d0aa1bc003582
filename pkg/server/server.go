// Package server exposes the search pipeline over HTTP.
//
// # Routes
//
//	POST /v1/search/{family}   run a search; body {"ctp": ..., "options": ...}
//	GET  /v1/count/{family}    closed-form search space size
//	GET  /v1/predict           predicted minimal cogwheel for one pathway
//	GET  /v1/runs              archived runs, newest first
//	GET  /v1/runs/{id}         one archived run
//	GET  /healthz              liveness and build info
//	GET  /metrics              Prometheus metrics, when configured
//
// Searches run with at most GOMAXPROCS workers and a candidate buffer of at
// most Config.MaxBufferBytes, whatever the request asks for. Count requests
// are bounded by MaxScansLimit and MaxCountBlocks.
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with a
// status derived from the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cyclesearch/pkg/archive"
	"github.com/matzehuels/cyclesearch/pkg/core/stream"
	"github.com/matzehuels/cyclesearch/pkg/observability"
	"github.com/matzehuels/cyclesearch/pkg/pipeline"
)

const (
	// DefaultMaxScansLimit caps n_scans_max for API searches.
	DefaultMaxScansLimit = 512

	// DefaultSearchTimeout bounds a single API search.
	DefaultSearchTimeout = 5 * time.Minute

	// DefaultMaxBufferBytes caps the candidate buffer of an API search.
	DefaultMaxBufferBytes = 64 << 20

	// DefaultMaxCountBlocks caps the blocks and sub-cycle lengths of a
	// count request.
	DefaultMaxCountBlocks = 64

	// maxBodyBytes bounds a search request body.
	maxBodyBytes = 1 << 20
)

// Config configures a Server.
type Config struct {
	Runner  *pipeline.Runner
	Archive archive.Store // nil disables the /v1/runs routes
	Metrics http.Handler  // nil disables /metrics
	Logger  *log.Logger

	MaxScansLimit  int
	SearchTimeout  time.Duration
	MaxBufferBytes int
	MaxCountBlocks int
}

// Server is the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	archive archive.Store
	metrics http.Handler
	logger  *log.Logger

	maxScans  int
	timeout   time.Duration
	maxBuffer int
	maxBlocks int
}

// New creates a server. A nil Runner gets an uncached default.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.MaxScansLimit == 0 {
		cfg.MaxScansLimit = DefaultMaxScansLimit
	}
	if cfg.SearchTimeout == 0 {
		cfg.SearchTimeout = DefaultSearchTimeout
	}
	if cfg.MaxBufferBytes == 0 {
		cfg.MaxBufferBytes = DefaultMaxBufferBytes
	}
	cfg.MaxBufferBytes = min(cfg.MaxBufferBytes, stream.MaxBufferBytes)
	if cfg.MaxCountBlocks == 0 {
		cfg.MaxCountBlocks = DefaultMaxCountBlocks
	}
	return &Server{
		runner:   cfg.Runner,
		archive:  cfg.Archive,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		maxScans:  cfg.MaxScansLimit,
		timeout:   cfg.SearchTimeout,
		maxBuffer: cfg.MaxBufferBytes,
		maxBlocks: cfg.MaxCountBlocks,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/search/{family}", s.handleSearch)
		r.Get("/count/{family}", s.handleCount)
		r.Get("/predict", s.handlePredict)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
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

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// instrument reports every request to the server hooks under its route
// pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.Server()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
