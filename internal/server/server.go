// Package server implements the parsimony HTTP API.
//
// Clients post an input tree and receive the ID of a stored run:
//
//	POST /v1/runs?workers=4&max_frontier=1000   body: adjacency or Newick text
//	GET  /v1/runs                               newest runs first
//	GET  /v1/runs/{id}                          run record with the JSON result
//	GET  /v1/runs/{id}/newick?lengths=true      result trees in Newick
//	GET  /healthz
//	GET  /metrics                               Prometheus exposition
//
// Concurrent posts of the same input with the same limits share one search.
// Searches run detached from the request so a client that disconnects does
// not cancel the run for the others waiting on it; RunTimeout bounds them.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/parsimony/pkg/observability"
	"github.com/matzehuels/parsimony/pkg/pipeline"
	"github.com/matzehuels/parsimony/pkg/store"
)

// Defaults applied to zero Config fields.
const (
	DefaultMaxBody    = 8 << 20
	DefaultRunTimeout = 10 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	Runner     *pipeline.Runner    // required
	Store      store.Store         // required
	Gatherer   prometheus.Gatherer // nil disables /metrics
	Logger     *log.Logger
	MaxBody    int64         // request body limit in bytes
	RunTimeout time.Duration // wall-time limit of one search

	// Search defaults for requests that omit them.
	Workers       int
	MaxFrontier   int
	MaxIterations int
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	runs   singleflight.Group
	router chi.Router
}

// New creates a server and its routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = DefaultMaxBody
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}
	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1/runs", func(r chi.Router) {
		r.Post("/", s.handleCreateRun)
		r.Get("/", s.handleListRuns)
		r.Get("/{id}", s.handleGetRun)
		r.Get("/{id}/newick", s.handleGetNewick)
	})
	return r
}

// instrument reports every request to the server hooks and logs it.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := s.routePattern(r)
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, route)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)
		s.cfg.Logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// routePattern resolves the route template of r, so metrics are labeled by
// template rather than by path.
func (s *Server) routePattern(r *http.Request) string {
	rctx := chi.NewRouteContext()
	if s.router != nil && s.router.Match(rctx, r.Method, r.URL.Path) {
		return rctx.RoutePattern()
	}
	return "unmatched"
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.cfg.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
