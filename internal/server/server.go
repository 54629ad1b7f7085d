// Package server exposes path planning over HTTP.
//
// Routes:
//
//	GET  /health             liveness check
//	GET  /metrics            Prometheus exposition, when a gatherer is set
//	GET  /api/v1/config      the default configuration as JSON
//	POST /api/v1/plan        plan and return the sampled trajectory
//	POST /api/v1/render      plan and return a Graphviz drawing
//
// Request bodies are JSON configurations applied over the defaults, so
// an empty body plans the default scenario. Errors are returned as
//
//	{"error": {"code": "NO_PATH", "message": "..."}}
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/gridpath/pkg/cache"
	errs "github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/planner"
)

const (
	// DefaultTimeout bounds the handling of a single request.
	DefaultTimeout = 30 * time.Second

	// renderTTL bounds how long rendered drawings are reused.
	renderTTL = 7 * 24 * time.Hour

	shutdownTimeout = 5 * time.Second
)

// Options configures a [Server]. Zero values select defaults.
type Options struct {
	Logger   *log.Logger
	Planner  *planner.Planner
	Cache    cache.Cache         // render cache, none when nil
	Gatherer prometheus.Gatherer // serves /metrics when set
	Timeout  time.Duration
}

// Server handles planning requests.
type Server struct {
	logger   *log.Logger
	planner  *planner.Planner
	cache    cache.Cache
	gatherer prometheus.Gatherer
	timeout  time.Duration
}

// New creates a server from opts.
func New(opts Options) *Server {
	s := &Server{
		logger:   opts.Logger,
		planner:  opts.Planner,
		cache:    opts.Cache,
		gatherer: opts.Gatherer,
		timeout:  opts.Timeout,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.planner == nil {
		s.planner = planner.New(s.logger)
	}
	if s.cache == nil {
		s.cache = cache.NullCache{}
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.timeout))

	r.Get("/health", s.health)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", s.defaults)
		r.Post("/plan", s.plan)
		r.Post("/render", s.render)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorStatus(w, http.StatusNotFound, errs.New(errs.ErrCodeInvalidArgument, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorStatus(w, http.StatusMethodNotAllowed, errs.New(errs.ErrCodeUnsupported, "%s is not allowed on %s", r.Method, r.URL.Path))
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. ready, when non-nil, is called with the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidArgument, err, "listen on %s", addr)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	if ready != nil {
		ready(ln.Addr())
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	select {
	case err := <-serveErr:
		return errs.Wrap(errs.ErrCodeInternal, err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "shutdown")
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return errs.Wrap(errs.ErrCodeInternal, err, "serve")
	}
	return nil
}

// requestLogger logs one line per request at info level, or at warn level
// for server errors.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logf := logger.Info
			if status >= http.StatusInternalServerError {
				logf = logger.Warn
			}
			logf("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}
