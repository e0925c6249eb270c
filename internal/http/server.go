// Package http serves the collected ledger as an HTML page and a JSON document.
package http

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"ledgerfetch/internal/core"
	applog "ledgerfetch/internal/log"
	"ledgerfetch/internal/middleware/ratelimit"
	"ledgerfetch/internal/middleware/security"
	"ledgerfetch/internal/middleware/trace"
	"ledgerfetch/internal/render"
	appweb "ledgerfetch/web"
)

// Collector produces a complete ledger. Each call performs a fresh collection.
type Collector interface {
	Collect(ctx context.Context) (core.Ledger, error)
}

type Server struct {
	http.Server
	collector Collector
	html      *render.HTML
	json      render.JSON
	logger    *applog.Logger
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware
	started   time.Time

	shutdownOnce sync.Once
}

// ServerOption configures the server
type ServerOption func(*Server)

// WithLogger sets the logger
func WithLogger(logger *applog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger.WithComponent(applog.ComponentHTTP)
		}
	}
}

// WithRateLimit limits ledger requests per client IP
func WithRateLimit(requestsPerMinute int) ServerOption {
	return func(s *Server) {
		if requestsPerMinute > 0 {
			s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: requestsPerMinute})
		}
	}
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, collector Collector, opts ...ServerOption) (*Server, error) {
	html, err := render.NewHTML()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		collector: collector,
		html:      html,
		json:      render.JSON{Indent: "  "},
		logger:    applog.NewSilent(),
		started:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tracer = trace.NewMiddleware(s.logger, extractClientIP)

	mux := http.NewServeMux()

	// Static assets (served from embedded FS)
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))

	mux.Handle("GET /{$}", s.ledgerRoute(http.HandlerFunc(s.handleIndex)))
	mux.Handle("GET /api/transactions", s.ledgerRoute(http.HandlerFunc(s.handleTransactions)))
	mux.HandleFunc("GET /healthz", s.handleHealth)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.tracer.Middleware(headers.Middleware(mux))

	return s, nil
}

// ledgerRoute wraps handlers that trigger a collection.
func (s *Server) ledgerRoute(h http.Handler) http.Handler {
	h = security.NoStoreMiddleware(h)
	if s.limiter != nil {
		h = s.limiter.Middleware(extractClientIP, nil)(h)
	}
	return h
}

// Metrics returns request counters from the trace middleware
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// Shutdown gracefully shuts down the server and its background routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
