// Package http serves assembled dashboards as JSON over a chi router.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"gemdash/internal/cache"
	"gemdash/internal/core"
	"gemdash/internal/dashboard"
	applog "gemdash/internal/log"
	"gemdash/internal/middleware/ratelimit"
	"gemdash/internal/middleware/security"
	"gemdash/internal/middleware/trace"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger is implemented by stores that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Invalidator is implemented by stores that keep their own snapshot.
type Invalidator interface {
	Invalidate()
}

// Options configures caching, rate limiting and readiness.
type Options struct {
	CacheSize int
	// CacheTTL bounds how long an assembled result is served; 0 disables
	// result caching.
	CacheTTL time.Duration
	// RateLimitPerMinute per client IP on /api; 0 disables the limiter.
	RateLimitPerMinute int
	// Store is probed by /readyz and refreshed on tab changes when it
	// implements Pinger or Invalidator.
	Store any
}

type Server struct {
	http.Server

	assembler *dashboard.Assembler
	logger    *applog.Logger
	store     any

	results cache.Cache[core.DashboardResult]
	reports cache.Cache[core.ExpenseReport]
	sweeper *cache.Manager

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	started      time.Time
	shutdownOnce sync.Once
}

func NewServer(addr string, assembler *dashboard.Assembler, logger *applog.Logger, opts Options) *Server {
	if logger == nil {
		logger = applog.Discard()
	}
	s := &Server{
		Server:    http.Server{Addr: addr, ReadHeaderTimeout: 10 * time.Second},
		assembler: assembler,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		store:     opts.Store,
		detector:  security.NewDetector(),
		tracer:    trace.NewMiddleware(),
		sweeper:   cache.NewManager(logger),
		started:   time.Now(),
	}

	if opts.CacheTTL > 0 {
		results := cache.NewLRU[core.DashboardResult](opts.CacheSize, opts.CacheTTL)
		reports := cache.NewLRU[core.ExpenseReport](opts.CacheSize, opts.CacheTTL)
		s.results, s.reports = results, reports
		s.sweeper.Register(results)
		s.sweeper.Register(reports)
		s.sweeper.Start(opts.CacheTTL)
	}
	if opts.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
	}

	s.Handler = s.routes(logger)
	return s
}

func (s *Server) routes(logger *applog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(applog.Middleware(logger))
	r.Use(s.detector.Middleware(logger))
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited))
		}
		r.Get("/dashboards", s.handleListDashboards)
		r.Get("/dashboards/{id}", s.handleDashboard)
		r.Get("/dashboards/{id}/config", s.handleDashboardConfig)
		r.Get("/modules/{module}/expenses", s.handleModuleExpenses)
		r.Get("/modules/{module}/{tab}", s.handleModuleTab)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// InvalidateTab drops every cached result after a tab change. Any dashboard
// may read the changed tab, so nothing narrower is safe.
func (s *Server) InvalidateTab(ctx context.Context, key string) {
	if inv, ok := s.store.(Invalidator); ok {
		inv.Invalidate()
	}
	purged := 0
	if s.results != nil {
		purged += s.results.Purge()
	}
	if s.reports != nil {
		purged += s.reports.Purge()
	}
	s.logger.DebugContext(ctx, "Tab changed, cache purged",
		applog.FieldKey, key,
		"purged", purged)
}

// Shutdown stops background work and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.sweeper.Stop()
		if s.limiter != nil {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}
