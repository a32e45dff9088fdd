package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"gemdash/internal/core"
	"gemdash/internal/dashboard"
	applog "gemdash/internal/log"
	"gemdash/internal/middleware/trace"

	"github.com/go-chi/chi/v5"
)

// dashboardSummary is one entry of the dashboard listing.
type dashboardSummary struct {
	ID     string           `json:"id"`
	Module string           `json:"module"`
	Tab    string           `json:"tab"`
	Theme  string           `json:"theme"`
	Recipe dashboard.Recipe `json:"recipe"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady pings the store when it supports it.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "ok"}
	status, code := "ready", http.StatusOK

	if p, ok := s.store.(Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	} else if s.store == nil {
		checks["store"] = "not_configured"
	}

	writeJSON(w, r, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	req := s.tracer.GetMetrics()
	fmt.Fprintf(w, "# TYPE http_requests_total counter\nhttp_requests_total %d\n", req.TotalRequests)
	fmt.Fprintf(w, "# TYPE http_client_errors_total counter\nhttp_client_errors_total %d\n", req.ClientErrors)
	fmt.Fprintf(w, "# TYPE http_server_errors_total counter\nhttp_server_errors_total %d\n", req.ServerErrors)
	fmt.Fprintf(w, "# TYPE http_response_time_avg_microseconds gauge\nhttp_response_time_avg_microseconds %d\n", req.AverageResponseTime)

	if c, ok := s.results.(interface{ Stats() (uint64, uint64) }); ok {
		hits, misses := c.Stats()
		fmt.Fprintf(w, "# TYPE dashboard_cache_hits_total counter\ndashboard_cache_hits_total %d\n", hits)
		fmt.Fprintf(w, "# TYPE dashboard_cache_misses_total counter\ndashboard_cache_misses_total %d\n", misses)
		fmt.Fprintf(w, "# TYPE dashboard_cache_entries gauge\ndashboard_cache_entries %d\n", s.results.Size())
	}
	if s.limiter != nil {
		rl := s.limiter.GetMetrics()
		fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\nrate_limit_hits_total %d\n", rl.TotalHits)
		fmt.Fprintf(w, "# TYPE rate_limit_clients gauge\nrate_limit_clients %d\n", rl.ClientCount)
	}
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\nsuspicious_requests_total %d\n",
		s.detector.GetMetrics().SuspiciousRequests)
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\nuptime_seconds %.0f\n", time.Since(s.started).Seconds())
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}

func (s *Server) handleListDashboards(w http.ResponseWriter, r *http.Request) {
	configs := s.assembler.Registry().Configs()
	out := make([]dashboardSummary, 0, len(configs))
	for _, c := range configs {
		out = append(out, dashboardSummary{ID: c.ID, Module: c.Module, Tab: c.Tab, Theme: c.Theme, Recipe: c.Recipe})
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleDashboard never 404s: unknown ids are served by the assembler's
// fallback.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	res, hit := s.result(r.Context(), "dashboard:"+id, func(ctx context.Context) core.DashboardResult {
		return s.assembler.Assemble(ctx, id)
	})
	cached(w, hit)
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleDashboardConfig(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	cfg, ok := s.assembler.Registry().Config(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, fmt.Errorf("%w: %s", core.ErrUnknownDashboard, id).Error())
		return
	}
	writeJSON(w, r, http.StatusOK, cfg)
}

func (s *Server) handleModuleExpenses(w http.ResponseWriter, r *http.Request) {
	module := pathParam(r, "module")
	if _, ok := s.assembler.Registry().Module(module); !ok {
		writeError(w, r, http.StatusNotFound, "unknown module: "+module)
		return
	}

	key := "expenses:" + module
	if s.reports != nil {
		if report, ok := s.reports.Get(key); ok {
			cached(w, true)
			writeJSON(w, r, http.StatusOK, report)
			return
		}
	}
	report := s.assembler.ExpenseReport(r.Context(), module)
	if s.reports != nil {
		s.reports.Set(key, report)
	}
	cached(w, false)
	writeJSON(w, r, http.StatusOK, report)
}

// handleModuleTab resolves a module tab to its dashboard.
func (s *Server) handleModuleTab(w http.ResponseWriter, r *http.Request) {
	module, tab := pathParam(r, "module"), pathParam(r, "tab")
	key := "tab:" + module + "/" + tab
	res, hit := s.result(r.Context(), key, func(ctx context.Context) core.DashboardResult {
		return s.assembler.AssembleTab(ctx, module, tab)
	})
	cached(w, hit)
	writeJSON(w, r, http.StatusOK, res)
}

// result serves key from the cache or assembles and stores it.
func (s *Server) result(ctx context.Context, key string, assemble func(context.Context) core.DashboardResult) (core.DashboardResult, bool) {
	if s.results != nil {
		if res, ok := s.results.Get(key); ok {
			return res, true
		}
	}
	start := time.Now()
	res := assemble(ctx)
	applog.FromContext(ctx).DebugContext(ctx, "Assembled on cache miss",
		applog.FieldKey, key,
		applog.FieldDuration, time.Since(start).Milliseconds())
	if s.results != nil {
		s.results.Set(key, res)
	}
	return res, false
}

// pathParam returns a decoded route parameter. chi may hand back the escaped
// form when the request path carried encoded reserved characters.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func requestID(r *http.Request) string {
	return trace.RequestID(r)
}
