// Package trace counts API requests and their latency for the metrics
// endpoint. Request ids come from chi's RequestID middleware.
package trace

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Middleware records request counts and latency.
type Middleware struct {
	total        int64
	clientErrors int64
	serverErrors int64
	totalMicros  int64
	since        func(time.Time) time.Duration
}

// Metrics tracks request metrics
type Metrics struct {
	TotalRequests int64 `json:"totalRequests"`
	ClientErrors  int64 `json:"clientErrors"`
	ServerErrors  int64 `json:"serverErrors"`
	// AverageResponseTime is in microseconds
	AverageResponseTime int64 `json:"averageResponseTimeMicros"`
}

// NewMiddleware creates a new trace middleware
func NewMiddleware() *Middleware {
	return &Middleware{since: time.Since}
}

// Middleware returns HTTP middleware for request tracing
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		atomic.AddInt64(&m.total, 1)
		atomic.AddInt64(&m.totalMicros, m.since(start).Microseconds())
		switch status := ww.Status(); {
		case status >= 500:
			atomic.AddInt64(&m.serverErrors, 1)
		case status >= 400:
			atomic.AddInt64(&m.clientErrors, 1)
		}
	})
}

// RequestID returns the chi request id stored in r's context.
func RequestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

// GetMetrics returns current metrics
func (m *Middleware) GetMetrics() Metrics {
	out := Metrics{
		TotalRequests: atomic.LoadInt64(&m.total),
		ClientErrors:  atomic.LoadInt64(&m.clientErrors),
		ServerErrors:  atomic.LoadInt64(&m.serverErrors),
	}
	if out.TotalRequests > 0 {
		out.AverageResponseTime = atomic.LoadInt64(&m.totalMicros) / out.TotalRequests
	}
	return out
}
