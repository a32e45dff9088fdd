package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gemdash/internal/dashboard"
	"gemdash/internal/ledger"
	"gemdash/internal/ledger/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPinger struct{ *memory.Store }

func (failingPinger) Ping(context.Context) error { return errors.New("database is locked") }

type countingInvalidator struct {
	*memory.Store
	calls int
}

func (c *countingInvalidator) Invalidate() { c.calls++ }

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New(nil)
	items := map[string]any{
		ledger.Key(ledger.KindInventory, "sl", "Rough Stones"): []map[string]any{
			{"cost": 1000, "finalPrice": 5000, "status": "Sold"},
			{"cost": 2000, "finalPrice": 9000, "status": "Available"},
		},
		ledger.Key(ledger.KindExpenses, "sl", "Colombo Office"): []map[string]any{{"amount": 500}},
		ledger.Key(ledger.KindCutPolish, "sl", "Cut & Polish"):  []map[string]any{{"amount": 250}},
	}
	for key, records := range items {
		require.NoError(t, store.PutRecords(key, records))
	}
	return store
}

func newTestServer(t *testing.T, store ledger.Store, opts Options) *Server {
	t.Helper()
	reg, err := dashboard.Default()
	require.NoError(t, err)
	now := func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	asm := dashboard.NewAssembler(reg, ledger.NewReader(store, nil), nil, dashboard.Options{Fanout: 2, Now: now})
	if opts.Store == nil {
		opts.Store = store
	}
	srv := NewServer(":0", asm, nil, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func TestHealthAndHeaders(t *testing.T) {
	srv := newTestServer(t, memory.New(nil), Options{})

	rr := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode(t, rr)["status"])
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, decode(t, get(t, srv, "/nope"))["requestId"])
}

func TestReady(t *testing.T) {
	srv := newTestServer(t, memory.New(nil), Options{})
	assert.Equal(t, http.StatusOK, get(t, srv, "/readyz").Code)

	failing := failingPinger{memory.New(nil)}
	srv = newTestServer(t, failing, Options{Store: failing})
	rr := get(t, srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	checks := decode(t, rr)["checks"].(map[string]any)
	assert.Contains(t, checks["store"], "database is locked")
}

func TestListDashboards(t *testing.T) {
	srv := newTestServer(t, memory.New(nil), Options{})
	rr := get(t, srv, "/api/dashboards")
	require.Equal(t, http.StatusOK, rr.Code)

	var list []dashboardSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	ids := make([]string, 0, len(list))
	for _, d := range list {
		ids = append(ids, d.ID)
	}
	assert.Contains(t, ids, "sl-dashboard")
	assert.Contains(t, ids, "outstanding-dashboard")
}

func TestDashboardCachingAndInvalidation(t *testing.T) {
	store := &countingInvalidator{Store: seededStore(t)}
	srv := newTestServer(t, store, Options{CacheSize: 16, CacheTTL: time.Minute, Store: store})

	rr := get(t, srv, "/api/dashboards/sl-dashboard")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
	metrics := decode(t, rr)["metrics"].(map[string]any)
	assert.Equal(t, 5000.0, metrics["salesRevenue"])
	assert.Equal(t, 1250.0, metrics["netProfit"])

	rr = get(t, srv, "/api/dashboards/sl-dashboard")
	assert.Equal(t, "HIT", rr.Header().Get("X-Cache"))

	key := ledger.Key(ledger.KindExpenses, "sl", "Colombo Office")
	require.NoError(t, store.PutRecords(key, []map[string]any{{"amount": 1500}}))
	srv.InvalidateTab(context.Background(), key)
	assert.Equal(t, 1, store.calls)

	rr = get(t, srv, "/api/dashboards/sl-dashboard")
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
	metrics = decode(t, rr)["metrics"].(map[string]any)
	assert.Equal(t, 250.0, metrics["netProfit"])
}

func TestUnknownDashboardFallsBack(t *testing.T) {
	srv := newTestServer(t, memory.New(nil), Options{})

	rr := get(t, srv, "/api/dashboards/office-unknown")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, false, body["hasData"])
	assert.Equal(t, 0.0, body["metrics"].(map[string]any)["profit"])

	rr = get(t, srv, "/api/dashboards/office-unknown/config")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, decode(t, rr)["error"], "unknown dashboard")

	rr = get(t, srv, "/api/dashboards/sl-dashboard/config")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "overview", decode(t, rr)["recipe"])
}

func TestModuleEndpoints(t *testing.T) {
	srv := newTestServer(t, seededStore(t), Options{CacheSize: 16, CacheTTL: time.Minute})

	rr := get(t, srv, "/api/modules/sl/expenses")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "sl", body["module"])
	assert.Equal(t, "750", body["total"])
	assert.Equal(t, "HIT", get(t, srv, "/api/modules/sl/expenses").Header().Get("X-Cache"))

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/modules/atlantis/expenses").Code)

	rr = get(t, srv, "/api/modules/sl/SL%20Dashboard")
	require.Equal(t, http.StatusOK, rr.Code)
	body = decode(t, rr)
	assert.Equal(t, "sl-dashboard", body["dashboard"])
	assert.Equal(t, true, body["hasData"])

	rr = get(t, srv, "/api/modules/sl/Gem%20Show")
	require.Equal(t, http.StatusOK, rr.Code)
	body = decode(t, rr)
	assert.Equal(t, "sl/Gem Show", body["dashboard"])
	assert.Equal(t, 2000.0, body["metrics"].(map[string]any)["profit"])
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, memory.New(nil), Options{RateLimitPerMinute: 2})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, get(t, srv, "/api/dashboards").Code)
	}
	rr := get(t, srv, "/api/dashboards")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Contains(t, decode(t, rr)["error"], "rate limit")

	// probes outside /api are never limited
	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, memory.New(nil), Options{CacheSize: 4, CacheTTL: time.Minute, RateLimitPerMinute: 100})
	get(t, srv, "/api/dashboards/sl-dashboard")
	get(t, srv, "/api/dashboards/sl-dashboard")

	body := get(t, srv, "/metrics").Body.String()
	for _, want := range []string{
		"http_requests_total 2",
		"dashboard_cache_hits_total 1",
		"dashboard_cache_misses_total 1",
		"rate_limit_hits_total 0",
		"suspicious_requests_total 0",
	} {
		assert.True(t, strings.Contains(body, want), "metrics missing %q:\n%s", want, body)
	}
}
