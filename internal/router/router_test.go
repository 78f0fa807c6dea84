package router

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/evyataryagoni/locationserver/internal/config"
	"github.com/evyataryagoni/locationserver/internal/handler"
	"github.com/evyataryagoni/locationserver/internal/limiter"
	"github.com/evyataryagoni/locationserver/internal/logger"
	"github.com/evyataryagoni/locationserver/internal/lookup"
	"github.com/evyataryagoni/locationserver/internal/metrics"
	"github.com/evyataryagoni/locationserver/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type testStack struct {
	router  http.Handler
	client  *lookup.MockClient
	metrics *metrics.Metrics
	logs    *bytes.Buffer
}

func newTestStack(client *lookup.MockClient, lim limiter.Limiter) *testStack {
	return newTestStackWithProxy(client, lim, false)
}

func newTestStackWithProxy(client *lookup.MockClient, lim limiter.Limiter, trustProxy bool) *testStack {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "info", Output: &buf})
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	h := handler.NewLocationHandler(
		service.NewLocationService(client, m, log),
		service.NewPostService(m, log),
	)

	return &testStack{
		router:  SetupRouter(h, lim, m, log, trustProxy),
		client:  client,
		metrics: m,
		logs:    &buf,
	}
}

func (s *testStack) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_GetLocation(t *testing.T) {
	s := newTestStack(lookup.NewMockClient(`{"city": "San Francisco"}`), nil)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/location", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "San+Francisco" {
		t.Errorf("expected 200 San+Francisco, got %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "text/plain" {
		t.Errorf("expected text/plain, got %s", rec.Header().Get("Content-Type"))
	}
	if s.client.FetchCalls != 1 {
		t.Errorf("expected one upstream call, got %d", s.client.FetchCalls)
	}
}

func TestRouter_GetLocation_UpstreamDown(t *testing.T) {
	client := lookup.NewFailingMockClient(&lookup.TransportError{URL: "https://ipinfo.io/json", Err: errors.New("connection reset by peer")})
	s := newTestStack(client, nil)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/location", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if rec.Body.String() != "Error fetching location (curl failed)" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

// TestRouter_GetOtherPaths tests that every other GET path is a 404 and never
// reaches the upstream
func TestRouter_GetOtherPaths(t *testing.T) {
	s := newTestStack(lookup.NewMockClient(`{"city": "Oslo"}`), nil)

	for _, path := range []string{"/", "/anything-else", "/location/", "/locations", "/health", "/metrics", "/a/b/c"} {
		t.Run(path, func(t *testing.T) {
			rec := s.do(httptest.NewRequest(http.MethodGet, path, nil))

			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404, got %d", rec.Code)
			}
			if rec.Body.String() != "Not Found" {
				t.Errorf("expected body 'Not Found', got %q", rec.Body.String())
			}
		})
	}

	if s.client.FetchCalls != 0 {
		t.Errorf("expected no upstream calls, got %d", s.client.FetchCalls)
	}
}

// TestRouter_PostAnyPath tests that POST is handled identically on all paths
func TestRouter_PostAnyPath(t *testing.T) {
	s := newTestStack(lookup.NewMockClient(`{}`), nil)

	body := "temperature=21&humidity=55"
	for _, path := range []string{"/", "/location", "/sensor/1"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
			req.Header.Set("Content-Length", strconv.Itoa(len(body)))

			rec := s.do(req)

			if rec.Code != http.StatusOK || rec.Body.String() != "POST request received" {
				t.Errorf("expected 200 'POST request received', got %d %q", rec.Code, rec.Body.String())
			}
		})
	}

	if !strings.Contains(s.logs.String(), `"message":"Received POST data:\ntemperature=21&humidity=55"`) {
		t.Errorf("expected body in logs, got %s", s.logs.String())
	}
	if v := testutil.ToFloat64(s.metrics.PostBodiesTotal); v != 3 {
		t.Errorf("expected 3 received bodies, got %v", v)
	}
	if s.client.FetchCalls != 0 {
		t.Errorf("POST must not call the upstream, got %d calls", s.client.FetchCalls)
	}
}

func TestRouter_PostMalformed(t *testing.T) {
	s := newTestStack(lookup.NewMockClient(`{}`), nil)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x=1"))
	rec := s.do(req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}

	// The router keeps serving after a fault
	rec = s.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after fault, got %d", rec.Code)
	}
}

func TestRouter_UnsupportedMethods(t *testing.T) {
	s := newTestStack(lookup.NewMockClient(`{}`), nil)

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead} {
		t.Run(method, func(t *testing.T) {
			rec := s.do(httptest.NewRequest(method, "/location", nil))

			if rec.Code != http.StatusNotImplemented {
				t.Errorf("expected 501, got %d", rec.Code)
			}
			if method != http.MethodHead && rec.Body.String() != "Unsupported method ('"+method+"')" {
				t.Errorf("unexpected body %q", rec.Body.String())
			}
		})
	}
}

func TestRouter_RateLimited(t *testing.T) {
	s := newTestStack(lookup.NewMockClient(`{"city": "Oslo"}`), limiter.NewMockLimiter(false))

	rec := s.do(httptest.NewRequest(http.MethodGet, "/location", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
	if s.client.FetchCalls != 0 {
		t.Error("rate limited request must not reach the upstream")
	}
}

// TestRouter_DefaultConfigNeverLimits tests that the default configuration
// leaves every response untouched by the rate limiter
func TestRouter_DefaultConfigNeverLimits(t *testing.T) {
	cfg := config.Default()
	lim, err := limiter.New(limiter.Config{
		Type:              cfg.RateLimitType,
		RequestsPerSecond: cfg.RequestsPerSecond(),
	})
	if err != nil {
		t.Fatalf("failed to create limiter: %v", err)
	}
	defer lim.Close()

	s := newTestStackWithProxy(lookup.NewMockClient(`{}`), lim, cfg.TrustProxyHeaders)

	codes := make(map[int]int)
	for i := 0; i < 200; i++ {
		codes[s.do(httptest.NewRequest(http.MethodGet, "/anything-else", nil)).Code]++
	}

	if codes[http.StatusNotFound] != 200 {
		t.Errorf("expected 200 responses of 404, got %v", codes)
	}
}

// TestRouter_ForwardedHeadersIgnoredByDefault tests that rotating
// X-Forwarded-For does not give a client fresh rate limit buckets
func TestRouter_ForwardedHeadersIgnoredByDefault(t *testing.T) {
	lim := limiter.NewMemoryLimiter(1)
	defer lim.Close()
	s := newTestStack(lookup.NewMockClient(`{}`), lim)

	codes := make(map[int]int)
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/anything-else", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0."+strconv.Itoa(i+1))
		codes[s.do(req).Code]++
	}

	if codes[http.StatusNotFound] != 1 || codes[http.StatusTooManyRequests] != 19 {
		t.Errorf("expected 1 allowed and 19 limited, got %v", codes)
	}
}

// TestRouter_TrustProxyUsesForwardedAddress tests that proxy headers key the
// limiter when explicitly trusted
func TestRouter_TrustProxyUsesForwardedAddress(t *testing.T) {
	lim := limiter.NewMemoryLimiter(1)
	defer lim.Close()
	s := newTestStackWithProxy(lookup.NewMockClient(`{}`), lim, true)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/anything-else", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0."+strconv.Itoa(i+1))
		if code := s.do(req).Code; code != http.StatusNotFound {
			t.Errorf("request %d: expected 404, got %d", i, code)
		}
	}
}

func TestRouter_RequestMetrics(t *testing.T) {
	s := newTestStack(lookup.NewMockClient(`{"city": "Oslo"}`), nil)

	s.do(httptest.NewRequest(http.MethodGet, "/location", nil))
	s.do(httptest.NewRequest(http.MethodGet, "/location", nil))

	if v := testutil.ToFloat64(s.metrics.HTTPRequestsTotal.WithLabelValues("GET", "/location", "200")); v != 2 {
		t.Errorf("expected 2 requests recorded, got %v", v)
	}
	if v := testutil.ToFloat64(s.metrics.LocationLookupsTotal.WithLabelValues("success")); v != 2 {
		t.Errorf("expected 2 successful lookups, got %v", v)
	}
}

func TestAdminRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	m.PostBodiesTotal.Inc()

	r := SetupAdminRouter(reg)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("expected 200 OK, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from /metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "post_bodies_received_total 1") {
		t.Errorf("expected post counter in metrics output, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from swagger doc, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"/location"`) {
		t.Errorf("expected /location in swagger doc, got %s", rec.Body.String())
	}
}
