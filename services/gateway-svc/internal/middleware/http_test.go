package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"algolab/pkg/ratelimit"
	gwmetrics "algolab/services/gateway-svc/internal/metrics"
)

func TestRequestID_HTTP(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-1", seen)
	assert.Equal(t, "abc-1", rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, rec.Header().Get("X-Request-Id"), seen)
}

func TestHTTPMetrics(t *testing.T) {
	m := gwmetrics.Get()
	before := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/test/metrics", "Bad Request"))

	handler := HTTPLogging(HTTPMetrics("/test/metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/test/metrics", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/test/metrics", "Bad Request")))
}

func TestStatusRecorder_DefaultOK(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	assert.Equal(t, http.StatusOK, rec.code())

	_, err := rec.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.code())
	assert.Equal(t, 5, rec.bytes)
}

func TestHTTPRateLimit(t *testing.T) {
	cfg := ratelimit.DefaultConfig()
	cfg.Requests = 1
	cfg.Window = time.Minute
	limiter := ratelimit.NewMemoryLimiter(cfg)
	t.Cleanup(func() { _ = limiter.Close() })

	limited := 0
	onLimited := func(w http.ResponseWriter, r *http.Request, info *ratelimit.LimitInfo) {
		limited++
		w.WriteHeader(http.StatusTooManyRequests)
	}
	handler := HTTPRateLimit(limiter, onLimited, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/export/maxflow", nil)
		req.RemoteAddr = "10.1.1.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send().Code)

	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Ratelimit-Limit"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, limited)
}

func TestHTTPRateLimit_NilLimiter(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := HTTPRateLimit(nil, nil, next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
