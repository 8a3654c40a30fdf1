package middleware

import (
	"net/http"
	"time"

	"algolab/pkg/logger"
	"algolab/pkg/ratelimit"
	gwmetrics "algolab/services/gateway-svc/internal/metrics"
)

// statusRecorder запоминает код ответа и размер тела
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *statusRecorder) code() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// RequestID кладёт request id в контекст и в заголовок ответа
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := requestIDFrom(r.Header)
		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), requestID)))
	})
}

// HTTPLogging логирует обычные HTTP маршруты (export, health)
func HTTPLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		attrs := []any{
			"request_id", GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.code(),
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if rec.code() >= http.StatusInternalServerError {
			logger.Log.Error("HTTP request failed", attrs...)
			return
		}
		logger.Log.Info("HTTP request completed", attrs...)
	})
}

// HTTPMetrics пишет метрики маршрута route
func HTTPMetrics(route string, next http.Handler) http.Handler {
	m := gwmetrics.Get()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.IncActiveRequests()
		defer m.DecActiveRequests()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		m.RecordRequest(route, http.StatusText(rec.code()), time.Since(start))
		m.RecordResponseSize(route, rec.bytes)
	})
}

// HTTPRateLimit ограничивает маршрут тем же лимитером, что и Connect API.
// onLimited формирует ответ, когда лимит исчерпан.
func HTTPRateLimit(limiter ratelimit.Limiter, onLimited func(http.ResponseWriter, *http.Request, *ratelimit.LimitInfo), next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}

	m := gwmetrics.Get()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "http:" + ratelimit.DefaultKeyExtractor(r.Context(), r.URL.Path, headerMetadata(r.Header, r.RemoteAddr))

		info, allowed := checkLimit(r.Context(), limiter, key)
		if allowed {
			m.RateLimitPassed.Inc()
			next.ServeHTTP(w, r)
			return
		}

		m.RateLimitHits.Inc()
		logger.Log.Warn("Rate limit exceeded", "key", key, "path", r.URL.Path)

		setLimitHeaders(w.Header(), info)
		onLimited(w, r, info)
	})
}
