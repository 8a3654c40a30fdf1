package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"connectrpc.com/connect"

	"algolab/pkg/apperror"
	"algolab/pkg/logger"
	"algolab/pkg/ratelimit"
	gwmetrics "algolab/services/gateway-svc/internal/metrics"
)

// NewLoggingInterceptor назначает request ID и логирует запросы.
// ID берётся из X-Request-Id клиента и возвращается в ответе.
func NewLoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			requestID := requestIDFrom(req.Header())
			ctx = WithRequestID(ctx, requestID)

			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			duration := time.Since(start)

			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					connectErr.Meta().Set(RequestIDHeader, requestID)
				}

				logger.Log.Error("Request failed",
					"request_id", requestID,
					"method", procedure,
					"code", ErrorCode(err),
					"duration_ms", duration.Milliseconds(),
					"error", err,
				)
				return resp, err
			}

			resp.Header().Set(RequestIDHeader, requestID)
			logger.Log.Info("Request completed",
				"request_id", requestID,
				"method", procedure,
				"duration_ms", duration.Milliseconds(),
			)

			return resp, nil
		}
	}
}

// NewRateLimitInterceptor ограничивает частоту запросов по IP клиента.
// nil limiter отключает проверку; exempt содержит процедуры вне лимита.
func NewRateLimitInterceptor(limiter ratelimit.Limiter, exempt map[string]bool) connect.UnaryInterceptorFunc {
	if limiter == nil {
		return func(next connect.UnaryFunc) connect.UnaryFunc {
			return next
		}
	}

	m := gwmetrics.Get()

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure
			if exempt[procedure] {
				return next(ctx, req)
			}

			key := "connect:" + ratelimit.DefaultKeyExtractor(ctx, procedure, headerMetadata(req.Header(), req.Peer().Addr))

			info, allowed := checkLimit(ctx, limiter, key)
			if allowed {
				m.RateLimitPassed.Inc()
				return next(ctx, req)
			}

			m.RateLimitHits.Inc()
			logger.Log.Warn("Rate limit exceeded", "key", key, "method", procedure)

			err := apperror.ToConnect(apperror.Newf(apperror.CodeRateLimited,
				"rate limit exceeded: retry after %v", time.Until(info.ResetAt).Round(time.Second)))

			var connectErr *connect.Error
			if errors.As(err, &connectErr) {
				setLimitHeaders(connectErr.Meta(), info)
			}
			return nil, err
		}
	}
}

// NewMetricsInterceptor собирает метрики входящих Connect запросов
func NewMetricsInterceptor() connect.UnaryInterceptorFunc {
	m := gwmetrics.Get()

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			m.IncActiveRequests()
			defer m.DecActiveRequests()

			start := time.Now()

			resp, err := next(ctx, req)

			status := "OK"
			if err != nil {
				status = connect.CodeOf(err).String()
				m.RecordError(ErrorCode(err))
			}
			m.RecordRequest(req.Spec().Procedure, status, time.Since(start))

			return resp, err
		}
	}
}

// ErrorCode возвращает прикладной код ошибки (x-error-code) или код Connect
func ErrorCode(err error) string {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		if code := connectErr.Meta().Get(apperror.CodeHeader); code != "" {
			return code
		}
		return connectErr.Code().String()
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return string(appErr.Code)
	}
	return string(apperror.CodeInternal)
}

// checkLimit при ошибке лимитера пропускает запрос (fail open)
func checkLimit(ctx context.Context, limiter ratelimit.Limiter, key string) (*ratelimit.LimitInfo, bool) {
	allowed, err := limiter.Allow(ctx, key)
	if err != nil {
		logger.Log.Warn("Rate limit check failed", "error", err, "key", key)
		return nil, true
	}
	if allowed {
		return nil, true
	}

	info, err := limiter.GetInfo(ctx, key)
	if err != nil {
		logger.Log.Warn("Failed to get rate limit info", "error", err, "key", key)
		info = &ratelimit.LimitInfo{ResetAt: time.Now().Add(time.Minute)}
	}
	return info, false
}

type headerSetter interface {
	Set(key, value string)
}

func setLimitHeaders(h headerSetter, info *ratelimit.LimitInfo) {
	h.Set("X-Ratelimit-Limit", strconv.Itoa(info.Limit))
	h.Set("X-Ratelimit-Remaining", "0")
	h.Set("X-Ratelimit-Reset", info.ResetAt.UTC().Format(time.RFC3339))
	if retry := time.Until(info.ResetAt); retry > 0 {
		h.Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
	}
}
