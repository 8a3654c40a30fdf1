// Package interceptors собирает серверную цепочку gRPC для solver-svc.
package interceptors

import (
	"google.golang.org/grpc"

	"algolab/pkg/ratelimit"
	"algolab/pkg/telemetry"
)

// ServerConfig конфигурация серверных интерсепторов
type ServerConfig struct {
	EnableTracing bool
	RateLimiter   ratelimit.Limiter
	KeyExtractor  ratelimit.KeyExtractor
	// RateLimitExempt методы без лимита (например, GetAlgorithms)
	RateLimitExempt map[string]bool
}

// UnaryServerInterceptors возвращает unary интерсепторы для grpc.ChainUnaryInterceptor.
// Порядок: recovery, request id, rate limit, tracing, metrics, logging, errors, validation.
func UnaryServerInterceptors(cfg *ServerConfig) []grpc.UnaryServerInterceptor {
	interceptors := []grpc.UnaryServerInterceptor{
		RecoveryInterceptor(),
		RequestIDInterceptor(),
	}

	if cfg.RateLimiter != nil {
		interceptors = append(interceptors,
			RateLimitInterceptor(cfg.RateLimiter, cfg.KeyExtractor, cfg.RateLimitExempt))
	}

	if cfg.EnableTracing {
		interceptors = append(interceptors, telemetry.UnaryServerInterceptor())
	}

	interceptors = append(interceptors,
		MetricsInterceptor(),
		LoggingInterceptor(),
		ErrorInterceptor(),
		ValidationInterceptor(),
	)

	return interceptors
}

// StreamServerInterceptors возвращает stream интерсепторы.
// Собственных stream методов у сервиса нет, цепочка обслуживает health watch и reflection.
func StreamServerInterceptors(cfg *ServerConfig) []grpc.StreamServerInterceptor {
	interceptors := []grpc.StreamServerInterceptor{
		StreamRecoveryInterceptor(),
	}

	if cfg.EnableTracing {
		interceptors = append(interceptors, telemetry.StreamServerInterceptor())
	}

	interceptors = append(interceptors,
		StreamMetricsInterceptor(),
		StreamLoggingInterceptor(),
	)

	return interceptors
}
