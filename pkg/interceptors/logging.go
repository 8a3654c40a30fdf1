package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"algolab/pkg/logger"
)

// LoggingInterceptor пишет одну строку на запрос.
// request_id берётся из контекста (RequestIDInterceptor стоит раньше в цепочке),
// problem/strategy/input_size из самого запроса.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		attrs := append([]any{
			"method", info.FullMethod,
			"duration_ms", time.Since(start).Milliseconds(),
		}, describeRequest(req).fields()...)
		log := logger.WithContext(ctx, attrs...)

		if err == nil {
			log.Info("solver request completed")
			return resp, err
		}

		st, _ := status.FromError(err)
		log.Error("solver request failed",
			"code", st.Code().String(),
			"error", st.Message(),
		)

		return resp, err
	}
}

// StreamLoggingInterceptor логирует streaming запросы
func StreamLoggingInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()

		err := handler(srv, ss)
		if err != nil {
			logger.Log.Error("gRPC stream failed",
				"method", info.FullMethod,
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err.Error(),
			)
		}

		return err
	}
}
