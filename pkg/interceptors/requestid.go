package interceptors

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"algolab/pkg/logger"
)

// RequestIDHeader заголовок, через который gateway передаёт id запроса
const RequestIDHeader = "x-request-id"

// RequestIDInterceptor берёт x-request-id из metadata или генерирует новый,
// кладёт его в контекст и возвращает клиенту в заголовке ответа
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var id string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) > 0 {
				id = v[0]
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		// Вне транспорта (в тестах) заголовок установить нельзя
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id)) //nolint:errcheck // best effort

		return handler(logger.ContextWithRequestID(ctx, id), req)
	}
}
