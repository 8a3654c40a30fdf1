package interceptors

import (
	"context"
	"runtime/debug"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"algolab/pkg/logger"
)

func recoverPanic(ctx context.Context, p any) error {
	logger.WithContext(ctx).Error("panic recovered",
		"panic", p,
		"stack", string(debug.Stack()),
	)
	return status.Errorf(codes.Internal, "internal error")
}

// RecoveryInterceptor превращает панику обработчика в codes.Internal
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return recovery.UnaryServerInterceptor(recovery.WithRecoveryHandlerContext(recoverPanic))
}

// StreamRecoveryInterceptor то же для stream
func StreamRecoveryInterceptor() grpc.StreamServerInterceptor {
	return recovery.StreamServerInterceptor(recovery.WithRecoveryHandlerContext(recoverPanic))
}
