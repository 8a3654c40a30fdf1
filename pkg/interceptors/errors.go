package interceptors

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"algolab/pkg/apperror"
)

// ErrorCodeTrailer несёт прикладной код ошибки (ODD_EDGE_LIST и т.п.),
// gRPC статус сам по себе передаёт только codes.Code и текст
const ErrorCodeTrailer = apperror.CodeHeader

// ErrorInterceptor переводит *apperror.Error в gRPC статус
// и кладёт прикладной код в trailer
func ErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}

		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			_ = grpc.SetTrailer(ctx, metadata.Pairs(ErrorCodeTrailer, string(appErr.Code))) //nolint:errcheck // вне транспорта trailer недоступен
		}

		return nil, apperror.ToGRPC(err)
	}
}
