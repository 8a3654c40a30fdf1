package middleware

import (
	"context"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "gateway-svc"

// NewTracingInterceptor открывает server span на каждый Connect вызов.
// Родительский контекст берётся из traceparent заголовка, дальше в solver-svc
// его переносит клиентский gRPC interceptor.
func NewTracingInterceptor() connect.UnaryInterceptorFunc {
	tracer := otel.Tracer(tracerName)

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(req.Header()))

			procedure := req.Spec().Procedure
			ctx, span := tracer.Start(ctx, procedure,
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			span.SetAttributes(
				attribute.String("rpc.system", "connect"),
				attribute.String("rpc.method", procedure),
				attribute.String("request.id", GetRequestID(ctx)),
			)

			resp, err := next(ctx, req)

			if err != nil {
				span.SetStatus(codes.Error, err.Error())
				span.SetAttributes(
					attribute.String("rpc.connect.code", connect.CodeOf(err).String()),
					attribute.String("error.code", ErrorCode(err)),
				)
				span.RecordError(err)
			} else {
				span.SetStatus(codes.Ok, "")
			}

			return resp, err
		}
	}
}
