package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"algolab/pkg/metrics"
)

// MetricsInterceptor считает RPC решателя с меткой задачи.
// In-flight gauge ведётся по задаче, а не по методу: методов ровно по одному на задачу.
func MetricsInterceptor() grpc.UnaryServerInterceptor {
	m := metrics.Get()

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		problem := describeRequest(req).problem

		inFlight := m.GRPCRequestsInFlight.WithLabelValues(problem)
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		resp, err := handler(ctx, req)

		st, _ := status.FromError(err)
		m.RecordGRPCRequest(info.FullMethod, problem, st.Code().String(), time.Since(start))

		return resp, err
	}
}

// StreamMetricsInterceptor считает stream вызовы (health watch, reflection)
func StreamMetricsInterceptor() grpc.StreamServerInterceptor {
	m := metrics.Get()

	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)

		st, _ := status.FromError(err)
		m.RecordGRPCRequest(info.FullMethod, "", st.Code().String(), time.Since(start))

		return err
	}
}
