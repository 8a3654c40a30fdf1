package client

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	solverv1 "algolab/api/solver/v1"
	"algolab/pkg/apperror"
	"algolab/pkg/interceptors"
	"algolab/pkg/logger"
)

// SolverClient клиент для solver-svc.
//
// Ошибки сервера возвращаются как *apperror.Error с исходным прикладным
// кодом (ODD_EDGE_LIST, TIMEOUT и т.д.), а не голым gRPC статусом.
type SolverClient struct {
	conn    *grpc.ClientConn
	client  solverv1.SolverServiceClient
	timeout time.Duration
}

// NewSolverClient подключается к solver-svc
func NewSolverClient(ctx context.Context, cfg ClientConfig) (*SolverClient, error) {
	conn, err := NewGRPCClient(ctx, cfg)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeUnavailable, "failed to create solver client")
	}
	return NewSolverClientFromConn(conn, cfg.Timeout), nil
}

// NewSolverClientFromConn оборачивает готовое соединение
func NewSolverClientFromConn(conn *grpc.ClientConn, timeout time.Duration) *SolverClient {
	return &SolverClient{
		conn:    conn,
		client:  solverv1.NewSolverServiceClient(conn),
		timeout: timeout,
	}
}

// Triangulate решает задачу триангуляции на сервере
func (c *SolverClient) Triangulate(ctx context.Context, req *solverv1.TriangulateRequest) (*solverv1.TriangulateResponse, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var trailer metadata.MD
	resp, err := c.client.Triangulate(ctx, req, grpc.Trailer(&trailer))
	if err != nil {
		return nil, fromRPC(err, trailer)
	}
	return resp, nil
}

// ComputeMaxFlow считает максимальный поток на сервере
func (c *SolverClient) ComputeMaxFlow(ctx context.Context, req *solverv1.MaxFlowRequest) (*solverv1.MaxFlowResponse, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var trailer metadata.MD
	resp, err := c.client.ComputeMaxFlow(ctx, req, grpc.Trailer(&trailer))
	if err != nil {
		return nil, fromRPC(err, trailer)
	}
	return resp, nil
}

// GetAlgorithms возвращает список алгоритмов и лимиты сервера
func (c *SolverClient) GetAlgorithms(ctx context.Context) (*solverv1.GetAlgorithmsResponse, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var trailer metadata.MD
	resp, err := c.client.GetAlgorithms(ctx, &solverv1.GetAlgorithmsRequest{}, grpc.Trailer(&trailer))
	if err != nil {
		return nil, fromRPC(err, trailer)
	}
	return resp, nil
}

// Raw возвращает сырой gRPC клиент
func (c *SolverClient) Raw() solverv1.SolverServiceClient {
	return c.client
}

// Conn возвращает соединение (для health-check)
func (c *SolverClient) Conn() *grpc.ClientConn {
	return c.conn
}

// Close закрывает соединение
func (c *SolverClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// callContext добавляет таймаут вызова и пробрасывает x-request-id
func (c *SolverClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if id := logger.RequestIDFromContext(ctx); id != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, interceptors.RequestIDHeader, id)
	}
	if c.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			return context.WithTimeout(ctx, c.timeout)
		}
	}
	return ctx, func() {}
}

// fromRPC восстанавливает *apperror.Error из статуса и trailer x-error-code
func fromRPC(err error, trailer metadata.MD) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperror.FromContext(err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return apperror.Wrap(err, apperror.CodeInternal, err.Error())
	}

	if v := trailer.Get(interceptors.ErrorCodeTrailer); len(v) > 0 && v[0] != "" {
		appErr := apperror.New(apperror.ErrorCode(v[0]), st.Message())
		appErr.Cause = err
		return appErr
	}

	appErr := apperror.FromGRPC(err)
	appErr.Cause = err
	return appErr
}
