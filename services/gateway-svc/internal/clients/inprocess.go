package clients

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	solverv1 "algolab/api/solver/v1"
	"algolab/pkg/client"
	"algolab/pkg/interceptors"
	"algolab/pkg/logger"
)

// InProcessHost значение services.solver.host, при котором solver
// запускается внутри процесса gateway
const InProcessHost = "inprocess"

const inProcessBuffer = 4 << 20

// NewInProcessManager поднимает SolverService на bufconn и подключается к нему
// тем же gRPC клиентом, что и к удалённому solver-svc
func NewInProcessManager(ctx context.Context, svc solverv1.SolverServiceServer, timeout time.Duration) (*Manager, error) {
	lis := bufconn.Listen(inProcessBuffer)

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		interceptors.RequestIDInterceptor(),
		interceptors.ErrorInterceptor(),
	))
	solverv1.RegisterSolverServiceServer(srv, svc)

	h := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, h)
	h.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Log.Warn("In-process solver stopped", "error", err)
		}
	}()

	cfg := client.DefaultClientConfig()
	cfg.Address = "passthrough:///" + InProcessHost
	cfg.MaxRetries = 0
	if timeout > 0 {
		cfg.Timeout = timeout
	}

	conn, err := client.NewGRPCClient(ctx, cfg,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	if err != nil {
		srv.Stop()
		return nil, err
	}

	logger.Log.Info("Using in-process solver")

	return &Manager{
		solver:  client.NewSolverClientFromConn(conn, cfg.Timeout),
		address: InProcessHost,
		stop:    srv.Stop,
	}, nil
}
