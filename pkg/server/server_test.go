package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"algolab/pkg/config"
	"algolab/pkg/logger"
	"algolab/pkg/metrics"
	"algolab/pkg/ratelimit"
)

func init() {
	logger.Init("error")

	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	metrics.InitMetrics("test", "server")
}

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Name: "test-app", Environment: "test"},
		GRPC: config.GRPCConfig{Port: 50051},
	}
}

func TestNewServer(t *testing.T) {
	srv := New(testConfig())

	assert.NotNil(t, srv)
	assert.NotNil(t, srv.GetEngine())
	assert.Nil(t, srv.RateLimiter(), "rate limiting is disabled")
}

func TestNewServer_RateLimitFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 5, Window: time.Second}

	srv := New(cfg)
	require.NotNil(t, srv.RateLimiter())
	assert.True(t, srv.ownsLimiter)
	srv.closeLimiter()
}

func TestNewServer_InjectedLimiter(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(nil)
	defer limiter.Close()

	srv := NewWithOptions(testConfig(), &ServerOptions{
		RateLimiter:     limiter,
		RateLimitExempt: []string{"/x/Y"},
	})

	assert.Same(t, limiter, srv.RateLimiter())
	assert.False(t, srv.ownsLimiter, "injected limiter is closed by its owner")
}

func TestServe_HealthAndShutdown(t *testing.T) {
	srv := New(testConfig())
	lis := bufconn.Listen(1 << 20)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(callCtx,
		&grpc_health_v1.HealthCheckRequest{Service: "test-app"})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
