// Package server поднимает gRPC сервер с общей цепочкой интерсепторов,
// health-checks, метриками и graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	_ "algolab/pkg/codec" // JSON codec для content-subtype "json"
	"algolab/pkg/config"
	"algolab/pkg/interceptors"
	"algolab/pkg/logger"
	"algolab/pkg/metrics"
	"algolab/pkg/ratelimit"
	"algolab/pkg/telemetry"
)

const defaultShutdownTimeout = 30 * time.Second

// GRPCServer обёртка над grpc.Server
type GRPCServer struct {
	server      *grpc.Server
	health      *health.Server
	serviceName string
	config      *config.Config
	telemetry   *telemetry.Provider
	rateLimiter ratelimit.Limiter
	ownsLimiter bool
}

// ServerOptions дополнительные опции сервера
type ServerOptions struct {
	// RateLimiter переопределяет лимитер из конфигурации
	RateLimiter  ratelimit.Limiter
	KeyExtractor ratelimit.KeyExtractor
	// RateLimitExempt полные имена методов без лимита
	RateLimitExempt []string
}

// New создаёт новый gRPC сервер
func New(cfg *config.Config) *GRPCServer {
	return NewWithOptions(cfg, nil)
}

// NewWithOptions создаёт сервер с дополнительными опциями
func NewWithOptions(cfg *config.Config, opts *ServerOptions) *GRPCServer {
	if opts == nil {
		opts = &ServerOptions{}
	}

	kaParams := keepalive.ServerParameters{
		MaxConnectionIdle:     cfg.GRPC.KeepAlive.MaxConnectionIdle,
		MaxConnectionAge:      cfg.GRPC.KeepAlive.MaxConnectionAge,
		MaxConnectionAgeGrace: cfg.GRPC.KeepAlive.MaxConnectionAgeGrace,
		Time:                  cfg.GRPC.KeepAlive.Time,
		Timeout:               cfg.GRPC.KeepAlive.Timeout,
	}

	kaPolicy := keepalive.EnforcementPolicy{
		MinTime:             5 * time.Second,
		PermitWithoutStream: true,
	}

	rateLimiter := opts.RateLimiter
	ownsLimiter := false
	if rateLimiter == nil && cfg.RateLimit.Enabled {
		rlCfg := ratelimit.FromConfig(&cfg.RateLimit)
		var err error
		rateLimiter, err = ratelimit.New(rlCfg)
		if err != nil {
			logger.Log.Warn("Failed to create rate limiter, continuing without it", "error", err)
			rateLimiter = nil
		} else {
			ownsLimiter = true
			logger.Log.Info("Rate limiter initialized",
				"requests", rlCfg.Requests,
				"window", rlCfg.Window,
				"strategy", rlCfg.Strategy,
				"backend", rlCfg.Backend,
			)
		}
	}

	exempt := map[string]bool{
		"/grpc.health.v1.Health/Check": true,
		"/grpc.health.v1.Health/Watch": true,
	}
	for _, method := range opts.RateLimitExempt {
		exempt[method] = true
	}

	interceptorCfg := &interceptors.ServerConfig{
		EnableTracing:   cfg.Tracing.Enabled,
		RateLimiter:     rateLimiter,
		KeyExtractor:    opts.KeyExtractor,
		RateLimitExempt: exempt,
	}

	serverOpts := []grpc.ServerOption{
		grpc.KeepaliveParams(kaParams),
		grpc.KeepaliveEnforcementPolicy(kaPolicy),
		grpc.ChainUnaryInterceptor(interceptors.UnaryServerInterceptors(interceptorCfg)...),
		grpc.ChainStreamInterceptor(interceptors.StreamServerInterceptors(interceptorCfg)...),
	}
	if cfg.GRPC.MaxRecvMsgSize > 0 {
		serverOpts = append(serverOpts, grpc.MaxRecvMsgSize(cfg.GRPC.MaxRecvMsgSize))
	}
	if cfg.GRPC.MaxSendMsgSize > 0 {
		serverOpts = append(serverOpts, grpc.MaxSendMsgSize(cfg.GRPC.MaxSendMsgSize))
	}
	if cfg.GRPC.MaxConcurrentConn > 0 {
		serverOpts = append(serverOpts, grpc.MaxConcurrentStreams(uint32(cfg.GRPC.MaxConcurrentConn)))
	}

	s := grpc.NewServer(serverOpts...)

	h := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, h)

	if cfg.IsDevelopment() {
		reflection.Register(s)
		logger.Log.Debug("gRPC reflection enabled")
	}

	return &GRPCServer{
		server:      s,
		health:      h,
		serviceName: cfg.App.Name,
		config:      cfg,
		rateLimiter: rateLimiter,
		ownsLimiter: ownsLimiter,
	}
}

// GetEngine возвращает *grpc.Server для регистрации сервисов
func (s *GRPCServer) GetEngine() *grpc.Server {
	return s.server
}

// RateLimiter возвращает активный лимитер или nil
func (s *GRPCServer) RateLimiter() ratelimit.Limiter {
	return s.rateLimiter
}

// Run поднимает телеметрию и метрики, слушает grpc.port и ждёт SIGINT/SIGTERM
func (s *GRPCServer) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if s.config.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.FromConfig(s.config))
		if err != nil {
			logger.Log.Warn("Failed to init telemetry", "error", err)
		} else {
			s.telemetry = tp
			logger.Log.Info("Telemetry initialized",
				"endpoint", s.config.Tracing.Endpoint,
				"sample_rate", s.config.Tracing.SampleRate,
			)
		}
	}

	var metricsSrv *http.Server
	if s.config.Metrics.Enabled {
		limits := metrics.NewLimitsCollector(s.config.Metrics.Namespace, "", metrics.SolverLimits{
			MaxVertices: s.config.Solver.MaxVertices,
			MaxNodes:    s.config.Solver.MaxNodes,
			Timeout:     s.config.Solver.Timeout,
		})
		if err := prometheus.Register(limits); err != nil {
			logger.Log.Debug("Limits collector not registered", "error", err)
		}

		metricsSrv = metrics.NewMetricsServer(s.config.Metrics.Port, s.config.Metrics.Path)
		go func() {
			logger.Log.Info("Starting metrics server",
				"port", s.config.Metrics.Port,
				"path", s.config.Metrics.Path,
			)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error("Metrics server failed", "error", err)
			}
		}()
	}

	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", s.config.GRPC.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	metrics.Get().SetServiceInfo(s.config.App.Version, s.config.App.Environment)

	logger.Log.Info("Starting gRPC server",
		"service", s.serviceName,
		"port", s.config.GRPC.Port,
		"environment", s.config.App.Environment,
		"version", s.config.App.Version,
	)

	err = s.Serve(ctx, lis)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Warn("Failed to shutdown metrics server", "error", err)
		}
	}
	if s.telemetry != nil {
		if err := s.telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Log.Warn("Failed to shutdown telemetry", "error", err)
		}
	}

	return err
}

// Serve обслуживает lis до отмены ctx, затем останавливает сервер.
// Активные запросы получают до 30 секунд на завершение.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	s.health.SetServingStatus(s.serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(lis)
	}()

	select {
	case err := <-errCh:
		s.closeLimiter()
		return err
	case <-ctx.Done():
		logger.Log.Info("Shutting down gRPC server", "service", s.serviceName)
	}

	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		logger.Log.Info("Server stopped gracefully")
	case <-time.After(defaultShutdownTimeout):
		logger.Log.Warn("Forcing server stop")
		s.server.Stop()
	}

	s.closeLimiter()
	return nil
}

func (s *GRPCServer) closeLimiter() {
	if s.rateLimiter == nil || !s.ownsLimiter {
		return
	}
	if err := s.rateLimiter.Close(); err != nil {
		logger.Log.Warn("Failed to close rate limiter", "error", err)
	}
}

// SetServingStatus устанавливает статус сервиса
func (s *GRPCServer) SetServingStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus(s.serviceName, status)
}

// Stop останавливает сервер немедленно
func (s *GRPCServer) Stop() {
	s.server.Stop()
}
