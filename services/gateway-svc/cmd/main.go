// Package main is the entry point for the gateway-svc HTTP gateway.
//
// gateway-svc exposes SolverService to browsers and plain HTTP clients:
//   - /algolab.solver.v1.SolverService/* - Connect (JSON over HTTP/1.1 or h2c)
//   - POST /v1/export/{triangulation|maxflow} - solve and download a report
//   - /health, /ready, /metrics
//   - /docs - Swagger UI over the embedded OpenAPI document
//
// The solver is reached over gRPC at services.solver. With
// services.solver.host=inprocess the engines run inside the gateway.
//
// # Configuration
//
//	ALGOLAB_SERVICES_SOLVER_HOST   - solver-svc host or "inprocess"
//	ALGOLAB_HTTP_PORT              - Listen port (default: 8080)
//	ALGOLAB_HTTP_MAX_BODY_BYTES    - Export body limit
//	ALGOLAB_REPORT_DEFAULT_FORMAT  - Export format when ?format= is absent
//	ALGOLAB_RATE_LIMIT_ENABLED     - Per-IP rate limiting
//
// # Interceptor Chain (Connect)
//
//  1. Logging / request ID
//  2. Tracing
//  3. Metrics
//  4. Rate limit (GetAlgorithms is exempt)
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"algolab/api/openapi"
	"algolab/api/solver/v1/solverv1connect"
	"algolab/pkg/config"
	"algolab/pkg/logger"
	"algolab/pkg/metrics"
	"algolab/pkg/ratelimit"
	"algolab/pkg/swagger"
	"algolab/pkg/telemetry"
	"algolab/services/gateway-svc/internal/clients"
	"algolab/services/gateway-svc/internal/handlers"
	gwmetrics "algolab/services/gateway-svc/internal/metrics"
	"algolab/services/gateway-svc/internal/middleware"
	solversvc "algolab/services/solver-svc"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadWithServiceDefaults("gateway-svc", 8080)
	if err != nil {
		logger.Init("error")
		logger.Fatal("Failed to load config", "error", err)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	logger.Log.Info("Starting Gateway Service (ConnectRPC)",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.FromConfig(cfg))
	if err != nil {
		logger.Log.Warn("Tracing disabled", "error", err)
	}

	gwmetrics.Init()

	clientManager, err := newClientManager(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize clients", "error", err)
	}
	defer clientManager.Close()

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.New(ratelimit.FromConfig(&cfg.RateLimit))
		if err != nil {
			logger.Fatal("Failed to initialize rate limiter", "error", err)
		}
		defer limiter.Close()
	}

	mux := http.NewServeMux()

	// ConnectRPC
	path, handler := solverv1connect.NewSolverServiceHandler(
		handlers.NewSolverHandler(clientManager),
		connect.WithInterceptors(
			middleware.NewLoggingInterceptor(),
			middleware.NewTracingInterceptor(),
			middleware.NewMetricsInterceptor(),
			middleware.NewRateLimitInterceptor(limiter, map[string]bool{
				solverv1connect.GetAlgorithmsProcedure: true,
			}),
		),
	)
	mux.Handle(path, handler)

	// Экспорт отчётов
	mux.Handle(handlers.ExportRoute, middleware.RequestID(middleware.HTTPLogging(
		middleware.HTTPMetrics("/v1/export",
			middleware.HTTPRateLimit(limiter, handlers.WriteRateLimited,
				handlers.NewExportHandler(clientManager, cfg))))))

	// Health endpoints (обычный HTTP для k8s probes)
	health := handlers.NewHealthHandler(clientManager, cfg.App.Version)
	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /ready", health.Ready)

	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	// Swagger UI и OpenAPI документ
	if err := swagger.RegisterRoutes(mux, nil, openapi.Spec()); err != nil {
		logger.Log.Warn("Swagger UI disabled", "error", err)
	}

	var httpHandler http.Handler = mux
	if cfg.HTTP.CORS.Enabled {
		httpHandler = middleware.CORS(cfg.HTTP.CORS)(mux)
	}

	// HTTP/1.1 + h2c для gRPC-совместимых Connect клиентов
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      h2c.NewHandler(httpHandler, &http2.Server{}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Log.Info("Gateway listening",
			"port", cfg.HTTP.Port,
			"protocol", "HTTP/1.1 + H2C (ConnectRPC)",
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server shutdown error", "error", err)
	}
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Telemetry shutdown error", "error", err)
		}
	}

	logger.Log.Info("Server stopped")
}

// newClientManager подключается к solver-svc или поднимает его внутри процесса
func newClientManager(ctx context.Context, cfg *config.Config) (*clients.Manager, error) {
	if cfg.Services.Solver.Host == clients.InProcessHost {
		metrics.InitMetrics(cfg.Metrics.Namespace, "solver")
		return clients.NewInProcessManager(ctx, solversvc.NewServer(cfg), cfg.Services.Solver.Timeout)
	}
	return clients.NewManager(ctx, &clients.Config{Solver: cfg.Services.Solver})
}
