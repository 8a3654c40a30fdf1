// Package main is the entry point for the solver-svc microservice.
//
// solver-svc exposes the two algorithm engines as the gRPC service
// algolab.solver.v1.SolverService:
//   - Triangulate: minimum-cost polygon triangulation (interval DP)
//   - ComputeMaxFlow: max flow / min cut from node 1 to node n (dfs or bfs)
//   - GetAlgorithms: available engines and server-side limits
//
// Messages are JSON-encoded (content subtype application/grpc+json), so
// grpcurl works without proto files:
//
//	grpcurl -plaintext -d '{"node_count":3,"adjacency":[[2,5],[3,4]]}' \
//	  localhost:50052 algolab.solver.v1.SolverService/ComputeMaxFlow
//
// # Configuration
//
// Priority (highest to lowest):
//  1. Environment variables (prefix: ALGOLAB_)
//  2. Config file (ALGOLAB_CONFIG_PATH, config.yaml, configs/config.yaml)
//  3. Default values
//
// Service-specific keys:
//
//	ALGOLAB_SOLVER_DEFAULT_STRATEGY - dfs or bfs (default: dfs)
//	ALGOLAB_SOLVER_MAX_VERTICES     - Polygon size limit, 0 = none
//	ALGOLAB_SOLVER_MAX_NODES        - Network size limit, 0 = none
//	ALGOLAB_SOLVER_TIMEOUT          - Per-request solve timeout
//	ALGOLAB_SOLVER_VERIFY_RESULTS   - Re-check every result before returning it
//	ALGOLAB_CACHE_ENABLED           - Result cache (memory or redis)
//	ALGOLAB_RATE_LIMIT_ENABLED      - Per-client rate limiting
//
// # Interceptor Chain
//
//  1. Recovery
//  2. Request ID
//  3. Rate limit (health checks and GetAlgorithms are exempt)
//  4. Tracing (if enabled)
//  5. Metrics
//  6. Logging
//  7. Error mapping (application code in the x-error-code trailer)
//  8. Validation
//
// # Graceful Shutdown
//
// On SIGINT/SIGTERM the health status goes to NOT_SERVING, in-flight
// requests get up to 30 seconds, then telemetry and the metrics server
// are shut down. Tracing is initialised by the server itself.
package main

import (
	"log"

	"algolab/pkg/config"
	"algolab/pkg/logger"
	"algolab/pkg/metrics"
	solversvc "algolab/services/solver-svc"
)

func main() {
	cfg, err := config.LoadWithServiceDefaults("solver-svc", 50052)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
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

	metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)

	srv := solversvc.NewGRPCServer(cfg)

	logger.Info("Starting solver service",
		"port", cfg.GRPC.Port,
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
		"default_strategy", cfg.Solver.DefaultStrategy,
		"cache_enabled", cfg.Cache.Enabled,
	)

	if err := srv.Run(); err != nil {
		logger.Fatal("server failed", "error", err)
	}
}
