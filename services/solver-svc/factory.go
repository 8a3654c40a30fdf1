// services/solver-svc/factory.go
package solversvc

import (
	solverv1 "algolab/api/solver/v1"
	"algolab/pkg/cache"
	"algolab/pkg/config"
	"algolab/pkg/logger"
	"algolab/pkg/server"
	"algolab/services/solver-svc/internal/service"
)

// RateLimitExempt методы, которые не считаются в лимите запросов
var RateLimitExempt = []string{solverv1.GetAlgorithmsFullMethodName}

// NewLocalServer создаёт сервис без кэша, с лимитами по умолчанию.
// Используется CLI для локального решения и в бенчмарках.
func NewLocalServer() solverv1.SolverServiceServer {
	return service.NewSolverService(service.DefaultOptions(), nil)
}

// NewServer создаёт сервис по конфигу. Ошибка создания кэша не фатальна:
// сервис работает без него.
func NewServer(cfg *config.Config) solverv1.SolverServiceServer {
	return service.NewSolverService(service.OptionsFromConfig(cfg), newSolverCache(cfg))
}

// NewGRPCServer собирает gRPC сервер с зарегистрированным SolverService
func NewGRPCServer(cfg *config.Config) *server.GRPCServer {
	srv := server.NewWithOptions(cfg, &server.ServerOptions{
		RateLimitExempt: RateLimitExempt,
	})
	solverv1.RegisterSolverServiceServer(srv.GetEngine(), NewServer(cfg))
	return srv
}

func newSolverCache(cfg *config.Config) *cache.SolverCache {
	if cfg == nil || !cfg.Cache.Enabled {
		return nil
	}

	baseCache, err := cache.New(cache.FromConfig(&cfg.Cache))
	if err != nil {
		logger.Log.Warn("Failed to create cache, continuing without cache", "error", err)
		return nil
	}

	logger.Log.Info("Solver cache initialized",
		"driver", cfg.Cache.Driver,
		"ttl", cfg.Cache.DefaultTTL,
	)
	return cache.NewSolverCache(baseCache, cfg.Cache.DefaultTTL)
}
