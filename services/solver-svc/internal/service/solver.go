package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	solverv1 "algolab/api/solver/v1"
	"algolab/pkg/apperror"
	"algolab/pkg/cache"
	"algolab/pkg/config"
	"algolab/pkg/logger"
	"algolab/pkg/metrics"
	"algolab/pkg/telemetry"
	"algolab/services/solver-svc/internal/algorithms"
	"algolab/services/solver-svc/internal/converter"
)

// triangulationEngine метка движка триангуляции в метриках
const triangulationEngine = "interval-dp"

// Options настройки сервиса (секция solver конфига)
type Options struct {
	Version         string
	DefaultStrategy algorithms.Strategy
	MaxVertices     int // 0 = без ограничения
	MaxNodes        int // 0 = без ограничения
	Timeout         time.Duration
	CheckInterval   int
	VerifyResults   bool
}

// Лимиты по умолчанию совпадают с дефолтами конфига (solver.max_*)
const (
	DefaultMaxVertices = 2000
	DefaultMaxNodes    = 2000
)

// DefaultOptions стратегия dfs и лимиты по умолчанию
func DefaultOptions() Options {
	return Options{
		Version:         "dev",
		DefaultStrategy: algorithms.DefaultStrategy,
		MaxVertices:     DefaultMaxVertices,
		MaxNodes:        DefaultMaxNodes,
		CheckInterval:   64,
	}
}

// OptionsFromConfig собирает Options из конфига
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}

	if cfg.App.Version != "" {
		opts.Version = cfg.App.Version
	}
	if s, err := algorithms.ParseStrategy(cfg.Solver.DefaultStrategy); err == nil {
		opts.DefaultStrategy = s
	}
	opts.MaxVertices = cfg.Solver.MaxVertices
	opts.MaxNodes = cfg.Solver.MaxNodes
	opts.Timeout = cfg.Solver.Timeout
	if cfg.Solver.CheckInterval > 0 {
		opts.CheckInterval = cfg.Solver.CheckInterval
	}
	opts.VerifyResults = cfg.Solver.VerifyResults

	return opts
}

type SolverService struct {
	solverv1.UnimplementedSolverServiceServer
	opts        Options
	metrics     *metrics.Metrics
	solverCache *cache.SolverCache
}

// NewSolverService создаёт сервис; solverCache может быть nil
func NewSolverService(opts Options, solverCache *cache.SolverCache) *SolverService {
	if opts.DefaultStrategy == "" {
		opts.DefaultStrategy = algorithms.DefaultStrategy
	}
	return &SolverService{
		opts:        opts,
		metrics:     metrics.Get(),
		solverCache: solverCache,
	}
}

func (s *SolverService) Triangulate(ctx context.Context, req *solverv1.TriangulateRequest) (*solverv1.TriangulateResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "SolverService.Triangulate")
	defer span.End()

	log := logger.WithContext(ctx, "problem", algorithms.ProblemTriangulation)

	if err := s.validateTriangulation(req); err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}
	span.SetAttributes(telemetry.TriangulationInputAttributes(len(req.Points))...)
	s.metrics.RecordInputSize(algorithms.ProblemTriangulation, len(req.Points))

	// Проверяем кэш
	if s.solverCache != nil && !req.SkipCache {
		cached, found, err := s.solverCache.GetTriangulation(ctx, req)
		if err != nil {
			log.Warn("Cache lookup failed", "error", err)
		}
		if found {
			s.metrics.RecordCacheHit(algorithms.ProblemTriangulation)
			span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
			cached.Stats = &solverv1.TriangulationStats{Vertices: len(req.Points), CacheHit: true}
			return cached, nil
		}
		s.metrics.RecordCacheMiss(algorithms.ProblemTriangulation)
	}
	span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, false))

	solveCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	timer := s.metrics.StartSolve(algorithms.ProblemTriangulation, triangulationEngine)
	defer timer.Finish(false)

	res, err := algorithms.TriangulateContext(solveCtx, converter.ToPoints(req.Points))
	elapsed := timer.Elapsed()
	if err != nil {
		telemetry.SetError(ctx, err)
		log.Debug("Triangulation failed", "error", err, "code", apperror.Code(err))
		return nil, err
	}

	if req.Verify || s.opts.VerifyResults {
		if err := algorithms.VerifyTriangulation(len(req.Points), res); err != nil {
			s.metrics.RecordVerificationFailure(algorithms.ProblemTriangulation)
			telemetry.SetError(ctx, err)
			log.Error("Triangulation verification failed", "error", err)
			return nil, err
		}
		span.SetAttributes(attribute.Bool(telemetry.AttrVerified, true))
	}

	resp := converter.FromTriangulation(res)

	if s.solverCache != nil && !req.SkipCache {
		if err := s.solverCache.SetTriangulation(ctx, req, resp); err != nil {
			log.Warn("Failed to cache triangulation", "error", err)
		}
	}

	resp.Stats = &solverv1.TriangulationStats{
		Vertices:          len(req.Points),
		DPCells:           res.Cells,
		ComputationTimeMs: float64(elapsed.Microseconds()) / 1000,
	}

	timer.Finish(true)
	s.metrics.RecordDPCells(res.Cells)
	span.SetAttributes(telemetry.TriangulationResultAttributes(res.MinCost, res.Cells)...)

	log.Debug("Triangulation solved",
		"vertices", len(req.Points),
		"min_cost", res.MinCost,
		"duration", elapsed,
	)

	return resp, nil
}

func (s *SolverService) ComputeMaxFlow(ctx context.Context, req *solverv1.MaxFlowRequest) (*solverv1.MaxFlowResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "SolverService.ComputeMaxFlow")
	defer span.End()

	log := logger.WithContext(ctx, "problem", algorithms.ProblemMaxFlow)

	if err := s.validateMaxFlow(req); err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	strategy, err := s.resolveStrategy(req.Strategy)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	net, err := algorithms.NewNetwork(req.NodeCount, req.Adjacency)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	span.SetAttributes(telemetry.NetworkAttributes(net.NodeCount(), net.EdgeCount(), string(strategy))...)
	s.metrics.RecordInputSize(algorithms.ProblemMaxFlow, net.NodeCount())

	baseStats := solverv1.MaxFlowStats{
		Nodes:    net.NodeCount(),
		Edges:    net.EdgeCount(),
		Strategy: string(strategy),
	}

	// Проверяем кэш
	if s.solverCache != nil && !req.SkipCache {
		cached, found, err := s.solverCache.GetMaxFlow(ctx, req, string(strategy))
		if err != nil {
			log.Warn("Cache lookup failed", "error", err)
		}
		if found {
			s.metrics.RecordCacheHit(algorithms.ProblemMaxFlow)
			span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
			stats := baseStats
			stats.CacheHit = true
			cached.Stats = &stats
			return cached, nil
		}
		s.metrics.RecordCacheMiss(algorithms.ProblemMaxFlow)
	}
	span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, false))

	opts := algorithms.DefaultSolverOptions().
		WithStrategy(strategy).
		WithCheckInterval(s.opts.CheckInterval).
		WithReturnPaths(req.ReturnPaths).
		WithTimeout(s.opts.Timeout)

	timer := s.metrics.StartSolve(algorithms.ProblemMaxFlow, string(strategy))
	defer timer.Finish(false)

	res, err := algorithms.Solve(ctx, net, opts)
	elapsed := timer.Elapsed()
	if err != nil {
		telemetry.SetError(ctx, err)
		log.Debug("Max flow failed", "error", err, "code", apperror.Code(err))
		return nil, err
	}

	if req.Verify || s.opts.VerifyResults {
		if err := algorithms.VerifyFlow(net, res); err != nil {
			s.metrics.RecordVerificationFailure(algorithms.ProblemMaxFlow)
			telemetry.SetError(ctx, err)
			log.Error("Max flow verification failed", "error", err, "strategy", strategy)
			return nil, err
		}
		span.SetAttributes(attribute.Bool(telemetry.AttrVerified, true))
	}

	resp := converter.FromMaxFlow(res)

	if s.solverCache != nil && !req.SkipCache {
		if err := s.solverCache.SetMaxFlow(ctx, req, string(strategy), resp); err != nil {
			log.Warn("Failed to cache max flow", "error", err)
		}
	}

	stats := baseStats
	stats.Augmentations = res.Augmentations
	stats.ComputationTimeMs = float64(elapsed.Microseconds()) / 1000
	resp.Stats = &stats

	timer.Finish(true)
	s.metrics.RecordMaxFlow(string(strategy), res.Augmentations, res.MaxFlow)
	span.SetAttributes(telemetry.MaxFlowAttributes(res.MaxFlow, res.Augmentations, len(res.CutEdges))...)

	log.Debug("Max flow solved",
		"nodes", net.NodeCount(),
		"strategy", strategy,
		"max_flow", res.MaxFlow,
		"augmentations", res.Augmentations,
		"duration", elapsed,
	)

	return resp, nil
}

// GetAlgorithms возвращает метаданные доступных алгоритмов и лимиты
func (s *SolverService) GetAlgorithms(ctx context.Context, _ *solverv1.GetAlgorithmsRequest) (*solverv1.GetAlgorithmsResponse, error) {
	_, span := telemetry.StartSpan(ctx, "SolverService.GetAlgorithms")
	defer span.End()

	infos := converter.FromCatalog(algorithms.Catalog())
	for i := range infos {
		if infos[i].Problem == algorithms.ProblemMaxFlow {
			infos[i].Default = infos[i].Name == string(s.opts.DefaultStrategy)
		}
	}

	span.SetAttributes(attribute.Int("algorithms_count", len(infos)))

	return &solverv1.GetAlgorithmsResponse{
		Algorithms: infos,
		Limits: &solverv1.Limits{
			MaxVertices: s.opts.MaxVertices,
			MaxNodes:    s.opts.MaxNodes,
			TimeoutMs:   s.opts.Timeout.Milliseconds(),
		},
		Version: s.opts.Version,
	}, nil
}

func (s *SolverService) validateTriangulation(req *solverv1.TriangulateRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if s.opts.MaxVertices > 0 && len(req.Points) > s.opts.MaxVertices {
		return apperror.Newf(apperror.CodeInputTooLarge,
			"polygon has %d vertices, limit is %d", len(req.Points), s.opts.MaxVertices).
			WithField("points")
	}
	return nil
}

// validateMaxFlow проверяет лимит до того, как NewNetwork выделит n×n матрицу
func (s *SolverService) validateMaxFlow(req *solverv1.MaxFlowRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if s.opts.MaxNodes > 0 && req.NodeCount > s.opts.MaxNodes {
		return apperror.Newf(apperror.CodeInputTooLarge,
			"network has %d nodes, limit is %d", req.NodeCount, s.opts.MaxNodes).
			WithField("node_count")
	}
	return nil
}

func (s *SolverService) resolveStrategy(name string) (algorithms.Strategy, error) {
	if name == "" {
		return s.opts.DefaultStrategy, nil
	}
	return algorithms.ParseStrategy(name)
}

func (s *SolverService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(ctx, s.opts.Timeout)
	}
	return ctx, func() {}
}
