package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	solverv1 "algolab/api/solver/v1"
)

const triangulationVariant = "dp"

// SolverCache типизированный кэш результатов решателя поверх Cache
type SolverCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// NewSolverCache создаёт кэш для solver результатов
func NewSolverCache(cache Cache, defaultTTL time.Duration) *SolverCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &SolverCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// TriangulationKey ключ для многоугольника
func TriangulationKey(points []solverv1.Point) string {
	return BuildSolveKey(PrefixTriangulation, triangulationVariant, PointsHash(points))
}

// MaxFlowKey ключ для сети. Разные стратегии могут дать разное
// разложение потока, поэтому стратегия входит в ключ.
func MaxFlowKey(req *solverv1.MaxFlowRequest, strategy string) string {
	variant := strings.ToLower(strategy)
	if req.ReturnPaths {
		variant += "+paths"
	}
	return BuildSolveKey(PrefixMaxFlow, variant, NetworkHash(req.NodeCount, req.Adjacency))
}

// GetTriangulation возвращает (nil, false, nil) при промахе
func (sc *SolverCache) GetTriangulation(ctx context.Context, req *solverv1.TriangulateRequest) (*solverv1.TriangulateResponse, bool, error) {
	var resp solverv1.TriangulateResponse
	ok, err := sc.get(ctx, TriangulationKey(req.Points), &resp)
	if !ok || err != nil {
		return nil, ok, err
	}
	return &resp, true, nil
}

// SetTriangulation сохраняет ответ без статистики запроса
func (sc *SolverCache) SetTriangulation(ctx context.Context, req *solverv1.TriangulateRequest, resp *solverv1.TriangulateResponse) error {
	stored := *resp
	stored.Stats = nil
	return sc.set(ctx, TriangulationKey(req.Points), &stored)
}

// GetMaxFlow возвращает (nil, false, nil) при промахе
func (sc *SolverCache) GetMaxFlow(ctx context.Context, req *solverv1.MaxFlowRequest, strategy string) (*solverv1.MaxFlowResponse, bool, error) {
	var resp solverv1.MaxFlowResponse
	ok, err := sc.get(ctx, MaxFlowKey(req, strategy), &resp)
	if !ok || err != nil {
		return nil, ok, err
	}
	return &resp, true, nil
}

// SetMaxFlow сохраняет ответ без статистики запроса
func (sc *SolverCache) SetMaxFlow(ctx context.Context, req *solverv1.MaxFlowRequest, strategy string, resp *solverv1.MaxFlowResponse) error {
	stored := *resp
	stored.Stats = nil
	return sc.set(ctx, MaxFlowKey(req, strategy), &stored)
}

// InvalidateAll удаляет все результаты решателя
func (sc *SolverCache) InvalidateAll(ctx context.Context) (int64, error) {
	tri, err := sc.cache.DeleteByPattern(ctx, PrefixTriangulation+":*")
	if err != nil {
		return tri, err
	}
	flow, err := sc.cache.DeleteByPattern(ctx, PrefixMaxFlow+":*")
	return tri + flow, err
}

// Stats статистика нижележащего кэша
func (sc *SolverCache) Stats(ctx context.Context) (*Stats, error) {
	return sc.cache.Stats(ctx)
}

// Close закрывает нижележащий кэш
func (sc *SolverCache) Close() error {
	return sc.cache.Close()
}

func (sc *SolverCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := sc.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(data, dst); err != nil {
		// Повреждённая запись: удаляем и считаем промахом
		_ = sc.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return false, nil
	}
	return true, nil
}

func (sc *SolverCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return sc.cache.Set(ctx, key, data, sc.defaultTTL)
}
