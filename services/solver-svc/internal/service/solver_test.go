package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	solverv1 "algolab/api/solver/v1"
	"algolab/pkg/apperror"
	"algolab/pkg/cache"
	"algolab/pkg/config"
	"algolab/pkg/logger"
	"algolab/services/solver-svc/internal/algorithms"
)

func TestMain(m *testing.M) {
	// Инициализируем логгер для тестов
	logger.Init("error")

	os.Exit(m.Run())
}

var unitSquare = []solverv1.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

// 1→2(5) 1→3(9) 2→4(6) 3→4(5) 3→5(8) 4→6(10) 5→6(2), max flow 12
var sixNode = [][]int64{
	{2, 5, 3, 9},
	{4, 6},
	{4, 5, 5, 8},
	{6, 10},
	{6, 2},
}

func newService(t *testing.T, opts Options, withCache bool) *SolverService {
	t.Helper()
	if !withCache {
		return NewSolverService(opts, nil)
	}
	mem := cache.NewMemoryCache(nil)
	t.Cleanup(func() { _ = mem.Close() })
	return NewSolverService(opts, cache.NewSolverCache(mem, time.Minute))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{Version: "1.2.3"},
		Solver: config.SolverConfig{
			DefaultStrategy: "BFS",
			MaxVertices:     100,
			MaxNodes:        50,
			Timeout:         2 * time.Second,
			VerifyResults:   true,
		},
	}

	opts := OptionsFromConfig(cfg)

	assert.Equal(t, "1.2.3", opts.Version)
	assert.Equal(t, algorithms.StrategyBFS, opts.DefaultStrategy)
	assert.Equal(t, 100, opts.MaxVertices)
	assert.Equal(t, 50, opts.MaxNodes)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Equal(t, 64, opts.CheckInterval, "zero check interval keeps the default")
	assert.True(t, opts.VerifyResults)

	assert.Equal(t, DefaultOptions(), OptionsFromConfig(nil))
}

func TestSolverService_Triangulate(t *testing.T) {
	svc := newService(t, DefaultOptions(), false)

	resp, err := svc.Triangulate(context.Background(), &solverv1.TriangulateRequest{Points: unitSquare, Verify: true})
	require.NoError(t, err)

	assert.Equal(t, int64(8), resp.MinCost)
	assert.Equal(t, []solverv1.Triangle{{I: 0, K: 1, J: 3}, {I: 1, K: 2, J: 3}}, resp.Triangles)
	require.NotNil(t, resp.Stats)
	assert.Equal(t, 4, resp.Stats.Vertices)
	assert.Equal(t, 4, resp.Stats.DPCells)
	assert.False(t, resp.Stats.CacheHit)
}

func TestSolverService_Triangulate_Errors(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxVertices = 4
	svc := newService(t, opts, false)

	tests := []struct {
		name string
		req  *solverv1.TriangulateRequest
		code apperror.ErrorCode
	}{
		{"nil request", nil, apperror.CodeInvalidInput},
		{"empty", &solverv1.TriangulateRequest{}, apperror.CodeTooFewVertices},
		{"two points", &solverv1.TriangulateRequest{Points: unitSquare[:2]}, apperror.CodeTooFewVertices},
		{"over limit", &solverv1.TriangulateRequest{Points: append(unitSquare, solverv1.Point{X: 2, Y: 2})}, apperror.CodeInputTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Triangulate(context.Background(), tt.req)
			require.Error(t, err)
			if got := apperror.Code(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
			assert.True(t, apperror.IsInvalidInput(err))
		})
	}
}

func TestSolverService_Triangulate_Cache(t *testing.T) {
	svc := newService(t, DefaultOptions(), true)
	ctx := context.Background()
	req := &solverv1.TriangulateRequest{Points: unitSquare}

	first, err := svc.Triangulate(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Stats.CacheHit)

	second, err := svc.Triangulate(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Stats.CacheHit)
	assert.Equal(t, first.MinCost, second.MinCost)
	assert.Equal(t, first.Triangles, second.Triangles)

	req.SkipCache = true
	third, err := svc.Triangulate(ctx, req)
	require.NoError(t, err)
	assert.False(t, third.Stats.CacheHit)
}

func TestSolverService_Triangulate_Deadline(t *testing.T) {
	svc := newService(t, DefaultOptions(), false)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := svc.Triangulate(ctx, &solverv1.TriangulateRequest{Points: unitSquare})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeTimeout, apperror.Code(err))
}

func TestSolverService_ComputeMaxFlow(t *testing.T) {
	svc := newService(t, DefaultOptions(), false)

	for _, strategy := range []string{"", "dfs", "bfs", "edmonds-karp"} {
		t.Run("strategy="+strategy, func(t *testing.T) {
			resp, err := svc.ComputeMaxFlow(context.Background(), &solverv1.MaxFlowRequest{
				NodeCount: 6,
				Adjacency: sixNode,
				Strategy:  strategy,
				Verify:    true,
			})
			require.NoError(t, err)

			assert.Equal(t, int64(12), resp.MaxFlow)
			assert.Contains(t, resp.SourceSide, 1)
			assert.NotContains(t, resp.SourceSide, 6)

			var cut int64
			for _, e := range resp.CutEdges {
				cut += e.Capacity
			}
			assert.Equal(t, resp.MaxFlow, cut)

			require.NotNil(t, resp.Stats)
			assert.Equal(t, 6, resp.Stats.Nodes)
			assert.Equal(t, 7, resp.Stats.Edges)
			assert.Positive(t, resp.Stats.Augmentations)
		})
	}
}

func TestSolverService_ComputeMaxFlow_DefaultStrategyFromOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.DefaultStrategy = algorithms.StrategyBFS
	svc := newService(t, opts, false)

	resp, err := svc.ComputeMaxFlow(context.Background(), &solverv1.MaxFlowRequest{NodeCount: 6, Adjacency: sixNode})
	require.NoError(t, err)
	assert.Equal(t, "bfs", resp.Stats.Strategy)
}

func TestSolverService_ComputeMaxFlow_ReturnPaths(t *testing.T) {
	svc := newService(t, DefaultOptions(), false)

	resp, err := svc.ComputeMaxFlow(context.Background(), &solverv1.MaxFlowRequest{
		NodeCount:   6,
		Adjacency:   sixNode,
		ReturnPaths: true,
	})
	require.NoError(t, err)

	require.Len(t, resp.Paths, resp.Stats.Augmentations)
	var total int64
	for _, p := range resp.Paths {
		total += p.Flow
	}
	assert.Equal(t, resp.MaxFlow, total)
}

func TestSolverService_ComputeMaxFlow_Errors(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxNodes = 10
	svc := newService(t, opts, false)

	tests := []struct {
		name string
		req  *solverv1.MaxFlowRequest
		code apperror.ErrorCode
	}{
		{"nil request", nil, apperror.CodeInvalidInput},
		{"one node", &solverv1.MaxFlowRequest{NodeCount: 1}, apperror.CodeInvalidNodeCount},
		{"odd list", &solverv1.MaxFlowRequest{NodeCount: 2, Adjacency: [][]int64{{2}}}, apperror.CodeOddEdgeList},
		{"bad destination", &solverv1.MaxFlowRequest{NodeCount: 2, Adjacency: [][]int64{{3, 1}}}, apperror.CodeInvalidDestination},
		{"negative capacity", &solverv1.MaxFlowRequest{NodeCount: 2, Adjacency: [][]int64{{2, -1}}}, apperror.CodeNegativeCapacity},
		{"over limit", &solverv1.MaxFlowRequest{NodeCount: 11}, apperror.CodeInputTooLarge},
		{"unknown strategy", &solverv1.MaxFlowRequest{NodeCount: 2, Strategy: "dinic"}, apperror.CodeInvalidAlgorithm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ComputeMaxFlow(context.Background(), tt.req)
			require.Error(t, err)
			if got := apperror.Code(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestSolverService_ComputeMaxFlow_Cache(t *testing.T) {
	svc := newService(t, DefaultOptions(), true)
	ctx := context.Background()

	req := &solverv1.MaxFlowRequest{NodeCount: 6, Adjacency: sixNode, Strategy: "bfs"}

	first, err := svc.ComputeMaxFlow(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Stats.CacheHit)

	second, err := svc.ComputeMaxFlow(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Stats.CacheHit)
	assert.Equal(t, "bfs", second.Stats.Strategy)
	assert.Equal(t, first.MaxFlow, second.MaxFlow)
	assert.Equal(t, first.FlowEdges, second.FlowEdges)

	// другая стратегия — другой ключ
	req.Strategy = "dfs"
	third, err := svc.ComputeMaxFlow(ctx, req)
	require.NoError(t, err)
	assert.False(t, third.Stats.CacheHit)
}

func TestSolverService_ComputeMaxFlow_Canceled(t *testing.T) {
	svc := newService(t, DefaultOptions(), false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ComputeMaxFlow(ctx, &solverv1.MaxFlowRequest{NodeCount: 6, Adjacency: sixNode})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeCanceled, apperror.Code(err))
}

func TestSolverService_GetAlgorithms(t *testing.T) {
	opts := DefaultOptions()
	opts.Version = "2.0.0"
	opts.DefaultStrategy = algorithms.StrategyBFS
	opts.MaxNodes = 500
	opts.Timeout = 3 * time.Second
	svc := newService(t, opts, false)

	resp, err := svc.GetAlgorithms(context.Background(), &solverv1.GetAlgorithmsRequest{})
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", resp.Version)
	require.NotNil(t, resp.Limits)
	assert.Equal(t, 500, resp.Limits.MaxNodes)
	assert.Equal(t, int64(3000), resp.Limits.TimeoutMs)

	defaults := map[string]string{}
	for _, a := range resp.Algorithms {
		if a.Default {
			defaults[a.Problem] = a.Name
		}
	}
	assert.Equal(t, map[string]string{"triangulation": "interval-dp", "maxflow": "bfs"}, defaults)
}

// Каждый прогон движка учитывается ровно один раз, in-flight возвращается к нулю
func TestSolverService_SolveMetrics(t *testing.T) {
	svc := newService(t, DefaultOptions(), false)
	m := svc.metrics

	ok := m.SolveOperationsTotal.WithLabelValues(algorithms.ProblemMaxFlow, "bfs", "success")
	failed := m.SolveOperationsTotal.WithLabelValues(algorithms.ProblemMaxFlow, "bfs", "error")
	inFlight := m.SolvesInFlight.WithLabelValues(algorithms.ProblemMaxFlow, "bfs")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	req := &solverv1.MaxFlowRequest{NodeCount: 6, Adjacency: sixNode, Strategy: "bfs"}
	_, err := svc.ComputeMaxFlow(context.Background(), req)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.ComputeMaxFlow(ctx, req)
	require.Error(t, err)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
	assert.Zero(t, testutil.ToFloat64(inFlight))
}
