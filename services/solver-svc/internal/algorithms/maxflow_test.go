package algorithms

import (
	"context"
	"math/rand"
	"testing"

	"algolab/pkg/apperror"
	"algolab/services/solver-svc/internal/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sixNode: 1→2(5) 1→3(9) 2→4(6) 3→4(5) 3→5(8) 4→6(10) 5→6(2).
// Node 4 can forward at most 5+5 and node 5 at most 2, so the max flow is 12.
var sixNode = [][]int64{
	{2, 5, 3, 9},
	{4, 6},
	{4, 5, 5, 8},
	{6, 10},
	{6, 2},
}

// clrs is the textbook network with max flow 23.
var clrs = [][]int64{
	{2, 16, 3, 13},
	{3, 10, 4, 12},
	{2, 4, 5, 14},
	{3, 9, 6, 20},
	{4, 7, 6, 4},
}

var strategies = []Strategy{StrategyDFS, StrategyBFS}

func solveWith(t *testing.T, n int, adj [][]int64, s Strategy) *MaxFlowResult {
	t.Helper()
	res, err := ComputeMaxFlowWithOptions(context.Background(), n, adj, DefaultSolverOptions().WithStrategy(s))
	require.NoError(t, err)
	return res
}

func TestComputeMaxFlow_SixNode(t *testing.T) {
	res, err := ComputeMaxFlow(6, sixNode)
	require.NoError(t, err)

	assert.Equal(t, int64(12), res.MaxFlow)
	assert.Equal(t, []FlowEdge{
		{1, 2, 5}, {1, 3, 7}, {2, 4, 5}, {3, 4, 5}, {3, 5, 2}, {4, 6, 10}, {5, 6, 2},
	}, res.FlowEdges)
	assert.Equal(t, []int{1, 3, 5}, res.SourceSide)
	assert.Equal(t, []CutEdge{{1, 2, 5}, {3, 4, 5}, {5, 6, 2}}, res.CutEdges)
	assert.Equal(t, 3, res.Augmentations)
	assert.Equal(t, StrategyDFS, res.Strategy)

	// Independent cross-check.
	bfs := solveWith(t, 6, sixNode, StrategyBFS)
	assert.Equal(t, res.MaxFlow, bfs.MaxFlow)
	assert.Equal(t, CutCapacity(res.CutEdges), CutCapacity(bfs.CutEdges))
}

func TestComputeMaxFlow_Classic(t *testing.T) {
	for _, s := range strategies {
		t.Run(string(s), func(t *testing.T) {
			res := solveWith(t, 6, clrs, s)

			if res.MaxFlow != 23 {
				t.Errorf("Expected flow 23, got %d", res.MaxFlow)
			}
			assert.Equal(t, []int{1, 2, 3, 5}, res.SourceSide)
			assert.Equal(t, []CutEdge{{2, 4, 12}, {5, 4, 7}, {5, 6, 4}}, res.CutEdges)
		})
	}
}

func TestComputeMaxFlow_ReverseEdgeCancellation(t *testing.T) {
	// On this network a later DFS path pushes back over an edge that already
	// carries flow. The flow matrix must show net forward flow only.
	adj := [][]int64{
		{2, 3, 6, 3, 7, 2},
		{1, 3, 4, 2},
		{1, 2, 2, 1, 5, 2, 7, 1},
		{2, 2, 6, 3, 7, 2},
		{4, 3, 6, 1},
		{2, 2, 3, 2, 4, 1, 5, 2, 7, 2},
	}
	want := []FlowEdge{
		{1, 2, 2}, {1, 6, 3}, {1, 7, 2}, {2, 4, 2}, {3, 7, 1}, {4, 7, 2}, {6, 3, 1}, {6, 7, 2},
	}

	dfs := solveWith(t, 7, adj, StrategyDFS)
	assert.Equal(t, int64(7), dfs.MaxFlow)
	assert.Equal(t, want, dfs.FlowEdges)
	assert.Equal(t, 5, dfs.Augmentations)
	assert.Equal(t, []int{1, 2}, dfs.SourceSide)

	bfs := solveWith(t, 7, adj, StrategyBFS)
	assert.Equal(t, want, bfs.FlowEdges)
	assert.Equal(t, 4, bfs.Augmentations)

	net, err := NewNetwork(7, adj)
	require.NoError(t, err)
	assert.NoError(t, VerifyFlow(net, dfs))
	assert.NoError(t, VerifyFlow(net, bfs))
}

func TestComputeMaxFlow_StrategiesDifferInDecomposition(t *testing.T) {
	adj := [][]int64{
		{4, 1, 5, 2, 6, 1},
		{3, 2, 6, 1},
		{1, 3, 5, 2},
		{1, 5, 2, 4, 3, 3},
		{2, 2, 3, 4, 6, 1},
	}

	dfs := solveWith(t, 6, adj, StrategyDFS)
	bfs := solveWith(t, 6, adj, StrategyBFS)

	assert.Equal(t, []FlowEdge{{1, 5, 2}, {1, 6, 1}, {2, 6, 1}, {5, 2, 1}, {5, 6, 1}}, dfs.FlowEdges)
	assert.Equal(t, []FlowEdge{{1, 4, 1}, {1, 5, 1}, {1, 6, 1}, {2, 6, 1}, {4, 2, 1}, {5, 6, 1}}, bfs.FlowEdges)

	assert.Equal(t, int64(3), dfs.MaxFlow)
	assert.Equal(t, dfs.MaxFlow, bfs.MaxFlow)
	assert.Equal(t, dfs.SourceSide, bfs.SourceSide)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, dfs.SourceSide)
}

func TestComputeMaxFlow_Simple(t *testing.T) {
	tests := []struct {
		name string
		n    int
		adj  [][]int64
		want int64
	}{
		{"two nodes", 2, [][]int64{{2, 10}}, 10},
		{"two nodes no edge", 2, [][]int64{{}}, 0},
		{"linear", 3, [][]int64{{2, 10}, {3, 5}}, 5},
		{"diamond", 4, [][]int64{{2, 10, 3, 10}, {4, 10}, {4, 10}}, 20},
		{"bottleneck", 4, [][]int64{{2, 100}, {3, 1}, {4, 100}}, 1},
		{"disconnected sink", 4, [][]int64{{2, 5}, {3, 5}, {}}, 0},
		{"zero capacity edge", 3, [][]int64{{2, 0}, {3, 5}}, 0},
		{"self loop ignored", 3, [][]int64{{1, 7, 2, 4}, {3, 9}}, 4},
		{"duplicate keeps last", 3, [][]int64{{2, 1, 2, 6}, {3, 9}}, 6},
		{"sink list supplied", 3, [][]int64{{2, 3}, {3, 3}, {1, 8}}, 3},
	}

	for _, tt := range tests {
		for _, s := range strategies {
			t.Run(tt.name+"/"+string(s), func(t *testing.T) {
				res := solveWith(t, tt.n, tt.adj, s)
				if res.MaxFlow != tt.want {
					t.Errorf("Expected flow %d, got %d", tt.want, res.MaxFlow)
				}
			})
		}
	}
}

func TestComputeMaxFlow_NoFlowSourceSideIsComponent(t *testing.T) {
	res, err := ComputeMaxFlow(4, [][]int64{{2, 5}, {3, 5}, {}})
	require.NoError(t, err)

	assert.Empty(t, res.FlowEdges)
	assert.Equal(t, []int{1, 2, 3}, res.SourceSide)
	assert.Empty(t, res.CutEdges)
}

func TestNewNetwork_Validation(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		adj     [][]int64
		code    apperror.ErrorCode
		message string
	}{
		{
			name:    "odd list",
			n:       3,
			adj:     [][]int64{{2, 5}, {3}},
			code:    apperror.CodeOddEdgeList,
			message: "node 2: edge data must have pairs of numbers (destination capacity)",
		},
		{
			name:    "destination too large",
			n:       3,
			adj:     [][]int64{{4, 5}, {}},
			code:    apperror.CodeInvalidDestination,
			message: "node 1: invalid destination node 4",
		},
		{
			name:    "destination zero",
			n:       3,
			adj:     [][]int64{{2, 1}, {0, 5}},
			code:    apperror.CodeInvalidDestination,
			message: "node 2: invalid destination node 0",
		},
		{
			name: "negative capacity",
			n:    3,
			adj:  [][]int64{{2, -1}, {}},
			code: apperror.CodeNegativeCapacity,
		},
		{
			name: "capacity above limit",
			n:    2,
			adj:  [][]int64{{2, MaxCapacity + 1}},
			code: apperror.CodeInputTooLarge,
		},
		{
			name: "one node",
			n:    1,
			adj:  [][]int64{{}},
			code: apperror.CodeInvalidNodeCount,
		},
		{
			name: "too many lists",
			n:    2,
			adj:  [][]int64{{}, {}, {}},
			code: apperror.CodeInvalidNodeCount,
		},
		{
			name: "too few lists",
			n:    4,
			adj:  [][]int64{{2, 1}},
			code: apperror.CodeInvalidNodeCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNetwork(tt.n, tt.adj)
			require.Error(t, err)
			assert.True(t, apperror.IsInvalidInput(err), "got %v", err)
			assert.Equal(t, tt.code, apperror.Code(err))

			if tt.message != "" {
				var appErr *apperror.Error
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.message, appErr.Message)
			}
		})
	}
}

func TestNewNetwork_FirstOffendingNodeWins(t *testing.T) {
	_, err := NewNetwork(4, [][]int64{{2, 1}, {9, 1}, {3}})

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 2, appErr.Details["node"])
	assert.Equal(t, "adjacency[1]", appErr.Field)
}

func TestNetwork_Accessors(t *testing.T) {
	net, err := NewNetwork(6, sixNode)
	require.NoError(t, err)

	assert.Equal(t, 6, net.NodeCount())
	assert.Equal(t, 1, net.Source())
	assert.Equal(t, 6, net.Sink())
	assert.Equal(t, int64(9), net.Capacity(1, 3))
	assert.Equal(t, int64(0), net.Capacity(3, 1))
	assert.Equal(t, 7, net.EdgeCount())
	assert.Equal(t, int64(14), net.SourceCapacity())
	assert.Equal(t, int64(12), net.SinkCapacity())
}

func TestComputeMaxFlow_ReturnPaths(t *testing.T) {
	opts := DefaultSolverOptions().WithReturnPaths(true)
	res, err := ComputeMaxFlowWithOptions(context.Background(), 6, sixNode, opts)
	require.NoError(t, err)

	require.Len(t, res.Paths, res.Augmentations)

	var total int64
	for _, p := range res.Paths {
		assert.Equal(t, 1, p.Nodes[0])
		assert.Equal(t, 6, p.Nodes[len(p.Nodes)-1])
		total += p.Flow
	}
	assert.Equal(t, res.MaxFlow, total)

	plain, err := ComputeMaxFlow(6, sixNode)
	require.NoError(t, err)
	assert.Nil(t, plain.Paths)
}

func TestComputeMaxFlow_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, s := range strategies {
		_, err := ComputeMaxFlowWithOptions(ctx, 6, sixNode, DefaultSolverOptions().WithStrategy(s))
		require.Error(t, err)
		assert.Equal(t, apperror.CodeCanceled, apperror.Code(err))
	}
}

func TestSolve_UnknownStrategy(t *testing.T) {
	net, err := NewNetwork(2, [][]int64{{2, 1}})
	require.NoError(t, err)

	_, err = Solve(context.Background(), net, &SolverOptions{Strategy: "dinic"})
	assert.Equal(t, apperror.CodeInvalidAlgorithm, apperror.Code(err))
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyDFS, false},
		{"dfs", StrategyDFS, false},
		{" Ford-Fulkerson ", StrategyDFS, false},
		{"BFS", StrategyBFS, false},
		{"edmonds_karp", StrategyBFS, false},
		{"dinic", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSolverOptions_Normalize(t *testing.T) {
	var nilOpts *SolverOptions
	n := nilOpts.normalize()
	assert.Equal(t, StrategyDFS, n.Strategy)
	assert.Equal(t, 64, n.CheckInterval)

	in := &SolverOptions{Strategy: StrategyBFS}
	out := in.normalize()
	assert.Equal(t, 64, out.CheckInterval)
	assert.Equal(t, 0, in.CheckInterval, "normalize must not mutate the caller's options")
}

func TestCatalog(t *testing.T) {
	cat := Catalog()
	require.Len(t, cat, 3)

	defaults := 0
	for _, a := range cat {
		if a.Problem == ProblemMaxFlow && a.Default {
			defaults++
			assert.Equal(t, string(DefaultStrategy), a.Name)
		}
	}
	assert.Equal(t, 1, defaults)
}

// randomNetwork builds a random adjacency description with n nodes.
func randomNetwork(rng *rand.Rand, n int, density float64, maxCap int64) [][]int64 {
	adj := make([][]int64, n-1)
	for u := 0; u < n-1; u++ {
		for v := 1; v <= n; v++ {
			if v != u+1 && rng.Float64() < density {
				adj[u] = append(adj[u], int64(v), rng.Int63n(maxCap+1))
			}
		}
	}
	return adj
}

func TestComputeMaxFlow_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))

	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(12)
		adj := randomNetwork(rng, n, 0.4, 20)

		net, err := NewNetwork(n, adj)
		require.NoError(t, err)

		var results []*MaxFlowResult
		for _, s := range strategies {
			res, err := Solve(context.Background(), net, DefaultSolverOptions().WithStrategy(s))
			require.NoError(t, err)
			results = append(results, res)

			// Bounded by both the source's and the sink's capacity.
			assert.LessOrEqual(t, res.MaxFlow, net.SourceCapacity())
			assert.LessOrEqual(t, res.MaxFlow, net.SinkCapacity())

			// Duality, conservation and capacity bounds.
			if err := VerifyFlow(net, res); err != nil {
				t.Fatalf("trial %d (%s): %v\nadj=%v", trial, s, err, adj)
			}
			assert.Equal(t, res.MaxFlow, CutCapacity(res.CutEdges))

			// Source side is ascending.
			for i := 1; i < len(res.SourceSide); i++ {
				assert.Less(t, res.SourceSide[i-1], res.SourceSide[i])
			}

			// Determinism.
			again, err := Solve(context.Background(), net, DefaultSolverOptions().WithStrategy(s))
			require.NoError(t, err)
			assert.Equal(t, res, again)
		}

		assert.Equal(t, results[0].MaxFlow, results[1].MaxFlow, "trial %d", trial)
	}
}

func TestMinCut_ResidualFlood(t *testing.T) {
	net, err := NewNetwork(3, [][]int64{{2, 4}, {3, 4}})
	require.NoError(t, err)

	residual := net.capacity.Clone()
	side, cut := MinCut(net, residual)
	assert.Equal(t, []int{1, 2, 3}, side)
	assert.Empty(t, cut)

	residual = graph.NewMatrix(3)
	side, cut = MinCut(net, residual)
	assert.Equal(t, []int{1}, side)
	assert.Equal(t, []CutEdge{{1, 2, 4}}, cut)
}

func TestVerifyFlow_DetectsViolations(t *testing.T) {
	net, err := NewNetwork(3, [][]int64{{2, 4}, {3, 4}})
	require.NoError(t, err)

	good := &MaxFlowResult{
		MaxFlow:    4,
		FlowEdges:  []FlowEdge{{1, 2, 4}, {2, 3, 4}},
		SourceSide: []int{1},
	}
	assert.NoError(t, VerifyFlow(net, good))

	tests := []struct {
		name string
		res  *MaxFlowResult
		code apperror.ErrorCode
	}{
		{
			name: "over capacity",
			res:  &MaxFlowResult{MaxFlow: 5, FlowEdges: []FlowEdge{{1, 2, 5}, {2, 3, 5}}, SourceSide: []int{1}},
			code: apperror.CodeFlowViolation,
		},
		{
			name: "not conserved",
			res:  &MaxFlowResult{MaxFlow: 4, FlowEdges: []FlowEdge{{1, 2, 4}, {2, 3, 3}}, SourceSide: []int{1}},
			code: apperror.CodeConservationViolation,
		},
		{
			name: "wrong total",
			res:  &MaxFlowResult{MaxFlow: 3, FlowEdges: []FlowEdge{{1, 2, 4}, {2, 3, 4}}, SourceSide: []int{1}},
			code: apperror.CodeFlowViolation,
		},
		{
			name: "sink on source side",
			res:  &MaxFlowResult{MaxFlow: 4, FlowEdges: []FlowEdge{{1, 2, 4}, {2, 3, 4}}, SourceSide: []int{1, 3}},
			code: apperror.CodeCutMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyFlow(net, tt.res)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.Code(err))
			assert.True(t, apperror.IsCritical(err))
		})
	}
}

func BenchmarkComputeMaxFlow(b *testing.B) {
	rng := rand.New(rand.NewSource(5))
	adj := randomNetwork(rng, 150, 0.1, 1000)

	for _, s := range strategies {
		b.Run(string(s), func(b *testing.B) {
			opts := DefaultSolverOptions().WithStrategy(s)
			for i := 0; i < b.N; i++ {
				if _, err := ComputeMaxFlowWithOptions(context.Background(), 150, adj, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
