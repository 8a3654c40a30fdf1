// Package algorithms implements the two solver engines: minimum-cost polygon
// triangulation by interval dynamic programming, and maximum flow / minimum
// cut by augmenting paths over a dense capacity matrix.
//
// # Thread Safety
//
// Every call allocates its own tables and matrices. Nothing is shared between
// invocations, so the exported functions may be called from any number of
// goroutines at once.
//
// # Determinism
//
// Both engines scan indices in ascending order and break ties towards the
// lowest index, so identical input always produces identical output.
//
// # Context Support
//
// The engines are synchronous. The context-aware variants only check for
// cancellation between DP span widths and between augmentations; with
// context.Background() they behave exactly like the plain functions.
//
// # Example Usage
//
//	res, err := algorithms.ComputeMaxFlow(6, [][]int64{
//	    {2, 5, 3, 9},
//	    {4, 6},
//	    {4, 5, 5, 8},
//	    {6, 10},
//	    {6, 2},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.MaxFlow) // 12
package algorithms

import (
	"context"
	"strings"
	"time"

	"algolab/pkg/apperror"
)

// =============================================================================
// Strategy
// =============================================================================

// Strategy selects how augmenting paths are discovered.
type Strategy string

const (
	// StrategyDFS is Ford-Fulkerson with an iterative depth-first search.
	StrategyDFS Strategy = "dfs"

	// StrategyBFS is Edmonds-Karp: breadth-first, shortest augmenting paths.
	StrategyBFS Strategy = "bfs"
)

// DefaultStrategy is used when no strategy is requested.
const DefaultStrategy = StrategyDFS

var strategyAliases = map[string]Strategy{
	"":               DefaultStrategy,
	"dfs":            StrategyDFS,
	"ford-fulkerson": StrategyDFS,
	"ford_fulkerson": StrategyDFS,
	"bfs":            StrategyBFS,
	"edmonds-karp":   StrategyBFS,
	"edmonds_karp":   StrategyBFS,
}

// ParseStrategy resolves a strategy name. The empty string selects DefaultStrategy.
func ParseStrategy(name string) (Strategy, error) {
	s, ok := strategyAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", apperror.Newf(apperror.CodeInvalidAlgorithm,
			"unknown strategy %q (want dfs or bfs)", name).
			WithField("strategy")
	}
	return s, nil
}

// =============================================================================
// Solver Options
// =============================================================================

// SolverOptions configures the max-flow engine.
//
// Zero values are safe to use. Options can be chained:
//
//	opts := DefaultSolverOptions().
//	    WithStrategy(StrategyBFS).
//	    WithReturnPaths(true)
type SolverOptions struct {
	// Strategy selects path discovery. Default: dfs.
	Strategy Strategy

	// CheckInterval is the number of augmentations between context checks.
	// Default: 64
	CheckInterval int

	// ReturnPaths records every augmenting path in the result.
	ReturnPaths bool

	// Timeout bounds the solve. Zero relies on the caller's context.
	Timeout time.Duration
}

// DefaultSolverOptions returns options with the default strategy.
func DefaultSolverOptions() *SolverOptions {
	return &SolverOptions{
		Strategy:      DefaultStrategy,
		CheckInterval: 64,
	}
}

// WithStrategy sets the strategy and returns the options for chaining.
func (o *SolverOptions) WithStrategy(s Strategy) *SolverOptions {
	o.Strategy = s
	return o
}

// WithCheckInterval sets the context check interval and returns the options for chaining.
func (o *SolverOptions) WithCheckInterval(n int) *SolverOptions {
	o.CheckInterval = n
	return o
}

// WithReturnPaths enables path collection and returns the options for chaining.
func (o *SolverOptions) WithReturnPaths(returnPaths bool) *SolverOptions {
	o.ReturnPaths = returnPaths
	return o
}

// WithTimeout sets the timeout and returns the options for chaining.
func (o *SolverOptions) WithTimeout(timeout time.Duration) *SolverOptions {
	o.Timeout = timeout
	return o
}

func (o *SolverOptions) normalize() *SolverOptions {
	out := DefaultSolverOptions()
	if o == nil {
		return out
	}
	*out = *o
	if out.Strategy == "" {
		out.Strategy = DefaultStrategy
	}
	if out.CheckInterval <= 0 {
		out.CheckInterval = 64
	}
	return out
}

// =============================================================================
// Max-flow result
// =============================================================================

// FlowEdge is an edge carrying positive flow. Nodes are 1-based.
type FlowEdge struct {
	From int   `json:"from"`
	To   int   `json:"to"`
	Flow int64 `json:"flow"`
}

// CutEdge is an original edge crossing from the source side to the sink side.
type CutEdge struct {
	From     int   `json:"from"`
	To       int   `json:"to"`
	Capacity int64 `json:"capacity"`
}

// AugmentingPath is one augmentation, recorded when ReturnPaths is set.
type AugmentingPath struct {
	Nodes []int `json:"nodes"`
	Flow  int64 `json:"flow"`
}

// MaxFlowResult contains the complete result of a max-flow computation.
type MaxFlowResult struct {
	// MaxFlow is the total flow value.
	MaxFlow int64

	// FlowEdges lists every edge with positive flow in row-major order.
	FlowEdges []FlowEdge

	// SourceSide is the ascending list of nodes reachable from the source
	// in the final residual graph.
	SourceSide []int

	// CutEdges are the saturated edges leaving SourceSide.
	CutEdges []CutEdge

	// Augmentations is the number of augmenting paths applied.
	Augmentations int

	// Paths is filled only when ReturnPaths is set.
	Paths []AugmentingPath

	// Strategy actually used.
	Strategy Strategy
}

// =============================================================================
// Entry points
// =============================================================================

// ComputeMaxFlow validates the adjacency lists and computes max flow from
// node 1 to node nodeCount with the default strategy.
func ComputeMaxFlow(nodeCount int, adjacency [][]int64) (*MaxFlowResult, error) {
	return ComputeMaxFlowWithOptions(context.Background(), nodeCount, adjacency, nil)
}

// ComputeMaxFlowWithOptions is ComputeMaxFlow with a context and options.
func ComputeMaxFlowWithOptions(ctx context.Context, nodeCount int, adjacency [][]int64, options *SolverOptions) (*MaxFlowResult, error) {
	net, err := NewNetwork(nodeCount, adjacency)
	if err != nil {
		return nil, err
	}
	return Solve(ctx, net, options)
}

// Solve dispatches to the configured strategy.
func Solve(ctx context.Context, net *Network, options *SolverOptions) (*MaxFlowResult, error) {
	opts := options.normalize()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	switch opts.Strategy {
	case StrategyDFS:
		return FordFulkerson(ctx, net, opts)
	case StrategyBFS:
		return EdmondsKarp(ctx, net, opts)
	default:
		return nil, apperror.Newf(apperror.CodeInvalidAlgorithm, "unknown strategy %q", opts.Strategy).
			WithField("strategy")
	}
}

// =============================================================================
// Catalog
// =============================================================================

// AlgorithmInfo describes one available algorithm.
type AlgorithmInfo struct {
	Name            string `json:"name"`
	Problem         string `json:"problem"`
	Description     string `json:"description"`
	TimeComplexity  string `json:"time_complexity"`
	SpaceComplexity string `json:"space_complexity"`
	Default         bool   `json:"default"`
}

// Problem names used in metrics, cache keys and the catalog.
const (
	ProblemTriangulation = "triangulation"
	ProblemMaxFlow       = "maxflow"
)

// Catalog lists the available algorithms.
func Catalog() []AlgorithmInfo {
	return []AlgorithmInfo{
		{
			Name:            "interval-dp",
			Problem:         ProblemTriangulation,
			Description:     "Minimum sum of squared side lengths over all triangulations of an ordered vertex chain",
			TimeComplexity:  "O(n³)",
			SpaceComplexity: "O(n²)",
			Default:         true,
		},
		{
			Name:            string(StrategyDFS),
			Problem:         ProblemMaxFlow,
			Description:     "Ford-Fulkerson with iterative depth-first augmenting path search",
			TimeComplexity:  "O(E·F)",
			SpaceComplexity: "O(V²)",
			Default:         DefaultStrategy == StrategyDFS,
		},
		{
			Name:            string(StrategyBFS),
			Problem:         ProblemMaxFlow,
			Description:     "Edmonds-Karp: shortest augmenting paths by breadth-first search",
			TimeComplexity:  "O(V·E²)",
			SpaceComplexity: "O(V²)",
			Default:         DefaultStrategy == StrategyBFS,
		},
	}
}
