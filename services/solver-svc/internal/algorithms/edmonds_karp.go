package algorithms

import (
	"context"

	"algolab/services/solver-svc/internal/graph"
)

// =============================================================================
// Edmonds-Karp Algorithm
// =============================================================================
//
// Edmonds-Karp is Ford-Fulkerson with breadth-first path discovery. Each
// augmenting path is a shortest one in edge count, which bounds the number of
// augmentations by O(V·E) independently of the capacities.
//
// Time Complexity: O(V × E²)
// Space Complexity: O(V²) for the dense matrices
//
// It reaches the same max-flow value and the same minimum cut capacity as the
// DFS strategy; only the per-edge flow decomposition may differ.
// =============================================================================

// EdmondsKarp runs the BFS strategy on net.
func EdmondsKarp(ctx context.Context, net *Network, options *SolverOptions) (*MaxFlowResult, error) {
	opts := options.normalize()
	opts.Strategy = StrategyBFS
	return augmentingPaths(ctx, net, opts, (*graph.Search).BFS)
}
