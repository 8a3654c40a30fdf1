package algorithms

import (
	"context"

	"algolab/pkg/apperror"
	"algolab/services/solver-svc/internal/graph"
)

// =============================================================================
// Ford-Fulkerson Algorithm
// =============================================================================
//
// Ford-Fulkerson computes maximum flow by repeatedly finding augmenting paths
// in the residual graph and pushing the path bottleneck along them. Paths are
// found with an iterative DFS (graph.Search.DFS); the first path that reaches
// the sink is used, not necessarily a shortest one.
//
// Time Complexity: O(E × max_flow)
// Space Complexity: O(V²) for the dense matrices
//
// Integer capacities guarantee termination: every augmentation raises the flow
// by at least 1 and the flow is bounded by the source's outgoing capacity.
//
// References:
//   - Ford, L.R. & Fulkerson, D.R. (1956). "Maximal flow through a network"
// =============================================================================

// pathFinder searches the residual graph and leaves parents in s.Parent.
type pathFinder func(s *graph.Search, residual *graph.Matrix, source, sink int) bool

// FordFulkerson runs the DFS strategy on net.
func FordFulkerson(ctx context.Context, net *Network, options *SolverOptions) (*MaxFlowResult, error) {
	opts := options.normalize()
	opts.Strategy = StrategyDFS
	return augmentingPaths(ctx, net, opts, (*graph.Search).DFS)
}

// augmentingPaths is the loop shared by every strategy: find a path, push its
// bottleneck, repeat until the sink is unreachable. The min cut and the flow
// listing are read from the final matrices.
func augmentingPaths(ctx context.Context, net *Network, opts *SolverOptions, find pathFinder) (*MaxFlowResult, error) {
	n := net.NodeCount()
	residual := net.capacity.Clone()
	flow := graph.NewMatrix(n)
	search := graph.NewSearch(n)

	result := &MaxFlowResult{Strategy: opts.Strategy}

	for {
		if result.Augmentations%opts.CheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, apperror.FromContext(err).
					WithDetails("augmentations", result.Augmentations).
					WithDetails("partial_flow", result.MaxFlow)
			}
		}

		if !find(search, residual, net.source, net.sink) {
			break
		}

		path := graph.ReconstructPath(search.Parent, net.source, net.sink)
		bottleneck := graph.Bottleneck(residual, path)
		if bottleneck <= 0 {
			return nil, apperror.NewCritical(apperror.CodeInternal, "augmenting path without residual capacity")
		}

		graph.Augment(residual, flow, path, bottleneck)

		result.MaxFlow += bottleneck
		result.Augmentations++

		if opts.ReturnPaths {
			nodes := make([]int, len(path))
			for i, v := range path {
				nodes[i] = v + 1
			}
			result.Paths = append(result.Paths, AugmentingPath{Nodes: nodes, Flow: bottleneck})
		}
	}

	result.FlowEdges = flowEdges(flow)
	result.SourceSide, result.CutEdges = MinCut(net, residual)

	return result, nil
}

// flowEdges lists every positive entry of the flow matrix in row-major order, 1-based.
func flowEdges(flow *graph.Matrix) []FlowEdge {
	n := flow.Size()
	edges := make([]FlowEdge, 0)
	for u := 0; u < n; u++ {
		for v, f := range flow.Row(u) {
			if f > 0 {
				edges = append(edges, FlowEdge{From: u + 1, To: v + 1, Flow: f})
			}
		}
	}
	return edges
}
