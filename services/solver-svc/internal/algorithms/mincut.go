package algorithms

import "algolab/services/solver-svc/internal/graph"

// MinCut extracts the source side of a minimum cut from the final residual
// matrix: every node still reachable from the source over positive residual
// capacity. It also returns the original edges crossing the cut.
//
// Both lists are 1-based and ordered by (from, to).
func MinCut(net *Network, residual *graph.Matrix) ([]int, []CutEdge) {
	reachable := graph.Reachable(residual, net.source)

	sourceSide := make([]int, 0)
	for v, ok := range reachable {
		if ok {
			sourceSide = append(sourceSide, v+1)
		}
	}

	cut := make([]CutEdge, 0)
	n := net.NodeCount()
	for u := 0; u < n; u++ {
		if !reachable[u] {
			continue
		}
		for v, c := range net.capacity.Row(u) {
			if c > 0 && !reachable[v] {
				cut = append(cut, CutEdge{From: u + 1, To: v + 1, Capacity: c})
			}
		}
	}

	return sourceSide, cut
}

// CutCapacity sums the capacities of the given cut edges.
func CutCapacity(edges []CutEdge) int64 {
	var total int64
	for _, e := range edges {
		total += e.Capacity
	}
	return total
}
