package algorithms

import (
	"fmt"

	"algolab/pkg/apperror"
	"algolab/services/solver-svc/internal/graph"
)

// MinNodes is the smallest network with distinct source and sink.
const MinNodes = 2

// MaxCapacity bounds a single edge capacity so that flow sums and residual
// updates stay inside int64 for any accepted node count.
const MaxCapacity int64 = 1 << 40

// Network is a validated capacity graph. Node 1 is the source and node n the sink.
//
// Indices are 1-based in every exported method and 0-based inside.
type Network struct {
	capacity *graph.Matrix
	source   int
	sink     int
}

// NewNetwork builds the capacity matrix from per-node adjacency lists.
//
// adjacency[i] describes node i+1 as a flat list of alternating
// (destination, capacity) values, destinations being 1-based. Either n lists
// or n-1 lists may be given; in the latter case the sink gets no outgoing edges.
// A repeated (u, v) pair keeps the last capacity.
//
// Every list is checked before the matrix is built. The first offending node
// is reported as an invalid-input error.
func NewNetwork(nodeCount int, adjacency [][]int64) (*Network, error) {
	if err := ValidateAdjacency(nodeCount, adjacency); err != nil {
		return nil, err
	}

	capacity := graph.NewMatrix(nodeCount)
	for u, list := range adjacency {
		for p := 0; p < len(list); p += 2 {
			capacity.Set(u, int(list[p])-1, list[p+1])
		}
	}

	return &Network{
		capacity: capacity,
		source:   0,
		sink:     nodeCount - 1,
	}, nil
}

// ValidateAdjacency checks node count and edge lists without building anything.
func ValidateAdjacency(nodeCount int, adjacency [][]int64) error {
	if nodeCount < MinNodes {
		return apperror.Newf(apperror.CodeInvalidNodeCount,
			"at least %d nodes are required, got %d", MinNodes, nodeCount).
			WithField("node_count")
	}

	if len(adjacency) != nodeCount && len(adjacency) != nodeCount-1 {
		return apperror.Newf(apperror.CodeInvalidNodeCount,
			"expected %d or %d edge lists for %d nodes, got %d",
			nodeCount-1, nodeCount, nodeCount, len(adjacency)).
			WithField("adjacency")
	}

	for i, list := range adjacency {
		node := i + 1
		field := fmt.Sprintf("adjacency[%d]", i)

		if len(list)%2 != 0 {
			return apperror.Newf(apperror.CodeOddEdgeList,
				"node %d: edge data must have pairs of numbers (destination capacity)", node).
				WithField(field).
				WithDetails("node", node)
		}

		for p := 0; p < len(list); p += 2 {
			dest, capacity := list[p], list[p+1]

			if dest < 1 || dest > int64(nodeCount) {
				return apperror.Newf(apperror.CodeInvalidDestination,
					"node %d: invalid destination node %d", node, dest).
					WithField(field).
					WithDetails("node", node).
					WithDetails("destination", dest)
			}
			if capacity < 0 {
				return apperror.Newf(apperror.CodeNegativeCapacity,
					"node %d: negative capacity %d on edge to node %d", node, capacity, dest).
					WithField(field).
					WithDetails("node", node)
			}
			if capacity > MaxCapacity {
				return apperror.Newf(apperror.CodeInputTooLarge,
					"node %d: capacity %d on edge to node %d exceeds %d", node, capacity, dest, MaxCapacity).
					WithField(field).
					WithDetails("node", node)
			}
		}
	}

	return nil
}

// NodeCount returns n.
func (n *Network) NodeCount() int {
	return n.capacity.Size()
}

// Source returns the 1-based source node.
func (n *Network) Source() int {
	return n.source + 1
}

// Sink returns the 1-based sink node.
func (n *Network) Sink() int {
	return n.sink + 1
}

// Capacity returns the capacity of edge u→v (1-based).
func (n *Network) Capacity(u, v int) int64 {
	return n.capacity.Get(u-1, v-1)
}

// EdgeCount returns the number of edges with positive capacity.
func (n *Network) EdgeCount() int {
	count := 0
	size := n.capacity.Size()
	for u := 0; u < size; u++ {
		for _, c := range n.capacity.Row(u) {
			if c > 0 {
				count++
			}
		}
	}
	return count
}

// SourceCapacity returns the total capacity leaving the source.
func (n *Network) SourceCapacity() int64 {
	return n.capacity.RowSum(n.source)
}

// SinkCapacity returns the total capacity entering the sink.
func (n *Network) SinkCapacity() int64 {
	return n.capacity.ColSum(n.sink)
}
