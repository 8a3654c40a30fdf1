package solverv1

import (
	"fmt"
	"math"

	"algolab/pkg/apperror"
)

// Validate performs the structural checks that do not need the engines.
func (r *TriangulateRequest) Validate() error {
	if r == nil {
		return apperror.New(apperror.CodeInvalidInput, "request is nil")
	}
	if len(r.Points) < 3 {
		return apperror.Newf(apperror.CodeTooFewVertices,
			"polygon needs at least 3 vertices, got %d", len(r.Points)).
			WithField("points")
	}
	for i, p := range r.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return apperror.Newf(apperror.CodeNonFiniteCoordinate,
				"vertex %d has a non-finite coordinate", i).
				WithField(fmt.Sprintf("points[%d]", i))
		}
	}
	return nil
}

// Validate performs the structural checks that do not need the engines.
func (r *MaxFlowRequest) Validate() error {
	if r == nil {
		return apperror.New(apperror.CodeInvalidInput, "request is nil")
	}
	if r.NodeCount < 2 {
		return apperror.Newf(apperror.CodeInvalidNodeCount,
			"network needs at least 2 nodes, got %d", r.NodeCount).
			WithField("node_count")
	}
	if len(r.Adjacency) > r.NodeCount {
		return apperror.Newf(apperror.CodeInvalidNodeCount,
			"got %d adjacency lists for %d nodes", len(r.Adjacency), r.NodeCount).
			WithField("adjacency")
	}
	for i, row := range r.Adjacency {
		if len(row)%2 != 0 {
			return apperror.Newf(apperror.CodeOddEdgeList,
				"node %d: edge data must have pairs of numbers (destination capacity)", i+1).
				WithField(fmt.Sprintf("adjacency[%d]", i))
		}
	}
	return nil
}

// Validate accepts every request.
func (r *GetAlgorithmsRequest) Validate() error {
	return nil
}
