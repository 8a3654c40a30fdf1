package cache

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	solverv1 "algolab/api/solver/v1"
)

func TestPointsHash(t *testing.T) {
	square := []solverv1.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	h := PointsHash(square)
	assert.Len(t, h, 32)
	assert.Equal(t, h, PointsHash(square), "deterministic")

	rotated := []solverv1.Point{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}}
	assert.NotEqual(t, h, PointsHash(rotated), "vertex order matters")

	negZero := []solverv1.Point{{X: math.Copysign(0, -1), Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	assert.Equal(t, h, PointsHash(negZero))

	assert.NotEqual(t, PointsHash(nil), PointsHash([]solverv1.Point{{}}))
}

func TestNetworkHash_Normalization(t *testing.T) {
	base := NetworkHash(3, [][]int64{{2, 5, 3, 4}, {3, 7}})

	tests := []struct {
		name      string
		nodeCount int
		adjacency [][]int64
		same      bool
	}{
		{"edge order", 3, [][]int64{{3, 4, 2, 5}, {3, 7}}, true},
		{"sink list present", 3, [][]int64{{2, 5, 3, 4}, {3, 7}, {}}, true},
		{"duplicate keeps last", 3, [][]int64{{2, 1, 2, 5, 3, 4}, {3, 7}}, true},
		{"self loop ignored", 3, [][]int64{{1, 9, 2, 5, 3, 4}, {3, 7}}, true},
		{"zero capacity ignored", 3, [][]int64{{2, 5, 3, 4}, {3, 7, 1, 0}}, true},
		{"different capacity", 3, [][]int64{{2, 5, 3, 4}, {3, 8}}, false},
		{"different node count", 4, [][]int64{{2, 5, 3, 4}, {3, 7}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NetworkHash(tt.nodeCount, tt.adjacency)
			if tt.same {
				assert.Equal(t, base, got)
			} else {
				assert.NotEqual(t, base, got)
			}
		})
	}
}

func TestBuildSolveKey(t *testing.T) {
	assert.Equal(t, "flow:dfs:abc", BuildSolveKey(PrefixMaxFlow, "dfs", "abc"))
}

func TestMaxFlowKey(t *testing.T) {
	req := &solverv1.MaxFlowRequest{NodeCount: 2, Adjacency: [][]int64{{2, 3}}}

	dfs := MaxFlowKey(req, "DFS")
	assert.True(t, strings.HasPrefix(dfs, "flow:dfs:"))
	assert.NotEqual(t, dfs, MaxFlowKey(req, "bfs"))

	req.ReturnPaths = true
	assert.True(t, strings.HasPrefix(MaxFlowKey(req, "dfs"), "flow:dfs+paths:"))
}
