package solverv1

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"algolab/pkg/apperror"
)

func TestTriangulateRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  *TriangulateRequest
		code apperror.ErrorCode
	}{
		{"nil", nil, apperror.CodeInvalidInput},
		{"two points", &TriangulateRequest{Points: []Point{{0, 0}, {1, 1}}}, apperror.CodeTooFewVertices},
		{"nan", &TriangulateRequest{Points: []Point{{0, 0}, {1, 0}, {math.NaN(), 1}}}, apperror.CodeNonFiniteCoordinate},
		{"inf", &TriangulateRequest{Points: []Point{{math.Inf(-1), 0}, {1, 0}, {0, 1}}}, apperror.CodeNonFiniteCoordinate},
		{"ok", &TriangulateRequest{Points: []Point{{0, 0}, {1, 0}, {0, 1}}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.code, apperror.Code(err))
			assert.True(t, apperror.IsInvalidInput(err))
		})
	}
}

func TestMaxFlowRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  *MaxFlowRequest
		code apperror.ErrorCode
	}{
		{"nil", nil, apperror.CodeInvalidInput},
		{"one node", &MaxFlowRequest{NodeCount: 1}, apperror.CodeInvalidNodeCount},
		{"too many lists", &MaxFlowRequest{NodeCount: 2, Adjacency: [][]int64{{2, 1}, {}, {}}}, apperror.CodeInvalidNodeCount},
		{"odd list", &MaxFlowRequest{NodeCount: 2, Adjacency: [][]int64{{2}}}, apperror.CodeOddEdgeList},
		{"ok short form", &MaxFlowRequest{NodeCount: 2, Adjacency: [][]int64{{2, 7}}}, ""},
		{"ok full form", &MaxFlowRequest{NodeCount: 2, Adjacency: [][]int64{{2, 7}, {}}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			if got := apperror.Code(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestGetAlgorithmsRequest_Validate(t *testing.T) {
	assert.NoError(t, (&GetAlgorithmsRequest{}).Validate())
}
