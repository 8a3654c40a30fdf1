package solversvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	solverv1 "algolab/api/solver/v1"
	"algolab/pkg/apperror"
	"algolab/pkg/config"
	"algolab/pkg/logger"
)

func init() {
	logger.Init("error")
}

func TestNewLocalServer(t *testing.T) {
	svc := NewLocalServer()

	resp, err := svc.Triangulate(context.Background(), &solverv1.TriangulateRequest{
		Points: []solverv1.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), resp.MinCost)
}

// Локальный сервер (CLI) отклоняет сеть больше лимита до выделения матрицы
func TestNewLocalServer_DefaultLimits(t *testing.T) {
	svc := NewLocalServer()

	_, err := svc.ComputeMaxFlow(context.Background(), &solverv1.MaxFlowRequest{NodeCount: 1 << 20})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInputTooLarge, apperror.Code(err))

	resp, err := svc.GetAlgorithms(context.Background(), &solverv1.GetAlgorithmsRequest{})
	require.NoError(t, err)
	require.NotNil(t, resp.Limits)
	assert.Positive(t, resp.Limits.MaxNodes)
	assert.Positive(t, resp.Limits.MaxVertices)
}

func TestNewServer_UnknownCacheDriver(t *testing.T) {
	cfg := &config.Config{
		App:   config.AppConfig{Name: "solver-svc", Version: "test"},
		Cache: config.CacheConfig{Enabled: true, Driver: "memcached"},
	}

	assert.Nil(t, newSolverCache(cfg))

	svc := NewServer(cfg)
	resp, err := svc.GetAlgorithms(context.Background(), &solverv1.GetAlgorithmsRequest{})
	require.NoError(t, err)
	assert.Equal(t, "test", resp.Version)
}

func TestNewServer_MemoryCache(t *testing.T) {
	cfg := &config.Config{
		Cache: config.CacheConfig{Enabled: true, Driver: "memory"},
	}
	sc := newSolverCache(cfg)
	require.NotNil(t, sc)
	defer sc.Close()
}

func TestRateLimitExempt(t *testing.T) {
	assert.Contains(t, RateLimitExempt, solverv1.GetAlgorithmsFullMethodName)
	assert.NotContains(t, RateLimitExempt, solverv1.TriangulateFullMethodName)
}
