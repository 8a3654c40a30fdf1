package handlers

import (
	"context"
	"time"

	"connectrpc.com/connect"

	solverv1 "algolab/api/solver/v1"
	"algolab/api/solver/v1/solverv1connect"
	"algolab/pkg/apperror"
	"algolab/pkg/logger"
	"algolab/services/gateway-svc/internal/clients"
	gwmetrics "algolab/services/gateway-svc/internal/metrics"
)

var _ solverv1connect.SolverServiceHandler = (*SolverHandler)(nil)

// SolverHandler проксирует Connect вызовы в solver-svc
type SolverHandler struct {
	clients *clients.Manager
}

// NewSolverHandler создаёт handler
func NewSolverHandler(clients *clients.Manager) *SolverHandler {
	return &SolverHandler{clients: clients}
}

func (h *SolverHandler) Triangulate(
	ctx context.Context,
	req *connect.Request[solverv1.TriangulateRequest],
) (*connect.Response[solverv1.TriangulateResponse], error) {
	start := time.Now()
	resp, err := h.clients.Solver().Triangulate(ctx, req.Msg)
	recordBackend("Triangulate", start, err)
	if err != nil {
		logger.Log.Warn("Triangulate failed",
			"request_id", logger.RequestIDFromContext(ctx),
			"vertices", len(req.Msg.Points),
			"error", err,
		)
		return nil, apperror.ToConnect(err)
	}
	return connect.NewResponse(resp), nil
}

func (h *SolverHandler) ComputeMaxFlow(
	ctx context.Context,
	req *connect.Request[solverv1.MaxFlowRequest],
) (*connect.Response[solverv1.MaxFlowResponse], error) {
	start := time.Now()
	resp, err := h.clients.Solver().ComputeMaxFlow(ctx, req.Msg)
	recordBackend("ComputeMaxFlow", start, err)
	if err != nil {
		logger.Log.Warn("ComputeMaxFlow failed",
			"request_id", logger.RequestIDFromContext(ctx),
			"nodes", req.Msg.NodeCount,
			"error", err,
		)
		return nil, apperror.ToConnect(err)
	}
	return connect.NewResponse(resp), nil
}

func (h *SolverHandler) GetAlgorithms(
	ctx context.Context,
	_ *connect.Request[solverv1.GetAlgorithmsRequest],
) (*connect.Response[solverv1.GetAlgorithmsResponse], error) {
	start := time.Now()
	resp, err := h.clients.Solver().GetAlgorithms(ctx)
	recordBackend("GetAlgorithms", start, err)
	if err != nil {
		return nil, apperror.ToConnect(err)
	}
	return connect.NewResponse(resp), nil
}

func recordBackend(method string, start time.Time, err error) {
	status := "OK"
	if err != nil {
		status = string(apperror.Code(err))
	}
	gwmetrics.Get().RecordBackendRequest(method, status, time.Since(start))
}
