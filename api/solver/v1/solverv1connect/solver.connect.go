// Package solverv1connect exposes SolverService over the Connect protocol.
//
// Handlers and clients are pinned to the JSON codec, so any HTTP client can
// call a procedure with a plain POST of application/json.
package solverv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	solverv1 "algolab/api/solver/v1"
	"algolab/pkg/codec"
)

// Procedure paths.
const (
	TriangulateProcedure    = solverv1.TriangulateFullMethodName
	ComputeMaxFlowProcedure = solverv1.ComputeMaxFlowFullMethodName
	GetAlgorithmsProcedure  = solverv1.GetAlgorithmsFullMethodName
)

// SolverServiceHandler is implemented by the gateway.
type SolverServiceHandler interface {
	Triangulate(context.Context, *connect.Request[solverv1.TriangulateRequest]) (*connect.Response[solverv1.TriangulateResponse], error)
	ComputeMaxFlow(context.Context, *connect.Request[solverv1.MaxFlowRequest]) (*connect.Response[solverv1.MaxFlowResponse], error)
	GetAlgorithms(context.Context, *connect.Request[solverv1.GetAlgorithmsRequest]) (*connect.Response[solverv1.GetAlgorithmsResponse], error)
}

// NewSolverServiceHandler builds an HTTP handler and returns the path prefix
// to mount it on.
func NewSolverServiceHandler(svc SolverServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(codec.JSON{})}, opts...)

	triangulate := connect.NewUnaryHandler(TriangulateProcedure, svc.Triangulate, opts...)
	computeMaxFlow := connect.NewUnaryHandler(ComputeMaxFlowProcedure, svc.ComputeMaxFlow, opts...)
	getAlgorithms := connect.NewUnaryHandler(GetAlgorithmsProcedure, svc.GetAlgorithms, opts...)

	return "/" + solverv1.ServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case TriangulateProcedure:
			triangulate.ServeHTTP(w, r)
		case ComputeMaxFlowProcedure:
			computeMaxFlow.ServeHTTP(w, r)
		case GetAlgorithmsProcedure:
			getAlgorithms.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// SolverServiceClient calls SolverService over Connect.
type SolverServiceClient interface {
	Triangulate(context.Context, *connect.Request[solverv1.TriangulateRequest]) (*connect.Response[solverv1.TriangulateResponse], error)
	ComputeMaxFlow(context.Context, *connect.Request[solverv1.MaxFlowRequest]) (*connect.Response[solverv1.MaxFlowResponse], error)
	GetAlgorithms(context.Context, *connect.Request[solverv1.GetAlgorithmsRequest]) (*connect.Response[solverv1.GetAlgorithmsResponse], error)
}

type solverServiceClient struct {
	triangulate    *connect.Client[solverv1.TriangulateRequest, solverv1.TriangulateResponse]
	computeMaxFlow *connect.Client[solverv1.MaxFlowRequest, solverv1.MaxFlowResponse]
	getAlgorithms  *connect.Client[solverv1.GetAlgorithmsRequest, solverv1.GetAlgorithmsResponse]
}

// NewSolverServiceClient builds a client for the gateway at baseURL.
func NewSolverServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SolverServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(codec.JSON{})}, opts...)

	return &solverServiceClient{
		triangulate: connect.NewClient[solverv1.TriangulateRequest, solverv1.TriangulateResponse](
			httpClient, baseURL+TriangulateProcedure, opts...),
		computeMaxFlow: connect.NewClient[solverv1.MaxFlowRequest, solverv1.MaxFlowResponse](
			httpClient, baseURL+ComputeMaxFlowProcedure, opts...),
		getAlgorithms: connect.NewClient[solverv1.GetAlgorithmsRequest, solverv1.GetAlgorithmsResponse](
			httpClient, baseURL+GetAlgorithmsProcedure, opts...),
	}
}

func (c *solverServiceClient) Triangulate(ctx context.Context, req *connect.Request[solverv1.TriangulateRequest]) (*connect.Response[solverv1.TriangulateResponse], error) {
	return c.triangulate.CallUnary(ctx, req)
}

func (c *solverServiceClient) ComputeMaxFlow(ctx context.Context, req *connect.Request[solverv1.MaxFlowRequest]) (*connect.Response[solverv1.MaxFlowResponse], error) {
	return c.computeMaxFlow.CallUnary(ctx, req)
}

func (c *solverServiceClient) GetAlgorithms(ctx context.Context, req *connect.Request[solverv1.GetAlgorithmsRequest]) (*connect.Response[solverv1.GetAlgorithmsResponse], error) {
	return c.getAlgorithms.CallUnary(ctx, req)
}
