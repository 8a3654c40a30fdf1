package solverv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"algolab/pkg/codec"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "algolab.solver.v1.SolverService"

// Full method names.
const (
	TriangulateFullMethodName    = "/" + ServiceName + "/Triangulate"
	ComputeMaxFlowFullMethodName = "/" + ServiceName + "/ComputeMaxFlow"
	GetAlgorithmsFullMethodName  = "/" + ServiceName + "/GetAlgorithms"
)

// SolverServiceServer is the server API for SolverService.
type SolverServiceServer interface {
	Triangulate(context.Context, *TriangulateRequest) (*TriangulateResponse, error)
	ComputeMaxFlow(context.Context, *MaxFlowRequest) (*MaxFlowResponse, error)
	GetAlgorithms(context.Context, *GetAlgorithmsRequest) (*GetAlgorithmsResponse, error)
	mustEmbedUnimplementedSolverServiceServer()
}

// UnimplementedSolverServiceServer must be embedded by implementations.
type UnimplementedSolverServiceServer struct{}

func (UnimplementedSolverServiceServer) Triangulate(context.Context, *TriangulateRequest) (*TriangulateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Triangulate not implemented")
}

func (UnimplementedSolverServiceServer) ComputeMaxFlow(context.Context, *MaxFlowRequest) (*MaxFlowResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ComputeMaxFlow not implemented")
}

func (UnimplementedSolverServiceServer) GetAlgorithms(context.Context, *GetAlgorithmsRequest) (*GetAlgorithmsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAlgorithms not implemented")
}

func (UnimplementedSolverServiceServer) mustEmbedUnimplementedSolverServiceServer() {}

// RegisterSolverServiceServer registers srv on s.
func RegisterSolverServiceServer(s grpc.ServiceRegistrar, srv SolverServiceServer) {
	s.RegisterService(&SolverServiceDesc, srv)
}

func triangulateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TriangulateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SolverServiceServer).Triangulate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TriangulateFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SolverServiceServer).Triangulate(ctx, req.(*TriangulateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func computeMaxFlowHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(MaxFlowRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SolverServiceServer).ComputeMaxFlow(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ComputeMaxFlowFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SolverServiceServer).ComputeMaxFlow(ctx, req.(*MaxFlowRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getAlgorithmsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetAlgorithmsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SolverServiceServer).GetAlgorithms(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetAlgorithmsFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SolverServiceServer).GetAlgorithms(ctx, req.(*GetAlgorithmsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// SolverServiceDesc is the grpc.ServiceDesc for SolverService.
var SolverServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SolverServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Triangulate", Handler: triangulateHandler},
		{MethodName: "ComputeMaxFlow", Handler: computeMaxFlowHandler},
		{MethodName: "GetAlgorithms", Handler: getAlgorithmsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "algolab/solver/v1/solver.proto",
}

// SolverServiceClient is the client API for SolverService.
type SolverServiceClient interface {
	Triangulate(ctx context.Context, in *TriangulateRequest, opts ...grpc.CallOption) (*TriangulateResponse, error)
	ComputeMaxFlow(ctx context.Context, in *MaxFlowRequest, opts ...grpc.CallOption) (*MaxFlowResponse, error)
	GetAlgorithms(ctx context.Context, in *GetAlgorithmsRequest, opts ...grpc.CallOption) (*GetAlgorithmsResponse, error)
}

type solverServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSolverServiceClient returns a client that always talks JSON.
func NewSolverServiceClient(cc grpc.ClientConnInterface) SolverServiceClient {
	return &solverServiceClient{cc}
}

func (c *solverServiceClient) callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
}

func (c *solverServiceClient) Triangulate(ctx context.Context, in *TriangulateRequest, opts ...grpc.CallOption) (*TriangulateResponse, error) {
	out := new(TriangulateResponse)
	if err := c.cc.Invoke(ctx, TriangulateFullMethodName, in, out, c.callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *solverServiceClient) ComputeMaxFlow(ctx context.Context, in *MaxFlowRequest, opts ...grpc.CallOption) (*MaxFlowResponse, error) {
	out := new(MaxFlowResponse)
	if err := c.cc.Invoke(ctx, ComputeMaxFlowFullMethodName, in, out, c.callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *solverServiceClient) GetAlgorithms(ctx context.Context, in *GetAlgorithmsRequest, opts ...grpc.CallOption) (*GetAlgorithmsResponse, error) {
	out := new(GetAlgorithmsResponse)
	if err := c.cc.Invoke(ctx, GetAlgorithmsFullMethodName, in, out, c.callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}
