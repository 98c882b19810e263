package analysis

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ulmotion.v1.AnalysisService"

// CallerMetadataKey is the gRPC metadata key carrying the caller identity.
const CallerMetadataKey = "x-ulmotion-caller"

// Full method names.
const (
	ExtractSegmentsMethod  = "/" + ServiceName + "/ExtractSegments"
	ClassifyUseMethod      = "/" + ServiceName + "/ClassifyUse"
	ClassifyCountsMethod   = "/" + ServiceName + "/ClassifyCounts"
	ClassifyActivityMethod = "/" + ServiceName + "/ClassifyActivity"
)

// AnalysisServer is the server API of the analysis service.
type AnalysisServer interface {
	ExtractSegments(ctx context.Context, req *SegmentsRequest) (*SegmentsResponse, error)
	ClassifyUse(ctx context.Context, req *UseRequest) (*UseResponse, error)
	ClassifyCounts(ctx context.Context, req *CountsRequest) (*DecisionResponse, error)
	ClassifyActivity(ctx context.Context, req *ActivityRequest) (*DecisionResponse, error)
}

// ServiceDesc describes the analysis service for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{ //nolint:gochecknoglobals // Registered by value with grpc.Server.
	ServiceName: ServiceName,
	HandlerType: (*AnalysisServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ExtractSegments", Handler: unaryHandler(ExtractSegmentsMethod, AnalysisServer.ExtractSegments)},
		{MethodName: "ClassifyUse", Handler: unaryHandler(ClassifyUseMethod, AnalysisServer.ClassifyUse)},
		{MethodName: "ClassifyCounts", Handler: unaryHandler(ClassifyCountsMethod, AnalysisServer.ClassifyCounts)},
		{MethodName: "ClassifyActivity", Handler: unaryHandler(ClassifyActivityMethod, AnalysisServer.ClassifyActivity)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ulmotion/v1/analysis",
}

// RegisterAnalysisServer registers srv with the gRPC service registrar.
func RegisterAnalysisServer(s grpc.ServiceRegistrar, srv AnalysisServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unaryHandler adapts a typed server method to a grpc.MethodDesc handler.
func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(AnalysisServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(AnalysisServer), ctx, req)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AnalysisServer), ctx, req.(*Req))
		}

		return interceptor(ctx, req, info, handler)
	}
}

// AnalysisClient is the client stub of the analysis service.
type AnalysisClient struct {
	cc grpc.ClientConnInterface
}

// NewAnalysisClient creates a client stub over the connection.
func NewAnalysisClient(cc grpc.ClientConnInterface) *AnalysisClient {
	return &AnalysisClient{cc: cc}
}

// ExtractSegments calls the ExtractSegments method.
func (c *AnalysisClient) ExtractSegments(
	ctx context.Context,
	in *SegmentsRequest,
	opts ...grpc.CallOption,
) (*SegmentsResponse, error) {
	return invoke[SegmentsResponse](ctx, c.cc, ExtractSegmentsMethod, in, opts)
}

// ClassifyUse calls the ClassifyUse method.
func (c *AnalysisClient) ClassifyUse(ctx context.Context, in *UseRequest, opts ...grpc.CallOption) (*UseResponse, error) {
	return invoke[UseResponse](ctx, c.cc, ClassifyUseMethod, in, opts)
}

// ClassifyCounts calls the ClassifyCounts method.
func (c *AnalysisClient) ClassifyCounts(
	ctx context.Context,
	in *CountsRequest,
	opts ...grpc.CallOption,
) (*DecisionResponse, error) {
	return invoke[DecisionResponse](ctx, c.cc, ClassifyCountsMethod, in, opts)
}

// ClassifyActivity calls the ClassifyActivity method.
func (c *AnalysisClient) ClassifyActivity(
	ctx context.Context,
	in *ActivityRequest,
	opts ...grpc.CallOption,
) (*DecisionResponse, error) {
	return invoke[DecisionResponse](ctx, c.cc, ClassifyActivityMethod, in, opts)
}

// invoke performs a unary call with the msgpack codec.
func invoke[Resp any](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in any,
	opts []grpc.CallOption,
) (*Resp, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)

	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
