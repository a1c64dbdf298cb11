package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "calcscript.v1.Runner"

// RunMethod is the full method name of Runner.Run
const RunMethod = "/" + ServiceName + "/Run"

// RunnerServer is the server API for the Runner service. Programs travel as
// well-known wrapper types so no generated code is needed.
type RunnerServer interface {
	Run(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

// RegisterRunnerServer registers srv on s
func RegisterRunnerServer(s grpc.ServiceRegistrar, srv RunnerServer) {
	s.RegisterService(&RunnerServiceDesc, srv)
}

func runHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RunnerServer).Run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RunMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RunnerServer).Run(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// RunnerServiceDesc describes the Runner service
var RunnerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RunnerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Run",
			Handler:    runHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "calcscript/v1/runner.proto",
}
