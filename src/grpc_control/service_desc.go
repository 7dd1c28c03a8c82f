package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "dashboard.DashboardControl"

// DashboardControlServer is the control plane of the dashboard. Messages are
// protobuf well-known types, so clients need no generated code.
type DashboardControlServer interface {
	RenderDashboard(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListSources(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	AddSource(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveSource(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Health(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// -----------------------------------------------------------------------------

func RegisterDashboardControlServer(s grpc.ServiceRegistrar, srv DashboardControlServer) {
	s.RegisterService(&DashboardControl_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------

// unaryHandler adapts a typed method to grpc.MethodHandler.
func unaryHandler[Req any, Resp any](method string, call func(DashboardControlServer, context.Context, *Req) (Resp, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DashboardControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(DashboardControlServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// -----------------------------------------------------------------------------

var DashboardControl_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RenderDashboard", Handler: unaryHandler("RenderDashboard", DashboardControlServer.RenderDashboard)},
		{MethodName: "ListSources", Handler: unaryHandler("ListSources", DashboardControlServer.ListSources)},
		{MethodName: "AddSource", Handler: unaryHandler("AddSource", DashboardControlServer.AddSource)},
		{MethodName: "RemoveSource", Handler: unaryHandler("RemoveSource", DashboardControlServer.RemoveSource)},
		{MethodName: "Health", Handler: unaryHandler("Health", DashboardControlServer.Health)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dashboard_control.proto",
}
