package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the sales configuration service
const ServiceName = "estateflow.v1.SalesConfigService"

// Full method names, as seen by interceptors and clients
const (
	MethodGetPriceView       = "/" + ServiceName + "/GetPriceView"
	MethodSelectDiscounts    = "/" + ServiceName + "/SelectDiscounts"
	MethodListDiscounts      = "/" + ServiceName + "/ListDiscounts"
	MethodGetSchedule        = "/" + ServiceName + "/GetSchedule"
	MethodRegenerateSchedule = "/" + ServiceName + "/RegenerateSchedule"
)

// SalesConfigServiceServer is the server API of the sales configuration service.
// Requests and responses are google.protobuf.Struct messages.
type SalesConfigServiceServer interface {
	GetPriceView(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SelectDiscounts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListDiscounts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSchedule(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RegenerateSchedule(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterSalesConfigServiceServer registers the service implementation on a gRPC server
func RegisterSalesConfigServiceServer(s grpc.ServiceRegistrar, srv SalesConfigServiceServer) {
	s.RegisterService(&SalesConfigServiceDesc, srv)
}

// unaryHandler adapts one SalesConfigServiceServer method to a grpc.MethodHandler
func unaryHandler(
	fullMethod string,
	call func(SalesConfigServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SalesConfigServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(SalesConfigServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SalesConfigServiceDesc is the grpc.ServiceDesc of the sales configuration service
var SalesConfigServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SalesConfigServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetPriceView",
			Handler:    unaryHandler(MethodGetPriceView, SalesConfigServiceServer.GetPriceView),
		},
		{
			MethodName: "SelectDiscounts",
			Handler:    unaryHandler(MethodSelectDiscounts, SalesConfigServiceServer.SelectDiscounts),
		},
		{
			MethodName: "ListDiscounts",
			Handler:    unaryHandler(MethodListDiscounts, SalesConfigServiceServer.ListDiscounts),
		},
		{
			MethodName: "GetSchedule",
			Handler:    unaryHandler(MethodGetSchedule, SalesConfigServiceServer.GetSchedule),
		},
		{
			MethodName: "RegenerateSchedule",
			Handler:    unaryHandler(MethodRegenerateSchedule, SalesConfigServiceServer.RegenerateSchedule),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "estateflow/v1/sales_config.proto",
}
