// ABOUTME: RoutingService gRPC plumbing: client stubs, server interface, handlers
// ABOUTME: Hand-rolled service descriptor mirroring routing.proto

package tnc

import (
	"context"

	"google.golang.org/grpc"
)

const routingServiceName = "tnc.RoutingService"

// RoutingServiceClient is the client interface for the local routing service.
type RoutingServiceClient interface {
	RegisterPushRoute(ctx context.Context, in *PushRoute, opts ...grpc.CallOption) (RoutingService_RegisterPushRouteClient, error)
	RegisterRequestRoute(ctx context.Context, in *RequestRoute, opts ...grpc.CallOption) (RoutingService_RegisterRequestRouteClient, error)
	Push(ctx context.Context, in *PushEvent, opts ...grpc.CallOption) (*RouteEventAck, error)
	Request(ctx context.Context, in *RequestEvent, opts ...grpc.CallOption) (*ResponseEvent, error)
	Respond(ctx context.Context, in *ResponseEvent, opts ...grpc.CallOption) (*RouteEventAck, error)
}

// RoutingService_RegisterPushRouteClient receives push events for one registration.
type RoutingService_RegisterPushRouteClient interface {
	Recv() (*PushEvent, error)
	grpc.ClientStream
}

// RoutingService_RegisterRequestRouteClient receives request events for one registration.
type RoutingService_RegisterRequestRouteClient interface {
	Recv() (*RequestEvent, error)
	grpc.ClientStream
}

type routingServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRoutingServiceClient creates a client for the routing service.
func NewRoutingServiceClient(cc grpc.ClientConnInterface) RoutingServiceClient {
	return &routingServiceClient{cc}
}

func (c *routingServiceClient) RegisterPushRoute(ctx context.Context, in *PushRoute, opts ...grpc.CallOption) (RoutingService_RegisterPushRouteClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{
		StreamName:    "RegisterPushRoute",
		ServerStreams: true,
	}, "/"+routingServiceName+"/RegisterPushRoute", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &routingRegisterPushRouteClient{stream}
	if err := x.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type routingRegisterPushRouteClient struct {
	grpc.ClientStream
}

func (x *routingRegisterPushRouteClient) Recv() (*PushEvent, error) {
	m := new(PushEvent)
	if err := x.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *routingServiceClient) RegisterRequestRoute(ctx context.Context, in *RequestRoute, opts ...grpc.CallOption) (RoutingService_RegisterRequestRouteClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{
		StreamName:    "RegisterRequestRoute",
		ServerStreams: true,
	}, "/"+routingServiceName+"/RegisterRequestRoute", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &routingRegisterRequestRouteClient{stream}
	if err := x.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type routingRegisterRequestRouteClient struct {
	grpc.ClientStream
}

func (x *routingRegisterRequestRouteClient) Recv() (*RequestEvent, error) {
	m := new(RequestEvent)
	if err := x.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *routingServiceClient) Push(ctx context.Context, in *PushEvent, opts ...grpc.CallOption) (*RouteEventAck, error) {
	out := new(RouteEventAck)
	if err := c.cc.Invoke(ctx, "/"+routingServiceName+"/Push", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *routingServiceClient) Request(ctx context.Context, in *RequestEvent, opts ...grpc.CallOption) (*ResponseEvent, error) {
	out := new(ResponseEvent)
	if err := c.cc.Invoke(ctx, "/"+routingServiceName+"/Request", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *routingServiceClient) Respond(ctx context.Context, in *ResponseEvent, opts ...grpc.CallOption) (*RouteEventAck, error) {
	out := new(RouteEventAck)
	if err := c.cc.Invoke(ctx, "/"+routingServiceName+"/Respond", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// RoutingServiceServer is the server interface for the local routing service.
type RoutingServiceServer interface {
	RegisterPushRoute(*PushRoute, RoutingService_RegisterPushRouteServer) error
	RegisterRequestRoute(*RequestRoute, RoutingService_RegisterRequestRouteServer) error
	Push(context.Context, *PushEvent) (*RouteEventAck, error)
	Request(context.Context, *RequestEvent) (*ResponseEvent, error)
	Respond(context.Context, *ResponseEvent) (*RouteEventAck, error)
}

// RoutingService_RegisterPushRouteServer sends push events to one registration.
type RoutingService_RegisterPushRouteServer interface {
	Send(*PushEvent) error
	grpc.ServerStream
}

// RoutingService_RegisterRequestRouteServer sends request events to one registration.
type RoutingService_RegisterRequestRouteServer interface {
	Send(*RequestEvent) error
	grpc.ServerStream
}

// UnimplementedRoutingServiceServer provides forward-compatible default
// implementations.
type UnimplementedRoutingServiceServer struct{}

func (UnimplementedRoutingServiceServer) RegisterPushRoute(*PushRoute, RoutingService_RegisterPushRouteServer) error {
	return errUnimplemented("RegisterPushRoute")
}

func (UnimplementedRoutingServiceServer) RegisterRequestRoute(*RequestRoute, RoutingService_RegisterRequestRouteServer) error {
	return errUnimplemented("RegisterRequestRoute")
}

func (UnimplementedRoutingServiceServer) Push(context.Context, *PushEvent) (*RouteEventAck, error) {
	return nil, errUnimplemented("Push")
}

func (UnimplementedRoutingServiceServer) Request(context.Context, *RequestEvent) (*ResponseEvent, error) {
	return nil, errUnimplemented("Request")
}

func (UnimplementedRoutingServiceServer) Respond(context.Context, *ResponseEvent) (*RouteEventAck, error) {
	return nil, errUnimplemented("Respond")
}

type routingRegisterPushRouteServer struct {
	grpc.ServerStream
}

func (x *routingRegisterPushRouteServer) Send(m *PushEvent) error {
	return x.SendMsg(m)
}

type routingRegisterRequestRouteServer struct {
	grpc.ServerStream
}

func (x *routingRegisterRequestRouteServer) Send(m *RequestEvent) error {
	return x.SendMsg(m)
}

func _RoutingService_RegisterPushRoute_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(PushRoute)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(RoutingServiceServer).RegisterPushRoute(m, &routingRegisterPushRouteServer{stream})
}

func _RoutingService_RegisterRequestRoute_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(RequestRoute)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(RoutingServiceServer).RegisterRequestRoute(m, &routingRegisterRequestRouteServer{stream})
}

func _RoutingService_Push_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PushEvent)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RoutingServiceServer).Push(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + routingServiceName + "/Push",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RoutingServiceServer).Push(ctx, req.(*PushEvent))
	}
	return interceptor(ctx, in, info, handler)
}

func _RoutingService_Request_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RequestEvent)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RoutingServiceServer).Request(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + routingServiceName + "/Request",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RoutingServiceServer).Request(ctx, req.(*RequestEvent))
	}
	return interceptor(ctx, in, info, handler)
}

func _RoutingService_Respond_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ResponseEvent)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RoutingServiceServer).Respond(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + routingServiceName + "/Respond",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RoutingServiceServer).Respond(ctx, req.(*ResponseEvent))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterRoutingServiceServer registers the routing service implementation.
func RegisterRoutingServiceServer(s grpc.ServiceRegistrar, srv RoutingServiceServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: routingServiceName,
		HandlerType: (*RoutingServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "Push",
				Handler:    _RoutingService_Push_Handler,
			},
			{
				MethodName: "Request",
				Handler:    _RoutingService_Request_Handler,
			},
			{
				MethodName: "Respond",
				Handler:    _RoutingService_Respond_Handler,
			},
		},
		Streams: []grpc.StreamDesc{
			{
				StreamName:    "RegisterPushRoute",
				Handler:       _RoutingService_RegisterPushRoute_Handler,
				ServerStreams: true,
			},
			{
				StreamName:    "RegisterRequestRoute",
				Handler:       _RoutingService_RegisterRequestRoute_Handler,
				ServerStreams: true,
			},
		},
		Metadata: "routing.proto",
	}, srv)
}
