// ABOUTME: CommunicationService gRPC plumbing: client stubs, server interface, handlers
// ABOUTME: Hand-rolled service descriptor mirroring communication.proto

package tnc

import (
	"context"

	"google.golang.org/grpc"
)

const communicationServiceName = "tnc.CommunicationService"

// CommunicationServiceClient is the client interface for the bus bridge.
type CommunicationServiceClient interface {
	Configure(ctx context.Context, in *CommunicationOptions, opts ...grpc.CallOption) (*EventAck, error)
	PublishChannel(ctx context.Context, in *ChannelEvent, opts ...grpc.CallOption) (*EventAck, error)
	ObserveChannel(ctx context.Context, in *ChannelFilter, opts ...grpc.CallOption) (CommunicationService_ObserveChannelClient, error)
	PublishCall(ctx context.Context, in *CallEvent, opts ...grpc.CallOption) (CommunicationService_PublishCallClient, error)
	ObserveCall(ctx context.Context, in *CallFilter, opts ...grpc.CallOption) (CommunicationService_ObserveCallClient, error)
	PublishReturn(ctx context.Context, in *ReturnEvent, opts ...grpc.CallOption) (*EventAck, error)
	PublishComplete(ctx context.Context, in *CompleteEvent, opts ...grpc.CallOption) (*EventAck, error)
}

// CommunicationService_ObserveChannelClient receives channel events.
type CommunicationService_ObserveChannelClient interface {
	Recv() (*ChannelEvent, error)
	grpc.ClientStream
}

// CommunicationService_PublishCallClient receives return events for one call.
type CommunicationService_PublishCallClient interface {
	Recv() (*ReturnEvent, error)
	grpc.ClientStream
}

// CommunicationService_ObserveCallClient receives call events.
type CommunicationService_ObserveCallClient interface {
	Recv() (*CallEvent, error)
	grpc.ClientStream
}

type communicationServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCommunicationServiceClient creates a client for the communication service.
func NewCommunicationServiceClient(cc grpc.ClientConnInterface) CommunicationServiceClient {
	return &communicationServiceClient{cc}
}

func (c *communicationServiceClient) Configure(ctx context.Context, in *CommunicationOptions, opts ...grpc.CallOption) (*EventAck, error) {
	out := new(EventAck)
	if err := c.cc.Invoke(ctx, "/"+communicationServiceName+"/Configure", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *communicationServiceClient) PublishChannel(ctx context.Context, in *ChannelEvent, opts ...grpc.CallOption) (*EventAck, error) {
	out := new(EventAck)
	if err := c.cc.Invoke(ctx, "/"+communicationServiceName+"/PublishChannel", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *communicationServiceClient) ObserveChannel(ctx context.Context, in *ChannelFilter, opts ...grpc.CallOption) (CommunicationService_ObserveChannelClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{
		StreamName:    "ObserveChannel",
		ServerStreams: true,
	}, "/"+communicationServiceName+"/ObserveChannel", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &communicationObserveChannelClient{stream}
	if err := x.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type communicationObserveChannelClient struct {
	grpc.ClientStream
}

func (x *communicationObserveChannelClient) Recv() (*ChannelEvent, error) {
	m := new(ChannelEvent)
	if err := x.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *communicationServiceClient) PublishCall(ctx context.Context, in *CallEvent, opts ...grpc.CallOption) (CommunicationService_PublishCallClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{
		StreamName:    "PublishCall",
		ServerStreams: true,
	}, "/"+communicationServiceName+"/PublishCall", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &communicationPublishCallClient{stream}
	if err := x.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type communicationPublishCallClient struct {
	grpc.ClientStream
}

func (x *communicationPublishCallClient) Recv() (*ReturnEvent, error) {
	m := new(ReturnEvent)
	if err := x.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *communicationServiceClient) ObserveCall(ctx context.Context, in *CallFilter, opts ...grpc.CallOption) (CommunicationService_ObserveCallClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{
		StreamName:    "ObserveCall",
		ServerStreams: true,
	}, "/"+communicationServiceName+"/ObserveCall", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &communicationObserveCallClient{stream}
	if err := x.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type communicationObserveCallClient struct {
	grpc.ClientStream
}

func (x *communicationObserveCallClient) Recv() (*CallEvent, error) {
	m := new(CallEvent)
	if err := x.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *communicationServiceClient) PublishReturn(ctx context.Context, in *ReturnEvent, opts ...grpc.CallOption) (*EventAck, error) {
	out := new(EventAck)
	if err := c.cc.Invoke(ctx, "/"+communicationServiceName+"/PublishReturn", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *communicationServiceClient) PublishComplete(ctx context.Context, in *CompleteEvent, opts ...grpc.CallOption) (*EventAck, error) {
	out := new(EventAck)
	if err := c.cc.Invoke(ctx, "/"+communicationServiceName+"/PublishComplete", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// CommunicationServiceServer is the server interface for the bus bridge.
type CommunicationServiceServer interface {
	Configure(context.Context, *CommunicationOptions) (*EventAck, error)
	PublishChannel(context.Context, *ChannelEvent) (*EventAck, error)
	ObserveChannel(*ChannelFilter, CommunicationService_ObserveChannelServer) error
	PublishCall(*CallEvent, CommunicationService_PublishCallServer) error
	ObserveCall(*CallFilter, CommunicationService_ObserveCallServer) error
	PublishReturn(context.Context, *ReturnEvent) (*EventAck, error)
	PublishComplete(context.Context, *CompleteEvent) (*EventAck, error)
}

// CommunicationService_ObserveChannelServer sends channel events to one observer.
type CommunicationService_ObserveChannelServer interface {
	Send(*ChannelEvent) error
	grpc.ServerStream
}

// CommunicationService_PublishCallServer sends return events to one caller.
type CommunicationService_PublishCallServer interface {
	Send(*ReturnEvent) error
	grpc.ServerStream
}

// CommunicationService_ObserveCallServer sends call events to one observer.
type CommunicationService_ObserveCallServer interface {
	Send(*CallEvent) error
	grpc.ServerStream
}

// UnimplementedCommunicationServiceServer provides forward-compatible default
// implementations.
type UnimplementedCommunicationServiceServer struct{}

func (UnimplementedCommunicationServiceServer) Configure(context.Context, *CommunicationOptions) (*EventAck, error) {
	return nil, errUnimplemented("Configure")
}

func (UnimplementedCommunicationServiceServer) PublishChannel(context.Context, *ChannelEvent) (*EventAck, error) {
	return nil, errUnimplemented("PublishChannel")
}

func (UnimplementedCommunicationServiceServer) ObserveChannel(*ChannelFilter, CommunicationService_ObserveChannelServer) error {
	return errUnimplemented("ObserveChannel")
}

func (UnimplementedCommunicationServiceServer) PublishCall(*CallEvent, CommunicationService_PublishCallServer) error {
	return errUnimplemented("PublishCall")
}

func (UnimplementedCommunicationServiceServer) ObserveCall(*CallFilter, CommunicationService_ObserveCallServer) error {
	return errUnimplemented("ObserveCall")
}

func (UnimplementedCommunicationServiceServer) PublishReturn(context.Context, *ReturnEvent) (*EventAck, error) {
	return nil, errUnimplemented("PublishReturn")
}

func (UnimplementedCommunicationServiceServer) PublishComplete(context.Context, *CompleteEvent) (*EventAck, error) {
	return nil, errUnimplemented("PublishComplete")
}

type communicationObserveChannelServer struct {
	grpc.ServerStream
}

func (x *communicationObserveChannelServer) Send(m *ChannelEvent) error {
	return x.SendMsg(m)
}

type communicationPublishCallServer struct {
	grpc.ServerStream
}

func (x *communicationPublishCallServer) Send(m *ReturnEvent) error {
	return x.SendMsg(m)
}

type communicationObserveCallServer struct {
	grpc.ServerStream
}

func (x *communicationObserveCallServer) Send(m *CallEvent) error {
	return x.SendMsg(m)
}

func _CommunicationService_Configure_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CommunicationOptions)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommunicationServiceServer).Configure(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + communicationServiceName + "/Configure",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommunicationServiceServer).Configure(ctx, req.(*CommunicationOptions))
	}
	return interceptor(ctx, in, info, handler)
}

func _CommunicationService_PublishChannel_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ChannelEvent)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommunicationServiceServer).PublishChannel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + communicationServiceName + "/PublishChannel",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommunicationServiceServer).PublishChannel(ctx, req.(*ChannelEvent))
	}
	return interceptor(ctx, in, info, handler)
}

func _CommunicationService_ObserveChannel_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(ChannelFilter)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(CommunicationServiceServer).ObserveChannel(m, &communicationObserveChannelServer{stream})
}

func _CommunicationService_PublishCall_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(CallEvent)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(CommunicationServiceServer).PublishCall(m, &communicationPublishCallServer{stream})
}

func _CommunicationService_ObserveCall_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(CallFilter)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(CommunicationServiceServer).ObserveCall(m, &communicationObserveCallServer{stream})
}

func _CommunicationService_PublishReturn_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReturnEvent)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommunicationServiceServer).PublishReturn(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + communicationServiceName + "/PublishReturn",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommunicationServiceServer).PublishReturn(ctx, req.(*ReturnEvent))
	}
	return interceptor(ctx, in, info, handler)
}

func _CommunicationService_PublishComplete_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CompleteEvent)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommunicationServiceServer).PublishComplete(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + communicationServiceName + "/PublishComplete",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommunicationServiceServer).PublishComplete(ctx, req.(*CompleteEvent))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterCommunicationServiceServer registers the communication service
// implementation.
func RegisterCommunicationServiceServer(s grpc.ServiceRegistrar, srv CommunicationServiceServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: communicationServiceName,
		HandlerType: (*CommunicationServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "Configure",
				Handler:    _CommunicationService_Configure_Handler,
			},
			{
				MethodName: "PublishChannel",
				Handler:    _CommunicationService_PublishChannel_Handler,
			},
			{
				MethodName: "PublishReturn",
				Handler:    _CommunicationService_PublishReturn_Handler,
			},
			{
				MethodName: "PublishComplete",
				Handler:    _CommunicationService_PublishComplete_Handler,
			},
		},
		Streams: []grpc.StreamDesc{
			{
				StreamName:    "ObserveChannel",
				Handler:       _CommunicationService_ObserveChannel_Handler,
				ServerStreams: true,
			},
			{
				StreamName:    "PublishCall",
				Handler:       _CommunicationService_PublishCall_Handler,
				ServerStreams: true,
			},
			{
				StreamName:    "ObserveCall",
				Handler:       _CommunicationService_ObserveCall_Handler,
				ServerStreams: true,
			},
		},
		Metadata: "communication.proto",
	}, srv)
}
