// ABOUTME: ConsensusService gRPC plumbing: client stubs, server interface, handlers
// ABOUTME: Hand-rolled service descriptor mirroring consensus.proto

package tnc

import (
	"context"

	"google.golang.org/grpc"
)

const consensusServiceName = "tnc.ConsensusService"

// ConsensusServiceClient is the client interface for the raft multiplexer.
type ConsensusServiceClient interface {
	Create(ctx context.Context, in *CreateOptions, opts ...grpc.CallOption) (*CreateResponse, error)
	Connect(ctx context.Context, in *NodeRef, opts ...grpc.CallOption) (*ConsensusAck, error)
	Disconnect(ctx context.Context, in *NodeRef, opts ...grpc.CallOption) (*ConsensusAck, error)
	Stop(ctx context.Context, in *NodeRef, opts ...grpc.CallOption) (*ConsensusAck, error)
	Propose(ctx context.Context, in *ProposeInput, opts ...grpc.CallOption) (*ConsensusAck, error)
	GetState(ctx context.Context, in *NodeRef, opts ...grpc.CallOption) (*State, error)
	ObserveState(ctx context.Context, in *NodeRef, opts ...grpc.CallOption) (ConsensusService_ObserveStateClient, error)
	GetClusterConfiguration(ctx context.Context, in *NodeRef, opts ...grpc.CallOption) (*ClusterConfiguration, error)
	ObserveClusterConfiguration(ctx context.Context, in *NodeRef, opts ...grpc.CallOption) (ConsensusService_ObserveClusterConfigurationClient, error)
}

// ConsensusService_ObserveStateClient receives committed states.
type ConsensusService_ObserveStateClient interface {
	Recv() (*State, error)
	grpc.ClientStream
}

// ConsensusService_ObserveClusterConfigurationClient receives membership changes.
type ConsensusService_ObserveClusterConfigurationClient interface {
	Recv() (*ClusterConfiguration, error)
	grpc.ClientStream
}

type consensusServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewConsensusServiceClient creates a client for the consensus service.
func NewConsensusServiceClient(cc grpc.ClientConnInterface) ConsensusServiceClient {
	return &consensusServiceClient{cc}
}

func (c *consensusServiceClient) Create(ctx context.Context, in *CreateOptions, opts ...grpc.CallOption) (*CreateResponse, error) {
	out := new(CreateResponse)
	if err := c.cc.Invoke(ctx, "/"+consensusServiceName+"/Create", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *consensusServiceClient) Connect(ctx context.Context, in *NodeRef, opts ...grpc.CallOption) (*ConsensusAck, error) {
	out := new(ConsensusAck)
	if err := c.cc.Invoke(ctx, "/"+consensusServiceName+"/Connect", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *consensusServiceClient) Disconnect(ctx context.Context, in *NodeRef, opts ...grpc.CallOption) (*ConsensusAck, error) {
	out := new(ConsensusAck)
	if err := c.cc.Invoke(ctx, "/"+consensusServiceName+"/Disconnect", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *consensusServiceClient) Stop(ctx context.Context, in *NodeRef, opts ...grpc.CallOption) (*ConsensusAck, error) {
	out := new(ConsensusAck)
	if err := c.cc.Invoke(ctx, "/"+consensusServiceName+"/Stop", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *consensusServiceClient) Propose(ctx context.Context, in *ProposeInput, opts ...grpc.CallOption) (*ConsensusAck, error) {
	out := new(ConsensusAck)
	if err := c.cc.Invoke(ctx, "/"+consensusServiceName+"/Propose", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *consensusServiceClient) GetState(ctx context.Context, in *NodeRef, opts ...grpc.CallOption) (*State, error) {
	out := new(State)
	if err := c.cc.Invoke(ctx, "/"+consensusServiceName+"/GetState", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *consensusServiceClient) ObserveState(ctx context.Context, in *NodeRef, opts ...grpc.CallOption) (ConsensusService_ObserveStateClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{
		StreamName:    "ObserveState",
		ServerStreams: true,
	}, "/"+consensusServiceName+"/ObserveState", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &consensusObserveStateClient{stream}
	if err := x.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type consensusObserveStateClient struct {
	grpc.ClientStream
}

func (x *consensusObserveStateClient) Recv() (*State, error) {
	m := new(State)
	if err := x.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *consensusServiceClient) GetClusterConfiguration(ctx context.Context, in *NodeRef, opts ...grpc.CallOption) (*ClusterConfiguration, error) {
	out := new(ClusterConfiguration)
	if err := c.cc.Invoke(ctx, "/"+consensusServiceName+"/GetClusterConfiguration", in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *consensusServiceClient) ObserveClusterConfiguration(ctx context.Context, in *NodeRef, opts ...grpc.CallOption) (ConsensusService_ObserveClusterConfigurationClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{
		StreamName:    "ObserveClusterConfiguration",
		ServerStreams: true,
	}, "/"+consensusServiceName+"/ObserveClusterConfiguration", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &consensusObserveClusterConfigurationClient{stream}
	if err := x.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type consensusObserveClusterConfigurationClient struct {
	grpc.ClientStream
}

func (x *consensusObserveClusterConfigurationClient) Recv() (*ClusterConfiguration, error) {
	m := new(ClusterConfiguration)
	if err := x.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// ConsensusServiceServer is the server interface for the raft multiplexer.
type ConsensusServiceServer interface {
	Create(context.Context, *CreateOptions) (*CreateResponse, error)
	Connect(context.Context, *NodeRef) (*ConsensusAck, error)
	Disconnect(context.Context, *NodeRef) (*ConsensusAck, error)
	Stop(context.Context, *NodeRef) (*ConsensusAck, error)
	Propose(context.Context, *ProposeInput) (*ConsensusAck, error)
	GetState(context.Context, *NodeRef) (*State, error)
	ObserveState(*NodeRef, ConsensusService_ObserveStateServer) error
	GetClusterConfiguration(context.Context, *NodeRef) (*ClusterConfiguration, error)
	ObserveClusterConfiguration(*NodeRef, ConsensusService_ObserveClusterConfigurationServer) error
}

// ConsensusService_ObserveStateServer sends committed states to one observer.
type ConsensusService_ObserveStateServer interface {
	Send(*State) error
	grpc.ServerStream
}

// ConsensusService_ObserveClusterConfigurationServer sends membership changes
// to one observer.
type ConsensusService_ObserveClusterConfigurationServer interface {
	Send(*ClusterConfiguration) error
	grpc.ServerStream
}

// UnimplementedConsensusServiceServer provides forward-compatible default
// implementations.
type UnimplementedConsensusServiceServer struct{}

func (UnimplementedConsensusServiceServer) Create(context.Context, *CreateOptions) (*CreateResponse, error) {
	return nil, errUnimplemented("Create")
}

func (UnimplementedConsensusServiceServer) Connect(context.Context, *NodeRef) (*ConsensusAck, error) {
	return nil, errUnimplemented("Connect")
}

func (UnimplementedConsensusServiceServer) Disconnect(context.Context, *NodeRef) (*ConsensusAck, error) {
	return nil, errUnimplemented("Disconnect")
}

func (UnimplementedConsensusServiceServer) Stop(context.Context, *NodeRef) (*ConsensusAck, error) {
	return nil, errUnimplemented("Stop")
}

func (UnimplementedConsensusServiceServer) Propose(context.Context, *ProposeInput) (*ConsensusAck, error) {
	return nil, errUnimplemented("Propose")
}

func (UnimplementedConsensusServiceServer) GetState(context.Context, *NodeRef) (*State, error) {
	return nil, errUnimplemented("GetState")
}

func (UnimplementedConsensusServiceServer) ObserveState(*NodeRef, ConsensusService_ObserveStateServer) error {
	return errUnimplemented("ObserveState")
}

func (UnimplementedConsensusServiceServer) GetClusterConfiguration(context.Context, *NodeRef) (*ClusterConfiguration, error) {
	return nil, errUnimplemented("GetClusterConfiguration")
}

func (UnimplementedConsensusServiceServer) ObserveClusterConfiguration(*NodeRef, ConsensusService_ObserveClusterConfigurationServer) error {
	return errUnimplemented("ObserveClusterConfiguration")
}

type consensusObserveStateServer struct {
	grpc.ServerStream
}

func (x *consensusObserveStateServer) Send(m *State) error {
	return x.SendMsg(m)
}

type consensusObserveClusterConfigurationServer struct {
	grpc.ServerStream
}

func (x *consensusObserveClusterConfigurationServer) Send(m *ClusterConfiguration) error {
	return x.SendMsg(m)
}

func _ConsensusService_Create_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateOptions)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConsensusServiceServer).Create(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + consensusServiceName + "/Create",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConsensusServiceServer).Create(ctx, req.(*CreateOptions))
	}
	return interceptor(ctx, in, info, handler)
}

func _ConsensusService_Connect_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(NodeRef)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConsensusServiceServer).Connect(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + consensusServiceName + "/Connect",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConsensusServiceServer).Connect(ctx, req.(*NodeRef))
	}
	return interceptor(ctx, in, info, handler)
}

func _ConsensusService_Disconnect_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(NodeRef)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConsensusServiceServer).Disconnect(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + consensusServiceName + "/Disconnect",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConsensusServiceServer).Disconnect(ctx, req.(*NodeRef))
	}
	return interceptor(ctx, in, info, handler)
}

func _ConsensusService_Stop_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(NodeRef)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConsensusServiceServer).Stop(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + consensusServiceName + "/Stop",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConsensusServiceServer).Stop(ctx, req.(*NodeRef))
	}
	return interceptor(ctx, in, info, handler)
}

func _ConsensusService_Propose_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ProposeInput)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConsensusServiceServer).Propose(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + consensusServiceName + "/Propose",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConsensusServiceServer).Propose(ctx, req.(*ProposeInput))
	}
	return interceptor(ctx, in, info, handler)
}

func _ConsensusService_GetState_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(NodeRef)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConsensusServiceServer).GetState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + consensusServiceName + "/GetState",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConsensusServiceServer).GetState(ctx, req.(*NodeRef))
	}
	return interceptor(ctx, in, info, handler)
}

func _ConsensusService_ObserveState_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(NodeRef)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ConsensusServiceServer).ObserveState(m, &consensusObserveStateServer{stream})
}

func _ConsensusService_GetClusterConfiguration_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(NodeRef)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConsensusServiceServer).GetClusterConfiguration(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + consensusServiceName + "/GetClusterConfiguration",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConsensusServiceServer).GetClusterConfiguration(ctx, req.(*NodeRef))
	}
	return interceptor(ctx, in, info, handler)
}

func _ConsensusService_ObserveClusterConfiguration_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(NodeRef)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ConsensusServiceServer).ObserveClusterConfiguration(m, &consensusObserveClusterConfigurationServer{stream})
}

// RegisterConsensusServiceServer registers the consensus service implementation.
func RegisterConsensusServiceServer(s grpc.ServiceRegistrar, srv ConsensusServiceServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: consensusServiceName,
		HandlerType: (*ConsensusServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "Create",
				Handler:    _ConsensusService_Create_Handler,
			},
			{
				MethodName: "Connect",
				Handler:    _ConsensusService_Connect_Handler,
			},
			{
				MethodName: "Disconnect",
				Handler:    _ConsensusService_Disconnect_Handler,
			},
			{
				MethodName: "Stop",
				Handler:    _ConsensusService_Stop_Handler,
			},
			{
				MethodName: "Propose",
				Handler:    _ConsensusService_Propose_Handler,
			},
			{
				MethodName: "GetState",
				Handler:    _ConsensusService_GetState_Handler,
			},
			{
				MethodName: "GetClusterConfiguration",
				Handler:    _ConsensusService_GetClusterConfiguration_Handler,
			},
		},
		Streams: []grpc.StreamDesc{
			{
				StreamName:    "ObserveState",
				Handler:       _ConsensusService_ObserveState_Handler,
				ServerStreams: true,
			},
			{
				StreamName:    "ObserveClusterConfiguration",
				Handler:       _ConsensusService_ObserveClusterConfiguration_Handler,
				ServerStreams: true,
			},
		},
		Metadata: "consensus.proto",
	}, srv)
}
