// ABOUTME: LifecycleService gRPC plumbing: client stub, server interface, handler
// ABOUTME: Hand-rolled service descriptor mirroring lifecycle.proto

package tnc

import (
	"context"

	"google.golang.org/grpc"
)

const lifecycleServiceName = "tnc.LifecycleService"

// LifecycleServiceClient is the client interface for agent lifecycle tracking.
type LifecycleServiceClient interface {
	TrackAgents(ctx context.Context, in *AgentSelector, opts ...grpc.CallOption) (LifecycleService_TrackAgentsClient, error)
}

// LifecycleService_TrackAgentsClient receives agent lifecycle events.
type LifecycleService_TrackAgentsClient interface {
	Recv() (*AgentLifecycleEvent, error)
	grpc.ClientStream
}

type lifecycleServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLifecycleServiceClient creates a client for the lifecycle service.
func NewLifecycleServiceClient(cc grpc.ClientConnInterface) LifecycleServiceClient {
	return &lifecycleServiceClient{cc}
}

func (c *lifecycleServiceClient) TrackAgents(ctx context.Context, in *AgentSelector, opts ...grpc.CallOption) (LifecycleService_TrackAgentsClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{
		StreamName:    "TrackAgents",
		ServerStreams: true,
	}, "/"+lifecycleServiceName+"/TrackAgents", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &lifecycleTrackAgentsClient{stream}
	if err := x.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type lifecycleTrackAgentsClient struct {
	grpc.ClientStream
}

func (x *lifecycleTrackAgentsClient) Recv() (*AgentLifecycleEvent, error) {
	m := new(AgentLifecycleEvent)
	if err := x.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// LifecycleServiceServer is the server interface for agent lifecycle tracking.
type LifecycleServiceServer interface {
	TrackAgents(*AgentSelector, LifecycleService_TrackAgentsServer) error
}

// LifecycleService_TrackAgentsServer sends agent lifecycle events to one tracker.
type LifecycleService_TrackAgentsServer interface {
	Send(*AgentLifecycleEvent) error
	grpc.ServerStream
}

// UnimplementedLifecycleServiceServer provides forward-compatible default
// implementations.
type UnimplementedLifecycleServiceServer struct{}

func (UnimplementedLifecycleServiceServer) TrackAgents(*AgentSelector, LifecycleService_TrackAgentsServer) error {
	return errUnimplemented("TrackAgents")
}

type lifecycleTrackAgentsServer struct {
	grpc.ServerStream
}

func (x *lifecycleTrackAgentsServer) Send(m *AgentLifecycleEvent) error {
	return x.SendMsg(m)
}

func _LifecycleService_TrackAgents_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(AgentSelector)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(LifecycleServiceServer).TrackAgents(m, &lifecycleTrackAgentsServer{stream})
}

// RegisterLifecycleServiceServer registers the lifecycle service implementation.
func RegisterLifecycleServiceServer(s grpc.ServiceRegistrar, srv LifecycleServiceServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: lifecycleServiceName,
		HandlerType: (*LifecycleServiceServer)(nil),
		Streams: []grpc.StreamDesc{
			{
				StreamName:    "TrackAgents",
				Handler:       _LifecycleService_TrackAgents_Handler,
				ServerStreams: true,
			},
		},
		Metadata: "lifecycle.proto",
	}, srv)
}
