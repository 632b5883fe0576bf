// ABOUTME: ConsensusService gRPC facade over the raft node registry
// ABOUTME: Maps controller and state machine errors onto the status taxonomy

package consensus

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flowpro/tnc-gateway/internal/raft"
	"github.com/flowpro/tnc-gateway/proto/tnc"
)

// Service implements tnc.ConsensusService.
type Service struct {
	tnc.UnimplementedConsensusServiceServer
	registry *Registry
	logger   *slog.Logger
}

// NewService creates the consensus service.
func NewService(registry *Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: registry,
		logger:   logger.With("component", "consensus-service"),
	}
}

// translateErr maps registry and controller errors onto gRPC status codes.
func translateErr(err error) error {
	var stateErr *StateError
	switch {
	case errors.Is(err, ErrUnknownNode):
		return status.Error(codes.InvalidArgument, ErrUnknownNode.Error())
	case errors.As(err, &stateErr):
		return status.Error(codes.Unavailable, stateErr.Error())
	case errors.Is(err, raft.ErrTooManyQueuedProposals):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, raft.ErrDisconnectedBeforeComplete):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, raft.ErrNotConnected):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// Create allocates a fresh raft node in state created.
func (s *Service) Create(ctx context.Context, opts *tnc.CreateOptions) (*tnc.CreateResponse, error) {
	id := s.registry.Create(opts.Cluster, opts.ShouldCreateCluster)
	return &tnc.CreateResponse{Id: id}, nil
}

// Connect brings a node into its cluster.
func (s *Service) Connect(ctx context.Context, ref *tnc.NodeRef) (*tnc.ConsensusAck, error) {
	if err := s.registry.Connect(ctx, ref.Id); err != nil {
		return nil, translateErr(err)
	}
	return &tnc.ConsensusAck{}, nil
}

// Disconnect removes a node from cluster membership and deletes its
// persisted state.
func (s *Service) Disconnect(ctx context.Context, ref *tnc.NodeRef) (*tnc.ConsensusAck, error) {
	if err := s.registry.Disconnect(ctx, ref.Id); err != nil {
		return nil, translateErr(err)
	}
	return &tnc.ConsensusAck{}, nil
}

// Stop halts a node, retaining membership and persisted state for a later
// reconnect.
func (s *Service) Stop(ctx context.Context, ref *tnc.NodeRef) (*tnc.ConsensusAck, error) {
	if err := s.registry.Stop(ref.Id); err != nil {
		return nil, translateErr(err)
	}
	return &tnc.ConsensusAck{}, nil
}

// Propose submits one input to the replicated state machine and waits for it
// to commit. An unset value is the null value; a value without a variant tag
// is a serialization fault.
func (s *Service) Propose(ctx context.Context, input *tnc.ProposeInput) (*tnc.ConsensusAck, error) {
	ctrl, err := s.registry.Controller(input.Id)
	if err != nil {
		return nil, translateErr(err)
	}

	cmd := raft.Command{Key: input.Key}
	switch input.Operation {
	case tnc.RaftDelete:
		cmd.Op = raft.OpDelete
	default:
		cmd.Op = raft.OpPut
		value, err := normalizeValue(input.Value)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		raw, err := encodeValue(value)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		cmd.Value = raw
	}

	if err := ctrl.Propose(ctx, cmd); err != nil {
		return nil, translateErr(err)
	}
	return &tnc.ConsensusAck{}, nil
}

// GetState proposes an internal no-op and returns the resulting state, which
// is at least as fresh as the call.
func (s *Service) GetState(ctx context.Context, ref *tnc.NodeRef) (*tnc.State, error) {
	ctrl, err := s.registry.Controller(ref.Id)
	if err != nil {
		return nil, translateErr(err)
	}
	state, err := ctrl.ReadState(ctx)
	if err != nil {
		return nil, translateErr(err)
	}
	out, err := stateToProto(state)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// ObserveState streams the state after every committed change until the node
// leaves the connected state or the client cancels.
func (s *Service) ObserveState(ref *tnc.NodeRef, stream tnc.ConsensusService_ObserveStateServer) error {
	ctrl, err := s.registry.Controller(ref.Id)
	if err != nil {
		return translateErr(err)
	}
	states, cancel := ctrl.ObserveState()
	defer cancel()

	ctx := stream.Context()
	for {
		select {
		case state, ok := <-states:
			if !ok {
				return nil
			}
			out, err := stateToProto(state)
			if err != nil {
				return status.Error(codes.Internal, err.Error())
			}
			if err := stream.Send(out); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// GetClusterConfiguration returns the node ids of the current cluster
// members.
func (s *Service) GetClusterConfiguration(ctx context.Context, ref *tnc.NodeRef) (*tnc.ClusterConfiguration, error) {
	ctrl, err := s.registry.Controller(ref.Id)
	if err != nil {
		return nil, translateErr(err)
	}
	return &tnc.ClusterConfiguration{Ids: ctrl.Members()}, nil
}

// ObserveClusterConfiguration streams the membership on every change until
// the node leaves the connected state or the client cancels.
func (s *Service) ObserveClusterConfiguration(ref *tnc.NodeRef, stream tnc.ConsensusService_ObserveClusterConfigurationServer) error {
	ctrl, err := s.registry.Controller(ref.Id)
	if err != nil {
		return translateErr(err)
	}
	changes, cancel := ctrl.ObserveConfiguration()
	defer cancel()

	ctx := stream.Context()
	for {
		select {
		case members, ok := <-changes:
			if !ok {
				return nil
			}
			if err := stream.Send(&tnc.ClusterConfiguration{Ids: members}); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}
