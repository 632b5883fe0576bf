// ABOUTME: CommunicationService gRPC facade over the bus adapter
// ABOUTME: Channel and Call-Return bridging, sink bookkeeping, reconfiguration

package comms

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flowpro/tnc-gateway/internal/bus"
	"github.com/flowpro/tnc-gateway/internal/codec"
	"github.com/flowpro/tnc-gateway/internal/config"
	"github.com/flowpro/tnc-gateway/internal/observability"
	"github.com/flowpro/tnc-gateway/proto/tnc"
)

// Service implements tnc.CommunicationService.
type Service struct {
	tnc.UnimplementedCommunicationServiceServer
	manager *Manager
	sinks   *SinkRegistry
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService creates the communication service. Metrics may be nil.
func NewService(manager *Manager, sinks *SinkRegistry, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		manager: manager,
		sinks:   sinks,
		metrics: metrics,
		logger:  logger.With("component", "comms-service"),
	}
}

// liveClient fetches the current bus client, translating its absence into
// the unavailability taxonomy.
func (s *Service) liveClient() (*bus.Client, error) {
	client := s.manager.Client()
	if client == nil {
		return nil, status.Error(codes.Unavailable, "bus is not configured")
	}
	return client, nil
}

// busError maps bus adapter errors onto gRPC status codes.
func busError(err error) error {
	switch {
	case errors.Is(err, bus.ErrOffline):
		return status.Error(codes.Unavailable, "bus is offline")
	case errors.Is(err, bus.ErrStopped), errors.Is(err, bus.ErrNotStarted):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, bus.ErrInvalidId):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}

// Configure stops the bus, merges the options into the live configuration,
// and restarts it. All outstanding observation and publish streams end
// cleanly as part of the stop.
func (s *Service) Configure(ctx context.Context, opts *tnc.CommunicationOptions) (*tnc.EventAck, error) {
	err := s.manager.Configure(ctx, config.Options{
		Url:                  opts.Url,
		Namespace:            opts.Namespace,
		IdentityName:         opts.AgentIdentityName,
		IdentityId:           opts.AgentIdentityId,
		Username:             opts.Username,
		Password:             opts.Password,
		TlsCert:              opts.TlsCert,
		TlsKey:               opts.TlsKey,
		VerifyServerCert:     opts.VerifyServerCert,
		NotFailFastIfOffline: opts.NotFailFastIfOffline,
	})
	if err != nil {
		return nil, busError(err)
	}
	return &tnc.EventAck{}, nil
}

// PublishChannel publishes one event on a channel id.
func (s *Service) PublishChannel(ctx context.Context, ev *tnc.ChannelEvent) (*tnc.EventAck, error) {
	if err := bus.ValidateId(ev.Id); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	client, err := s.liveClient()
	if err != nil {
		return nil, err
	}
	if err := client.PublishChannel(ev.Id, codec.ToBus(ev.Data)); err != nil {
		return nil, busError(err)
	}
	s.metrics.BusPublished()
	return &tnc.EventAck{}, nil
}

// ObserveChannel streams inbound events on a channel id. The stream ends
// cleanly when the bus stops or the client cancels.
func (s *Service) ObserveChannel(filter *tnc.ChannelFilter, stream tnc.CommunicationService_ObserveChannelServer) error {
	if err := bus.ValidateId(filter.Id); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	client, err := s.liveClient()
	if err != nil {
		return err
	}
	events, cancel, err := client.ObserveChannel(filter.Id)
	if err != nil {
		return busError(err)
	}
	defer cancel()

	ctx := stream.Context()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			data, err := codec.FromBus(ev.Object)
			if err != nil {
				return status.Error(codes.InvalidArgument, err.Error())
			}
			if err := stream.Send(&tnc.ChannelEvent{
				Id:       ev.Id,
				Data:     data,
				SourceId: ev.Object.SourceId,
			}); err != nil {
				return err
			}
			s.metrics.BusEventReceived()
		case <-ctx.Done():
			return nil
		}
	}
}

// PublishCall publishes one call and streams its returns. The return stream
// is unbounded in count and time; it ends when the caller cancels, the
// deadline passes, or the bus stops.
func (s *Service) PublishCall(ev *tnc.CallEvent, stream tnc.CommunicationService_PublishCallServer) error {
	if err := bus.ValidateId(ev.Operation); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	client, err := s.liveClient()
	if err != nil {
		return err
	}
	call, err := client.PublishCall(ev.Operation, codec.ToBus(ev.Data))
	if err != nil {
		return busError(err)
	}
	defer call.Cancel()
	s.metrics.BusPublished()

	ctx := stream.Context()
	for {
		select {
		case ret, ok := <-call.Returns():
			if !ok {
				return nil
			}
			data, err := codec.FromBus(ret.Object)
			if err != nil {
				return status.Error(codes.InvalidArgument, err.Error())
			}
			// The bus-internal correlation stays inside the gateway; the
			// outward correlation id is empty on the publishing side.
			if err := stream.Send(&tnc.ReturnEvent{
				Data:           data,
				Error:          ret.Error,
				SourceId:       ret.SourceId,
				SequenceNumber: ret.SequenceNumber,
			}); err != nil {
				return err
			}
			s.metrics.BusEventReceived()
		case <-ctx.Done():
			return nil
		}
	}
}

// ObserveCall streams inbound calls on an operation. Each call gets a fresh
// outward correlation id whose response sink lives until PublishComplete or
// the end of this stream.
func (s *Service) ObserveCall(filter *tnc.CallFilter, stream tnc.CommunicationService_ObserveCallServer) error {
	if err := bus.ValidateId(filter.Operation); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	client, err := s.liveClient()
	if err != nil {
		return err
	}
	events, cancel, err := client.ObserveCall(filter.Operation)
	if err != nil {
		return busError(err)
	}
	defer cancel()

	owner := uuid.NewString()
	defer s.sinks.ReleaseOwner(owner)

	ctx := stream.Context()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			data, err := codec.FromBus(ev.Object)
			if err != nil {
				return status.Error(codes.InvalidArgument, err.Error())
			}
			correlationId := uuid.NewString()
			s.sinks.Register(owner, correlationId, ev.Respond)
			if err := stream.Send(&tnc.CallEvent{
				Operation:     ev.Operation,
				Data:          data,
				SourceId:      ev.SourceId,
				CorrelationId: correlationId,
			}); err != nil {
				return err
			}
			s.metrics.BusEventReceived()
		case <-ctx.Done():
			return nil
		}
	}
}

// PublishReturn forwards one return to the caller behind the correlation id.
// A missing sink is the expected late-response case and acks silently.
func (s *Service) PublishReturn(ctx context.Context, ev *tnc.ReturnEvent) (*tnc.EventAck, error) {
	if !s.sinks.Has(ev.CorrelationId) {
		return &tnc.EventAck{}, nil
	}
	client, err := s.liveClient()
	if err != nil {
		return nil, err
	}
	if client.FailFast() && !client.Online() {
		return nil, status.Error(codes.Unavailable, "bus is offline")
	}

	payload := bus.ReturnPayload{Error: ev.Error}
	if ev.Error == "" {
		payload.Object = codec.ToBus(ev.Data)
	}
	if _, err := s.sinks.Respond(ev.CorrelationId, payload); err != nil {
		return nil, busError(err)
	}
	s.metrics.BusPublished()
	return &tnc.EventAck{}, nil
}

// PublishComplete releases the response sink for a correlation id. Repeat
// completes are no-ops.
func (s *Service) PublishComplete(ctx context.Context, ev *tnc.CompleteEvent) (*tnc.EventAck, error) {
	s.sinks.Release(ev.CorrelationId)
	return &tnc.EventAck{}, nil
}
