// ABOUTME: RoutingService gRPC facade over the in-process routing engine
// ABOUTME: Anchors stream lifecycles to registrations and maps engine errors

package routing

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flowpro/tnc-gateway/internal/observability"
	"github.com/flowpro/tnc-gateway/proto/tnc"
)

// Service implements tnc.RoutingService.
type Service struct {
	tnc.UnimplementedRoutingServiceServer
	engine  *Engine
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService creates the routing service. Metrics may be nil.
func NewService(engine *Engine, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine:  engine,
		metrics: metrics,
		logger:  logger.With("component", "routing-service"),
	}
}

// lockedPushSink serializes writes to one registration's stream. Multiple
// concurrent Push calls may target the same registration; grpc server
// streams do not allow concurrent Send.
type lockedPushSink struct {
	mu     sync.Mutex
	stream tnc.RoutingService_RegisterPushRouteServer
}

func (s *lockedPushSink) Send(ev *tnc.PushEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream.Send(ev)
}

type lockedRequestSink struct {
	mu     sync.Mutex
	stream tnc.RoutingService_RegisterRequestRouteServer
}

func (s *lockedRequestSink) Send(ev *tnc.RequestEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream.Send(ev)
}

// RegisterPushRoute anchors one push registration to the stream. The
// registration lives until the client cancels, the deadline passes, or the
// server shuts down.
func (s *Service) RegisterPushRoute(route *tnc.PushRoute, stream tnc.RoutingService_RegisterPushRouteServer) error {
	if route.Route == "" {
		return status.Error(codes.InvalidArgument, "route must not be empty")
	}

	id := s.engine.RegisterPush(route.Route, &lockedPushSink{stream: stream})
	defer s.engine.UnregisterPush(route.Route, id)
	s.metrics.PushRegistrationAdded()
	defer s.metrics.PushRegistrationRemoved()

	<-stream.Context().Done()
	return nil
}

// RegisterRequestRoute anchors one request registration to the stream.
// Policy conflicts are caller bugs and fail the stream immediately.
func (s *Service) RegisterRequestRoute(route *tnc.RequestRoute, stream tnc.RoutingService_RegisterRequestRouteServer) error {
	if route.Route == "" {
		return status.Error(codes.InvalidArgument, "route must not be empty")
	}

	id, err := s.engine.RegisterRequest(route.Route, route.Policy, &lockedRequestSink{stream: stream})
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	defer s.engine.UnregisterRequest(route.Route, id)
	s.metrics.RequestRegistrationAdded()
	defer s.metrics.RequestRegistrationRemoved()

	<-stream.Context().Done()
	return nil
}

// Push fans the event out to every registration on the route and reports
// the routing count; zero when the route has no registrations.
func (s *Service) Push(ctx context.Context, ev *tnc.PushEvent) (*tnc.RouteEventAck, error) {
	count := s.engine.Push(ev)
	s.metrics.PushRouted()
	return &tnc.RouteEventAck{RoutingCount: int32(count)}, nil
}

// Request dispatches the event to one registration per the route's policy
// and waits for the correlated response.
func (s *Service) Request(ctx context.Context, ev *tnc.RequestEvent) (*tnc.ResponseEvent, error) {
	pending, err := s.engine.Dispatch(ctx, ev)
	if err != nil {
		if errors.Is(err, ErrNoRegistration) {
			return nil, status.Error(codes.Unavailable, "No registration available")
		}
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	s.metrics.RequestRouted()

	select {
	case out := <-pending.Outcome():
		if out.Err != nil {
			if errors.Is(out.Err, ErrRegistrationGone) {
				return nil, status.Error(codes.Canceled, "Correlated registration deregistered before response")
			}
			return nil, status.Error(codes.Internal, out.Err.Error())
		}
		return out.Response, nil
	case <-ctx.Done():
		s.engine.Abandon(pending.Route, pending.RequestId)
		return nil, status.FromContextError(ctx.Err()).Err()
	}
}

// Respond correlates a response with its pending request. An unknown
// (route, requestId) pair is a caller bug.
func (s *Service) Respond(ctx context.Context, ev *tnc.ResponseEvent) (*tnc.RouteEventAck, error) {
	count, err := s.engine.Respond(ev)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "Response event discarded as no correlated registration exists")
	}
	return &tnc.RouteEventAck{RoutingCount: int32(count)}, nil
}
