// ABOUTME: LifecycleService: streams join/leave of agents matching a selector
// ABOUTME: Initial snapshot from retained identities, regex selectors, change pairs

package lifecycle

import (
	"log/slog"
	"regexp"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flowpro/tnc-gateway/internal/bus"
	"github.com/flowpro/tnc-gateway/internal/comms"
	"github.com/flowpro/tnc-gateway/internal/config"
	"github.com/flowpro/tnc-gateway/proto/tnc"
)

// Service implements tnc.LifecycleService.
type Service struct {
	tnc.UnimplementedLifecycleServiceServer
	manager *comms.Manager
	logger  *slog.Logger
}

// NewService creates the lifecycle service.
func NewService(manager *comms.Manager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		manager: manager,
		logger:  logger.With("component", "lifecycle-service"),
	}
}

// matcher decides whether an identity is covered by the selector.
type matcher func(bus.Identity) bool

// compileSelector builds the matcher for a selector. The regex form is
// compiled once here; a bad pattern fails before any event is emitted.
func compileSelector(sel *tnc.AgentSelector) (matcher, error) {
	if sel.IdentityId != "" {
		id := sel.IdentityId
		return func(identity bus.Identity) bool {
			return identity.Id == id
		}, nil
	}
	if sel.IdentityName != "" {
		name := sel.IdentityName
		if len(name) >= 2 && strings.HasPrefix(name, "/") && strings.HasSuffix(name, "/") {
			re, err := regexp.Compile(name[1 : len(name)-1])
			if err != nil {
				return nil, err
			}
			return func(identity bus.Identity) bool {
				return re.MatchString(identity.Name)
			}, nil
		}
		return func(identity bus.Identity) bool {
			return identity.Name == name
		}, nil
	}
	return func(identity bus.Identity) bool {
		return identity.Role == config.DefaultRole
	}, nil
}

// TrackAgents streams lifecycle events for agents matching the selector.
// Every currently known matching agent is reported as a join immediately; an
// identity change surfaces as a leave-then-join pair for the same agent. The
// stream ends cleanly when the bus stops.
func (s *Service) TrackAgents(sel *tnc.AgentSelector, stream tnc.LifecycleService_TrackAgentsServer) error {
	match, err := compileSelector(sel)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid identity name pattern: %v", err)
	}

	client := s.manager.Client()
	if client == nil {
		return status.Error(codes.Unavailable, "bus is not configured")
	}
	events, cancel, err := client.ObserveAgents()
	if err != nil {
		return status.Error(codes.Unavailable, err.Error())
	}
	defer cancel()

	// known holds the last identity seen per agent id so that leaves (which
	// carry only the id) and identity mutations can be resolved.
	known := make(map[string]bus.Identity)

	ctx := stream.Context()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.handleEvent(stream, match, known, ev); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// handleEvent resolves one presence transition against the known set and
// emits the matching lifecycle events.
func (s *Service) handleEvent(stream tnc.LifecycleService_TrackAgentsServer, match matcher, known map[string]bus.Identity, ev bus.AgentEvent) error {
	switch ev.Change {
	case bus.AgentLeave:
		prior, ok := known[ev.Identity.Id]
		if !ok {
			return nil
		}
		delete(known, ev.Identity.Id)
		if !match(prior) {
			return nil
		}
		return stream.Send(lifecycleEvent(prior, tnc.LifecycleLeave, ev.Local))

	case bus.AgentJoin:
		prior, seen := known[ev.Identity.Id]
		if seen && prior == ev.Identity {
			// Retained re-advertisement of an unchanged identity.
			return nil
		}
		known[ev.Identity.Id] = ev.Identity
		if seen {
			// Identity mutation: leave under the old identity, join under
			// the new one.
			if match(prior) {
				if err := stream.Send(lifecycleEvent(prior, tnc.LifecycleLeave, ev.Local)); err != nil {
					return err
				}
			}
		}
		if !match(ev.Identity) {
			return nil
		}
		return stream.Send(lifecycleEvent(ev.Identity, tnc.LifecycleJoin, ev.Local))
	}
	return nil
}

func lifecycleEvent(identity bus.Identity, change tnc.LifecycleChange, local bool) *tnc.AgentLifecycleEvent {
	return &tnc.AgentLifecycleEvent{
		Identity: &tnc.AgentIdentity{
			Id:   identity.Id,
			Name: identity.Name,
			Role: identity.Role,
		},
		Change: change,
		Local:  local,
	}
}
