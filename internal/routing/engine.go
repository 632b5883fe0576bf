// ABOUTME: In-process routing engine: push fan-out, correlated request dispatch
// ABOUTME: Owns the push table, request groups, and pending request bookkeeping

package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/flowpro/tnc-gateway/proto/tnc"
)

// Engine errors
var (
	// ErrNoRegistration means a request was issued on a route with no group.
	ErrNoRegistration = errors.New("no registration available")

	// ErrSingleOccupied rejects a second registration on a SINGLE route.
	ErrSingleOccupied = errors.New("route already has a registration with policy SINGLE")

	// ErrPolicyMismatch rejects a registration whose policy differs from the group's.
	ErrPolicyMismatch = errors.New("policy differs from the route's existing policy")

	// ErrNoPending means a response arrived for an unknown (route, requestId).
	ErrNoPending = errors.New("response event discarded as no correlated registration exists")

	// ErrRegistrationGone fails a pending request whose chosen registration left.
	ErrRegistrationGone = errors.New("correlated registration deregistered before response")
)

// PushSink receives push events for one registration.
type PushSink interface {
	Send(*tnc.PushEvent) error
}

// RequestSink receives request events for one registration.
type RequestSink interface {
	Send(*tnc.RequestEvent) error
}

type pushRegistration struct {
	id   string
	sink PushSink
}

type requestRegistration struct {
	id   string
	sink RequestSink
}

// requestGroup is the per-route record for two-way routing. All registrations
// share one policy; lastRequestId wraps to 1 past the 32-bit max and never
// issues 0.
type requestGroup struct {
	route         string
	policy        tnc.Policy
	regs          []*requestRegistration
	lastRequestId uint32
	cursor        int
	selector      selector
}

type pendingKey struct {
	route     string
	requestId uint32
}

// Outcome is the terminal result of one dispatched request.
type Outcome struct {
	Response *tnc.ResponseEvent
	Err      error
}

// Pending is one in-flight request awaiting its response.
type Pending struct {
	Route          string
	RequestId      uint32
	registrationId string
	ctx            context.Context
	result         chan Outcome
}

// Outcome delivers the response or terminal error exactly once.
func (p *Pending) Outcome() <-chan Outcome {
	return p.result
}

// Engine multiplexes push and request flows between local registrations.
// Table mutations serialize on one mutex; stream writes happen outside it so
// a slow registration never stalls unrelated routes.
type Engine struct {
	mu       sync.Mutex
	pushes   map[string][]*pushRegistration
	groups   map[string]*requestGroup
	pendings map[pendingKey]*Pending
	logger   *slog.Logger
}

// NewEngine creates an empty routing engine. Pass nil logger for default.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		pushes:   make(map[string][]*pushRegistration),
		groups:   make(map[string]*requestGroup),
		pendings: make(map[pendingKey]*Pending),
		logger:   logger.With("component", "routing"),
	}
}

// RegisterPush appends a registration to a push route, creating the route
// entry if absent. Returns the registration id for deregistration.
func (e *Engine) RegisterPush(route string, sink PushSink) string {
	id := uuid.NewString()

	e.mu.Lock()
	e.pushes[route] = append(e.pushes[route], &pushRegistration{id: id, sink: sink})
	count := len(e.pushes[route])
	e.mu.Unlock()

	e.logger.Debug("push registration added", "route", route, "registrations", count)
	return id
}

// UnregisterPush removes a push registration; the route entry is deleted
// when it empties.
func (e *Engine) UnregisterPush(route, id string) {
	e.mu.Lock()
	regs := e.pushes[route]
	for i, r := range regs {
		if r.id == id {
			regs = append(regs[:i], regs[i+1:]...)
			break
		}
	}
	if len(regs) == 0 {
		delete(e.pushes, route)
	} else {
		e.pushes[route] = regs
	}
	e.mu.Unlock()

	e.logger.Debug("push registration removed", "route", route)
}

// Push writes the event to every registration on its route in registration
// order and reports how many writes were attempted.
func (e *Engine) Push(ev *tnc.PushEvent) int {
	e.mu.Lock()
	regs := e.pushes[ev.Route]
	targets := make([]*pushRegistration, len(regs))
	copy(targets, regs)
	e.mu.Unlock()

	for _, r := range targets {
		if err := r.sink.Send(ev); err != nil {
			e.logger.Warn("push delivery failed", "route", ev.Route, "error", err)
		}
	}
	return len(targets)
}

// RegisterRequest appends a registration to a request route. A new route
// adopts the given policy; an existing route rejects SINGLE seconds and
// policy mismatches.
func (e *Engine) RegisterRequest(route string, policy tnc.Policy, sink RequestSink) (string, error) {
	id := uuid.NewString()

	e.mu.Lock()
	group, ok := e.groups[route]
	if !ok {
		group = &requestGroup{
			route:    route,
			policy:   policy,
			selector: selectorFor(policy),
		}
		e.groups[route] = group
	} else {
		if group.policy == tnc.PolicySingle {
			e.mu.Unlock()
			return "", ErrSingleOccupied
		}
		if group.policy != policy {
			e.mu.Unlock()
			return "", fmt.Errorf("%w: existing %s, requested %s", ErrPolicyMismatch, group.policy, policy)
		}
	}
	group.regs = append(group.regs, &requestRegistration{id: id, sink: sink})
	count := len(group.regs)
	e.mu.Unlock()

	e.logger.Debug("request registration added",
		"route", route,
		"policy", policy.String(),
		"registrations", count,
	)
	return id, nil
}

// UnregisterRequest removes a request registration, cancels every pending
// request bound to it, and deletes the group when it empties. The NEXT
// cursor is normalized back into bounds after the removal.
func (e *Engine) UnregisterRequest(route, id string) {
	e.mu.Lock()
	group, ok := e.groups[route]
	if !ok {
		e.mu.Unlock()
		return
	}
	for i, r := range group.regs {
		if r.id == id {
			group.regs = append(group.regs[:i], group.regs[i+1:]...)
			break
		}
	}
	if len(group.regs) == 0 {
		delete(e.groups, route)
		group.cursor = 0
	} else {
		group.cursor %= len(group.regs)
	}

	var cancelled []*Pending
	for key, p := range e.pendings {
		if p.Route == route && p.registrationId == id {
			cancelled = append(cancelled, p)
			delete(e.pendings, key)
		}
	}
	e.mu.Unlock()

	for _, p := range cancelled {
		if p.ctx.Err() == nil {
			p.result <- Outcome{Err: ErrRegistrationGone}
		}
	}
	if len(cancelled) > 0 {
		e.logger.Debug("cancelled pending requests for departed registration",
			"route", route,
			"count", len(cancelled),
		)
	}
}

// Dispatch allocates a request id, selects one registration per the group's
// policy, records the pending request, and writes the event to the chosen
// registration. The caller awaits Outcome.
func (e *Engine) Dispatch(ctx context.Context, ev *tnc.RequestEvent) (*Pending, error) {
	e.mu.Lock()
	group, ok := e.groups[ev.Route]
	if !ok {
		e.mu.Unlock()
		return nil, ErrNoRegistration
	}

	requestId := nextRequestId(group)
	chosen := group.selector(group)
	pending := &Pending{
		Route:          ev.Route,
		RequestId:      requestId,
		registrationId: chosen.id,
		ctx:            ctx,
		result:         make(chan Outcome, 1),
	}
	e.pendings[pendingKey{route: ev.Route, requestId: requestId}] = pending
	e.mu.Unlock()

	dispatched := &tnc.RequestEvent{
		Route:     ev.Route,
		RequestId: requestId,
		Data:      ev.Data,
	}
	if err := chosen.sink.Send(dispatched); err != nil {
		e.mu.Lock()
		delete(e.pendings, pendingKey{route: ev.Route, requestId: requestId})
		e.mu.Unlock()
		return nil, fmt.Errorf("writing request to registration: %w", err)
	}
	return pending, nil
}

// Abandon removes a pending request whose requester has gone away.
func (e *Engine) Abandon(route string, requestId uint32) {
	e.mu.Lock()
	delete(e.pendings, pendingKey{route: route, requestId: requestId})
	e.mu.Unlock()
}

// Respond correlates a response with its pending request. The requestId is
// stripped before delivery. A response for a departed requester is dropped
// with a zero routing count; a response with no pending entry is a caller
// bug surfaced as ErrNoPending.
func (e *Engine) Respond(ev *tnc.ResponseEvent) (int, error) {
	key := pendingKey{route: ev.Route, requestId: ev.RequestId}

	e.mu.Lock()
	pending, ok := e.pendings[key]
	if !ok {
		e.mu.Unlock()
		return 0, ErrNoPending
	}
	delete(e.pendings, key)
	e.mu.Unlock()

	if pending.ctx.Err() != nil {
		return 0, nil
	}

	pending.result <- Outcome{Response: &tnc.ResponseEvent{
		Route: ev.Route,
		Data:  ev.Data,
	}}
	return 1, nil
}

// nextRequestId issues the group's next id in [1, math.MaxUint32], wrapping
// past the max back to 1. Zero is never issued. Caller holds the engine lock.
func nextRequestId(group *requestGroup) uint32 {
	if group.lastRequestId == math.MaxUint32 {
		group.lastRequestId = 1
	} else {
		group.lastRequestId++
	}
	return group.lastRequestId
}
