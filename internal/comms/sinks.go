// ABOUTME: Response sink registry for the Call-Return pattern
// ABOUTME: Keys bus-side responder functions by outward correlation id

package comms

import (
	"sync"

	"github.com/flowpro/tnc-gateway/internal/bus"
	"github.com/flowpro/tnc-gateway/internal/observability"
)

// responseSink holds the bus-side responder for one observed call. owner is
// the observing stream; when that stream ends its sinks are released.
type responseSink struct {
	owner   string
	respond func(bus.ReturnPayload) error
}

// SinkRegistry tracks open response sinks. A sink exists from the moment a
// call event is forwarded to a local observer until an explicit Complete or
// the observing stream's end, whichever comes first.
type SinkRegistry struct {
	mu      sync.Mutex
	sinks   map[string]*responseSink // correlationId -> sink
	metrics *observability.Metrics
}

// NewSinkRegistry creates an empty registry. Metrics may be nil.
func NewSinkRegistry(metrics *observability.Metrics) *SinkRegistry {
	return &SinkRegistry{
		sinks:   make(map[string]*responseSink),
		metrics: metrics,
	}
}

// Register stores the responder for a fresh correlation id.
func (r *SinkRegistry) Register(owner, correlationId string, respond func(bus.ReturnPayload) error) {
	r.mu.Lock()
	r.sinks[correlationId] = &responseSink{owner: owner, respond: respond}
	r.mu.Unlock()
	r.metrics.SinkOpened()
}

// Respond looks up the sink and invokes its responder. The boolean reports
// whether a sink existed; a missing sink is the expected late-response case.
func (r *SinkRegistry) Respond(correlationId string, payload bus.ReturnPayload) (bool, error) {
	r.mu.Lock()
	sink, ok := r.sinks[correlationId]
	r.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, sink.respond(payload)
}

// Has reports whether a sink is open for the correlation id.
func (r *SinkRegistry) Has(correlationId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sinks[correlationId]
	return ok
}

// Release removes the sink for a correlation id. Idempotent.
func (r *SinkRegistry) Release(correlationId string) {
	r.mu.Lock()
	_, ok := r.sinks[correlationId]
	if ok {
		delete(r.sinks, correlationId)
	}
	r.mu.Unlock()
	if ok {
		r.metrics.SinkReleased()
	}
}

// ReleaseOwner removes every sink registered by one observing stream.
func (r *SinkRegistry) ReleaseOwner(owner string) {
	r.mu.Lock()
	released := 0
	for id, sink := range r.sinks {
		if sink.owner == owner {
			delete(r.sinks, id)
			released++
		}
	}
	r.mu.Unlock()
	for i := 0; i < released; i++ {
		r.metrics.SinkReleased()
	}
}

// Len reports the number of open sinks.
func (r *SinkRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sinks)
}
