// ABOUTME: Prometheus collectors for gateway traffic and registration gauges
// ABOUTME: Nil-safe recording helpers so tests can run without a registry

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the gateway's prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	pushesTotal       prometheus.Counter
	requestsTotal     prometheus.Counter
	busPublishesTotal prometheus.Counter
	busEventsTotal    prometheus.Counter

	pushRegistrations    prometheus.Gauge
	requestRegistrations prometheus.Gauge
	responseSinks        prometheus.Gauge
	raftNodes            *prometheus.GaugeVec
}

// New creates and registers the gateway collectors.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pushesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tnc_gateway_pushes_total",
			Help: "Push events routed to local registrations.",
		}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tnc_gateway_requests_total",
			Help: "Request events dispatched to local registrations.",
		}),
		busPublishesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tnc_gateway_bus_publishes_total",
			Help: "Events published to the bus.",
		}),
		busEventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tnc_gateway_bus_events_total",
			Help: "Events received from the bus and forwarded to observers.",
		}),
		pushRegistrations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tnc_gateway_push_registrations",
			Help: "Live push route registrations.",
		}),
		requestRegistrations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tnc_gateway_request_registrations",
			Help: "Live request route registrations.",
		}),
		responseSinks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tnc_gateway_response_sinks",
			Help: "Open call-return response sinks.",
		}),
		raftNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tnc_gateway_raft_nodes",
			Help: "Raft nodes by connection state.",
		}, []string{"state"}),
	}
	reg.MustRegister(
		m.pushesTotal,
		m.requestsTotal,
		m.busPublishesTotal,
		m.busEventsTotal,
		m.pushRegistrations,
		m.requestRegistrations,
		m.responseSinks,
		m.raftNodes,
	)
	return m
}

// PushRouted counts one push fan-out.
func (m *Metrics) PushRouted() {
	if m == nil {
		return
	}
	m.pushesTotal.Inc()
}

// RequestRouted counts one request dispatch.
func (m *Metrics) RequestRouted() {
	if m == nil {
		return
	}
	m.requestsTotal.Inc()
}

// BusPublished counts one outbound bus event.
func (m *Metrics) BusPublished() {
	if m == nil {
		return
	}
	m.busPublishesTotal.Inc()
}

// BusEventReceived counts one inbound bus event forwarded to an observer.
func (m *Metrics) BusEventReceived() {
	if m == nil {
		return
	}
	m.busEventsTotal.Inc()
}

func (m *Metrics) PushRegistrationAdded() {
	if m == nil {
		return
	}
	m.pushRegistrations.Inc()
}

func (m *Metrics) PushRegistrationRemoved() {
	if m == nil {
		return
	}
	m.pushRegistrations.Dec()
}

func (m *Metrics) RequestRegistrationAdded() {
	if m == nil {
		return
	}
	m.requestRegistrations.Inc()
}

func (m *Metrics) RequestRegistrationRemoved() {
	if m == nil {
		return
	}
	m.requestRegistrations.Dec()
}

func (m *Metrics) SinkOpened() {
	if m == nil {
		return
	}
	m.responseSinks.Inc()
}

func (m *Metrics) SinkReleased() {
	if m == nil {
		return
	}
	m.responseSinks.Dec()
}

// RaftNodeState moves one node between connection state buckets. Either
// label may be empty for creation and deletion.
func (m *Metrics) RaftNodeState(from, to string) {
	if m == nil {
		return
	}
	if from != "" {
		m.raftNodes.WithLabelValues(from).Dec()
	}
	if to != "" {
		m.raftNodes.WithLabelValues(to).Inc()
	}
}
