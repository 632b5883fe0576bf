// ABOUTME: MQTT bus client: connection lifecycle, typed observations, publishes
// ABOUTME: Maps Channel and Call-Return event patterns onto namespaced topics

package bus

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/flowpro/tnc-gateway/internal/codec"
)

// Client errors
var (
	// ErrOffline means the bus is not connected and fail-fast is on.
	ErrOffline = errors.New("bus is offline")

	// ErrStopped means the client has been stopped and cannot be reused.
	ErrStopped = errors.New("bus client is stopped")

	// ErrNotStarted means Start has not been called yet.
	ErrNotStarted = errors.New("bus client is not started")
)

const (
	// qosAtLeastOnce is used for all bus traffic; the broker preserves
	// per-publisher ordering at this level.
	qosAtLeastOnce = 1

	// subscriptionBuffer is the per-observer raw message buffer. Delivery
	// blocks rather than drops when it fills so per-responder ordering
	// survives backpressure.
	subscriptionBuffer = 64

	disconnectQuiesceMs = 250
)

// Options configures one bus client instance.
type Options struct {
	Url               string
	Namespace         string
	Identity          Identity
	Username          string
	Password          string
	TlsCert           string
	TlsKey            string
	VerifyServerCert  bool
	FailFastIfOffline bool
}

// message is one raw inbound bus message.
type message struct {
	topic   string
	payload []byte
}

// subscription is the raw delivery leg of one observer. The paho router
// delivers into ch; a per-observer forwarder goroutine decodes and hands the
// event to the typed outward channel. stop is idempotent and releases both.
type subscription struct {
	id     string
	filter string
	ch     chan message
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) deliver(topic string, payload []byte) {
	select {
	case s.ch <- message{topic: topic, payload: payload}:
	case <-s.done:
	}
}

func (s *subscription) stop() {
	s.once.Do(func() { close(s.done) })
}

// Client is the gateway's connection to the MQTT event bus. One client
// carries one agent identity; changing identity requires a new client.
type Client struct {
	opts   Options
	topics topics
	logger *slog.Logger

	conn mqtt.Client

	mu        sync.Mutex
	started   bool
	stopped   bool
	online    bool
	subs      map[string]map[string]*subscription // filter -> sub id -> sub
	onlineObs map[string]chan bool
	pending   []pendingPublish
}

type pendingPublish struct {
	topic    string
	payload  []byte
	retained bool
}

// New creates a bus client for the given options. Pass nil logger for default.
func New(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		opts:      opts,
		topics:    topics{namespace: opts.Namespace},
		logger:    logger.With("component", "bus", "agent_id", opts.Identity.Id),
		subs:      make(map[string]map[string]*subscription),
		onlineObs: make(map[string]chan bool),
	}
}

// Identity returns the agent identity this client advertises.
func (c *Client) Identity() Identity {
	return c.opts.Identity
}

// FailFast reports whether publish and observe operations fail immediately
// while the bus is offline.
func (c *Client) FailFast() bool {
	return c.opts.FailFastIfOffline
}

// Online reports whether the client currently holds a broker connection.
func (c *Client) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// Start connects to the broker and begins advertising the agent identity.
// Connection establishment is retried in the background; Start does not wait
// for the broker to come up.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return ErrStopped
	}
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	if c.opts.Url == "" {
		return fmt.Errorf("bus url is empty")
	}

	tlsCfg, err := buildTLSConfig(c.opts.TlsCert, c.opts.TlsKey, c.opts.VerifyServerCert)
	if err != nil {
		return fmt.Errorf("building bus TLS config: %w", err)
	}

	mo := mqtt.NewClientOptions()
	mo.AddBroker(c.opts.Url)
	mo.SetClientID(c.opts.Identity.Id)
	if c.opts.Username != "" {
		mo.SetUsername(c.opts.Username)
		mo.SetPassword(c.opts.Password)
	}
	if tlsCfg != nil {
		mo.SetTLSConfig(tlsCfg)
	}
	mo.SetAutoReconnect(true)
	mo.SetConnectRetry(true)
	mo.SetOrderMatters(true)
	// An empty retained will clears the identity topic so trackers see the
	// agent leave on abnormal death.
	mo.SetBinaryWill(c.topics.identity(c.opts.Identity.Id), []byte{}, qosAtLeastOnce, true)
	mo.SetOnConnectHandler(c.handleConnect)
	mo.SetConnectionLostHandler(c.handleConnectionLost)

	c.conn = mqtt.NewClient(mo)
	c.conn.Connect()

	c.logger.Info("bus client starting", "url", c.opts.Url, "namespace", c.opts.Namespace)
	return nil
}

// handleConnect restores subscriptions, advertises identity, flushes queued
// publishes, and notifies online observers.
func (c *Client) handleConnect(conn mqtt.Client) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.online = true
	filters := make([]string, 0, len(c.subs))
	for f := range c.subs {
		filters = append(filters, f)
	}
	queued := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, f := range filters {
		conn.Subscribe(f, qosAtLeastOnce, c.dispatcher(f))
	}

	identity, err := json.Marshal(c.opts.Identity)
	if err == nil {
		conn.Publish(c.topics.identity(c.opts.Identity.Id), qosAtLeastOnce, true, identity)
	}

	for _, p := range queued {
		conn.Publish(p.topic, qosAtLeastOnce, p.retained, p.payload)
	}

	c.notifyOnline(true)
	c.logger.Info("bus connected", "resubscribed", len(filters), "flushed", len(queued))
}

func (c *Client) handleConnectionLost(_ mqtt.Client, err error) {
	c.mu.Lock()
	c.online = false
	c.mu.Unlock()
	c.notifyOnline(false)
	c.logger.Warn("bus connection lost", "error", err)
}

// Stop clears the retained identity, tears down every observation, and
// disconnects. All outward observation channels close; services use that
// single signal to clean-end their streams.
func (c *Client) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	wasOnline := c.online
	c.online = false
	subs := c.subs
	c.subs = make(map[string]map[string]*subscription)
	onlineObs := c.onlineObs
	c.onlineObs = make(map[string]chan bool)
	c.pending = nil
	c.mu.Unlock()

	for _, set := range subs {
		for _, s := range set {
			s.stop()
		}
	}
	for _, ch := range onlineObs {
		close(ch)
	}

	if c.conn != nil {
		if wasOnline {
			// Explicit leave: clear the retained identity before the will
			// would (the will only fires on abnormal disconnect).
			tok := c.conn.Publish(c.topics.identity(c.opts.Identity.Id), qosAtLeastOnce, true, []byte{})
			tok.Wait()
		}
		c.conn.Disconnect(disconnectQuiesceMs)
	}
	c.logger.Info("bus client stopped")
}

// ObserveOnline reports the current connection state followed by every edge.
// State notifications coalesce for slow observers.
func (c *Client) ObserveOnline() (<-chan bool, func()) {
	id := uuid.NewString()
	ch := make(chan bool, 4)

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	ch <- c.online
	c.onlineObs[id] = ch
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if cur, ok := c.onlineObs[id]; ok {
			delete(c.onlineObs, id)
			close(cur)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Client) notifyOnline(online bool) {
	c.mu.Lock()
	targets := make([]chan bool, 0, len(c.onlineObs))
	for _, ch := range c.onlineObs {
		targets = append(targets, ch)
	}
	c.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- online:
		default:
		}
	}
}

// addObserver registers an observer for a topic filter, subscribing on the
// broker when the filter is new. Offline registration is allowed; the
// subscription is established on (re)connect.
func (c *Client) addObserver(filter string) (*subscription, error) {
	sub := &subscription{
		id:     uuid.NewString(),
		filter: filter,
		ch:     make(chan message, subscriptionBuffer),
		done:   make(chan struct{}),
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil, ErrStopped
	}
	if !c.started {
		c.mu.Unlock()
		return nil, ErrNotStarted
	}
	if !c.online && c.opts.FailFastIfOffline {
		c.mu.Unlock()
		return nil, ErrOffline
	}
	set, exists := c.subs[filter]
	if !exists {
		set = make(map[string]*subscription)
		c.subs[filter] = set
	}
	set[sub.id] = sub
	online := c.online
	c.mu.Unlock()

	if !exists && online {
		c.conn.Subscribe(filter, qosAtLeastOnce, c.dispatcher(filter))
	}
	return sub, nil
}

// removeObserver detaches an observer and unsubscribes the filter when the
// last observer leaves.
func (c *Client) removeObserver(sub *subscription) {
	sub.stop()

	c.mu.Lock()
	last := false
	if set, exists := c.subs[sub.filter]; exists {
		delete(set, sub.id)
		if len(set) == 0 {
			delete(c.subs, sub.filter)
			last = true
		}
	}
	online := c.online && !c.stopped
	c.mu.Unlock()

	if last && online {
		c.conn.Unsubscribe(sub.filter)
	}
}

// dispatcher fans one filter's inbound messages out to its observers.
// Delivery blocks on a full observer buffer so ordering is never traded for
// throughput; a departing observer unblocks via its done signal.
func (c *Client) dispatcher(filter string) mqtt.MessageHandler {
	return func(_ mqtt.Client, m mqtt.Message) {
		c.mu.Lock()
		set := c.subs[filter]
		targets := make([]*subscription, 0, len(set))
		for _, s := range set {
			targets = append(targets, s)
		}
		c.mu.Unlock()

		for _, s := range targets {
			s.deliver(m.Topic(), m.Payload())
		}
	}
}

// publish dispatches one payload, queueing while offline unless fail-fast
// is on.
func (c *Client) publish(topic string, payload []byte, retained bool) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return ErrStopped
	}
	if !c.started {
		c.mu.Unlock()
		return ErrNotStarted
	}
	if !c.online {
		if c.opts.FailFastIfOffline {
			c.mu.Unlock()
			return ErrOffline
		}
		c.pending = append(c.pending, pendingPublish{topic: topic, payload: payload, retained: retained})
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	tok := c.conn.Publish(topic, qosAtLeastOnce, retained, payload)
	go func() {
		tok.Wait()
		if err := tok.Error(); err != nil {
			c.logger.Warn("publish failed", "topic", topic, "error", err)
		}
	}()
	return nil
}

// PublishChannel publishes one event on a channel id.
func (c *Client) PublishChannel(id string, obj codec.Object) error {
	obj.SourceId = c.opts.Identity.Id
	payload, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("encoding channel event: %w", err)
	}
	return c.publish(c.topics.channel(id), payload, false)
}

// ObserveChannel subscribes to a channel id. The returned channel closes when
// the observation is cancelled or the client stops.
func (c *Client) ObserveChannel(id string) (<-chan ChannelEvent, func(), error) {
	sub, err := c.addObserver(c.topics.channel(id))
	if err != nil {
		return nil, nil, err
	}

	out := make(chan ChannelEvent, subscriptionBuffer)
	go func() {
		defer close(out)
		for {
			select {
			case m := <-sub.ch:
				var obj codec.Object
				if err := json.Unmarshal(m.payload, &obj); err != nil {
					c.logger.Warn("discarding malformed channel event", "topic", m.topic, "error", err)
					continue
				}
				select {
				case out <- ChannelEvent{Id: id, Object: obj}:
				case <-sub.done:
					return
				}
			case <-sub.done:
				return
			}
		}
	}()

	return out, func() { c.removeObserver(sub) }, nil
}

// Call is one outbound call with its stream of returns. Returns flow until
// Cancel is called or the client stops; a responder's Complete releases its
// sink on the observing side but does not end this stream.
type Call struct {
	CorrelationId string
	returns       chan ReturnEvent
	cancel        func()
	once          sync.Once
}

// Returns is the stream of inbound returns for this call.
func (call *Call) Returns() <-chan ReturnEvent {
	return call.returns
}

// Cancel stops observing returns and releases the reply topic.
func (call *Call) Cancel() {
	call.once.Do(call.cancel)
}

// PublishCall publishes one call and subscribes its private reply topic
// before dispatch so no early return can be lost.
func (c *Client) PublishCall(operation string, obj codec.Object) (*Call, error) {
	correlationId := uuid.NewString()
	replyTo := c.topics.ret(correlationId)

	sub, err := c.addObserver(replyTo)
	if err != nil {
		return nil, err
	}

	out := make(chan ReturnEvent, subscriptionBuffer)
	go func() {
		defer close(out)
		for {
			select {
			case m := <-sub.ch:
				var env returnEnvelope
				if err := json.Unmarshal(m.payload, &env); err != nil {
					c.logger.Warn("discarding malformed return event", "correlation_id", correlationId, "error", err)
					continue
				}
				ev := ReturnEvent{
					CorrelationId:  correlationId,
					Object:         codec.Object{ObjectType: env.ObjectType, Value: env.Value},
					Error:          env.Error,
					SourceId:       env.SourceId,
					SequenceNumber: env.SequenceNumber,
				}
				select {
				case out <- ev:
				case <-sub.done:
					return
				}
			case <-sub.done:
				return
			}
		}
	}()

	env := callEnvelope{
		ObjectType:    obj.ObjectType,
		Value:         obj.Value,
		SourceId:      c.opts.Identity.Id,
		CorrelationId: correlationId,
		ReplyTo:       replyTo,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		c.removeObserver(sub)
		return nil, fmt.Errorf("encoding call event: %w", err)
	}
	if err := c.publish(c.topics.call(operation), payload, false); err != nil {
		c.removeObserver(sub)
		return nil, err
	}

	return &Call{
		CorrelationId: correlationId,
		returns:       out,
		cancel:        func() { c.removeObserver(sub) },
	}, nil
}

// ObserveCall subscribes to a call operation. Each inbound call carries a
// Respond function bound to the caller's reply topic; one observer's returns
// keep their emission order via a per-call sequence number.
func (c *Client) ObserveCall(operation string) (<-chan CallEvent, func(), error) {
	sub, err := c.addObserver(c.topics.call(operation))
	if err != nil {
		return nil, nil, err
	}

	out := make(chan CallEvent, subscriptionBuffer)
	go func() {
		defer close(out)
		for {
			select {
			case m := <-sub.ch:
				var env callEnvelope
				if err := json.Unmarshal(m.payload, &env); err != nil {
					c.logger.Warn("discarding malformed call event", "operation", operation, "error", err)
					continue
				}
				ev := c.inboundCall(operation, env)
				select {
				case out <- ev:
				case <-sub.done:
					return
				}
			case <-sub.done:
				return
			}
		}
	}()

	return out, func() { c.removeObserver(sub) }, nil
}

func (c *Client) inboundCall(operation string, env callEnvelope) CallEvent {
	var seq atomic.Int32
	replyTo := env.ReplyTo
	correlationId := env.CorrelationId
	return CallEvent{
		Operation:     operation,
		Object:        codec.Object{ObjectType: env.ObjectType, Value: env.Value, SourceId: env.SourceId},
		SourceId:      env.SourceId,
		CorrelationId: correlationId,
		Respond: func(rp ReturnPayload) error {
			renv := returnEnvelope{
				ObjectType:     rp.Object.ObjectType,
				Value:          rp.Object.Value,
				Error:          rp.Error,
				SourceId:       c.opts.Identity.Id,
				SequenceNumber: seq.Add(1) - 1,
				CorrelationId:  correlationId,
			}
			payload, err := json.Marshal(renv)
			if err != nil {
				return fmt.Errorf("encoding return event: %w", err)
			}
			return c.publish(replyTo, payload, false)
		},
	}
}

// ObserveAgents subscribes to identity presence. Retained identity messages
// replay on every new subscription, so each observer receives a join for
// every currently known agent before live edges.
func (c *Client) ObserveAgents() (<-chan AgentEvent, func(), error) {
	sub, err := c.addObserver(c.topics.identityFilter())
	if err != nil {
		return nil, nil, err
	}

	out := make(chan AgentEvent, subscriptionBuffer)
	go func() {
		defer close(out)
		for {
			select {
			case m := <-sub.ch:
				ev, ok := c.identityEvent(m)
				if !ok {
					continue
				}
				select {
				case out <- ev:
				case <-sub.done:
					return
				}
			case <-sub.done:
				return
			}
		}
	}()

	return out, func() { c.removeObserver(sub) }, nil
}

func (c *Client) identityEvent(m message) (AgentEvent, bool) {
	agentId := c.topics.identityIdFromTopic(m.topic)
	if agentId == "" {
		return AgentEvent{}, false
	}
	if len(m.payload) == 0 {
		return AgentEvent{
			Identity: Identity{Id: agentId},
			Change:   AgentLeave,
			Local:    agentId == c.opts.Identity.Id,
		}, true
	}
	var identity Identity
	if err := json.Unmarshal(m.payload, &identity); err != nil {
		c.logger.Warn("discarding malformed identity", "topic", m.topic, "error", err)
		return AgentEvent{}, false
	}
	return AgentEvent{
		Identity: identity,
		Change:   AgentJoin,
		Local:    identity.Id == c.opts.Identity.Id,
	}, true
}

// PublishRaft sends one raft protocol message to a cluster peer.
func (c *Client) PublishRaft(cluster, to string, data []byte) error {
	return c.publish(c.topics.raft(cluster, to), data, false)
}

// ObserveRaft subscribes to raft protocol messages addressed to one node.
func (c *Client) ObserveRaft(cluster, nodeId string) (<-chan []byte, func(), error) {
	sub, err := c.addObserver(c.topics.raft(cluster, nodeId))
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []byte, subscriptionBuffer)
	go func() {
		defer close(out)
		for {
			select {
			case m := <-sub.ch:
				select {
				case out <- m.payload:
				case <-sub.done:
					return
				}
			case <-sub.done:
				return
			}
		}
	}()

	return out, func() { c.removeObserver(sub) }, nil
}

// buildTLSConfig assembles the bus TLS configuration. Cert and key accept
// either PEM text or file paths.
func buildTLSConfig(cert, key string, verify bool) (*tls.Config, error) {
	if cert == "" && key == "" && verify {
		return nil, nil
	}
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !verify,
	}
	if cert != "" || key != "" {
		pair, err := loadKeyPair(cert, key)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{pair}
	}
	return cfg, nil
}

func loadKeyPair(cert, key string) (tls.Certificate, error) {
	if strings.Contains(cert, "-----BEGIN") {
		return tls.X509KeyPair([]byte(cert), []byte(key))
	}
	return tls.LoadX509KeyPair(cert, key)
}
