// ABOUTME: Raft message transport over the event bus
// ABOUTME: Per-node inbox topics plus a cluster broadcast topic for join requests

package raft

import (
	"encoding/json"
	"fmt"

	"github.com/flowpro/tnc-gateway/internal/bus"
)

// broadcastInbox is the pseudo-node id every cluster member observes for
// join requests.
const broadcastInbox = "all"

// wireMessage is the envelope for raft traffic on the bus. Kind "raft"
// carries a marshalled raftpb.Message; kind "join" announces a node that
// wants the leader to add it to the cluster.
type wireMessage struct {
	Kind   string `json:"kind"`
	From   string `json:"from"`
	RaftId uint64 `json:"raftId,omitempty"`
	Data   []byte `json:"data,omitempty"`
}

const (
	kindRaft = "raft"
	kindJoin = "join"
)

// Transport moves raft envelopes between cluster members. Receive channels
// close when the underlying bus stops; callers re-observe to resume.
type Transport interface {
	// Send delivers an envelope to one member's inbox.
	Send(to string, msg wireMessage) error
	// Broadcast delivers an envelope to every member's broadcast inbox.
	Broadcast(msg wireMessage) error
	// Receive observes this node's inbox.
	Receive() (<-chan wireMessage, func(), error)
	// ReceiveBroadcast observes the cluster broadcast inbox.
	ReceiveBroadcast() (<-chan wireMessage, func(), error)
}

// BusClient is the slice of the bus adapter the transport consumes. The
// source function indirection survives bus reconfiguration: each call sees
// the currently live client.
type BusClient interface {
	PublishRaft(cluster, to string, data []byte) error
	ObserveRaft(cluster, nodeId string) (<-chan []byte, func(), error)
}

// ClientSource yields the current bus client, or nil while the bus is down.
type ClientSource func() BusClient

// BusTransport implements Transport on the gateway's bus client.
type BusTransport struct {
	source  ClientSource
	cluster string
	nodeId  string
}

// NewBusTransport creates a transport for one node in one cluster.
func NewBusTransport(source ClientSource, cluster, nodeId string) *BusTransport {
	return &BusTransport{source: source, cluster: cluster, nodeId: nodeId}
}

func (t *BusTransport) publish(to string, msg wireMessage) error {
	client := t.source()
	if client == nil {
		return bus.ErrStopped
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding raft envelope: %w", err)
	}
	return client.PublishRaft(t.cluster, to, data)
}

func (t *BusTransport) Send(to string, msg wireMessage) error {
	return t.publish(to, msg)
}

func (t *BusTransport) Broadcast(msg wireMessage) error {
	return t.publish(broadcastInbox, msg)
}

func (t *BusTransport) observe(inbox string) (<-chan wireMessage, func(), error) {
	client := t.source()
	if client == nil {
		return nil, nil, bus.ErrStopped
	}
	raw, cancel, err := client.ObserveRaft(t.cluster, inbox)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan wireMessage, 64)
	go func() {
		defer close(out)
		for data := range raw {
			var msg wireMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			out <- msg
		}
	}()
	return out, cancel, nil
}

func (t *BusTransport) Receive() (<-chan wireMessage, func(), error) {
	return t.observe(t.nodeId)
}

func (t *BusTransport) ReceiveBroadcast() (<-chan wireMessage, func(), error) {
	return t.observe(broadcastInbox)
}
