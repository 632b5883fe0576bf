// ABOUTME: Tests for the raft controller over an in-memory transport
// ABOUTME: Single-node commit and stop flow plus cluster join, replication, and disconnect

package raft

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	etcdraft "go.etcd.io/raft/v3"

	"github.com/flowpro/tnc-gateway/internal/store"
)

type nopLogger struct{}

func (nopLogger) Debug(...any)            {}
func (nopLogger) Debugf(string, ...any)   {}
func (nopLogger) Info(...any)             {}
func (nopLogger) Infof(string, ...any)    {}
func (nopLogger) Warning(...any)          {}
func (nopLogger) Warningf(string, ...any) {}
func (nopLogger) Error(...any)            {}
func (nopLogger) Errorf(string, ...any)   {}
func (nopLogger) Fatal(...any)            {}
func (nopLogger) Fatalf(string, ...any)   {}
func (nopLogger) Panic(...any)            {}
func (nopLogger) Panicf(string, ...any)   {}

func init() {
	etcdraft.SetLogger(nopLogger{})
}

// memHub connects in-process transports the way the bus would.
type memHub struct {
	mu        sync.Mutex
	inboxes   map[string][]chan wireMessage
	broadcast []chan wireMessage
}

func newMemHub() *memHub {
	return &memHub{inboxes: make(map[string][]chan wireMessage)}
}

type memTransport struct {
	hub    *memHub
	nodeId string
}

func (h *memHub) transportFor(nodeId string) *memTransport {
	return &memTransport{hub: h, nodeId: nodeId}
}

func (t *memTransport) Send(to string, msg wireMessage) error {
	t.hub.mu.Lock()
	targets := append([]chan wireMessage(nil), t.hub.inboxes[to]...)
	t.hub.mu.Unlock()
	for _, ch := range targets {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

func (t *memTransport) Broadcast(msg wireMessage) error {
	t.hub.mu.Lock()
	targets := append([]chan wireMessage(nil), t.hub.broadcast...)
	t.hub.mu.Unlock()
	for _, ch := range targets {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

func (t *memTransport) Receive() (<-chan wireMessage, func(), error) {
	ch := make(chan wireMessage, 1024)
	t.hub.mu.Lock()
	t.hub.inboxes[t.nodeId] = append(t.hub.inboxes[t.nodeId], ch)
	t.hub.mu.Unlock()
	return ch, func() {}, nil
}

func (t *memTransport) ReceiveBroadcast() (<-chan wireMessage, func(), error) {
	ch := make(chan wireMessage, 1024)
	t.hub.mu.Lock()
	t.hub.broadcast = append(t.hub.broadcast, ch)
	t.hub.mu.Unlock()
	return ch, func() {}, nil
}

func newTestController(t *testing.T, hub *memHub, id string, create bool) *Controller {
	t.Helper()
	st, err := store.OpenNodeStore(t.TempDir(), id)
	require.NoError(t, err)
	return NewController(Config{
		Id:                  id,
		Cluster:             "test-cluster",
		ShouldCreateCluster: create,
		Store:               st,
		Transport:           hub.transportFor(id),
	})
}

func TestController_SingleNodeProposeAndRead(t *testing.T) {
	hub := newMemHub()
	id := uuid.NewString()
	c := newTestController(t, hub, id, true)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Stop()

	require.NoError(t, c.Propose(ctx, Command{Op: OpPut, Key: "foo", Value: json.RawMessage(`42`)}))

	state, err := c.ReadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(42), state["foo"])

	assert.Equal(t, []string{id}, c.Members())
}

func TestController_ObserveStateSeesCommits(t *testing.T) {
	hub := newMemHub()
	c := newTestController(t, hub, uuid.NewString(), true)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Stop()

	states, cancelObs := c.ObserveState()
	defer cancelObs()

	require.NoError(t, c.Propose(ctx, Command{Op: OpPut, Key: "k", Value: json.RawMessage(`"v"`)}))

	select {
	case state := <-states:
		assert.Equal(t, "v", state["k"])
	case <-time.After(10 * time.Second):
		t.Fatal("no state notification")
	}
}

func TestController_ProposeAfterStopFails(t *testing.T) {
	hub := newMemHub()
	c := newTestController(t, hub, uuid.NewString(), true)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	c.Stop()

	err := c.Propose(context.Background(), Command{Op: OpNoop})
	assert.Error(t, err)
}

func TestCluster_JoinReplicateAndDisconnect(t *testing.T) {
	if testing.Short() {
		t.Skip("cluster test is slow")
	}

	hub := newMemHub()
	creatorId := uuid.NewString()
	joinerId := uuid.NewString()
	thirdId := uuid.NewString()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	creator := newTestController(t, hub, creatorId, true)
	require.NoError(t, creator.Connect(ctx))
	defer creator.Stop()

	// The creator must lead before it can admit joiners; a committed
	// proposal implies an elected leader.
	require.NoError(t, creator.Propose(ctx, Command{Op: OpNoop}))

	joiner := newTestController(t, hub, joinerId, false)
	require.NoError(t, joiner.Connect(ctx))
	defer joiner.Stop()

	third := newTestController(t, hub, thirdId, false)
	require.NoError(t, third.Connect(ctx))

	waitFor(t, 30*time.Second, func() bool { return len(creator.Members()) == 3 })
	assert.ElementsMatch(t, []string{creatorId, joinerId, thirdId}, creator.Members())

	// A value put through any node becomes visible to the others.
	require.NoError(t, creator.Propose(ctx, Command{Op: OpPut, Key: "foo", Value: json.RawMessage(`42`)}))
	waitFor(t, 30*time.Second, func() bool {
		state, err := joiner.ReadState(ctx)
		return err == nil && state["foo"] == float64(42)
	})

	// Disconnect removes the third node from the configuration.
	require.NoError(t, third.Disconnect(ctx))
	waitFor(t, 30*time.Second, func() bool { return len(creator.Members()) == 2 })
	assert.ElementsMatch(t, []string{creatorId, joinerId}, creator.Members())
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
