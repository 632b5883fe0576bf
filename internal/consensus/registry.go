// ABOUTME: Raft node registry with the per-node connection state machine
// ABOUTME: Create/Connect/Disconnect/Stop transitions guarding controller access

package consensus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/flowpro/tnc-gateway/internal/observability"
	"github.com/flowpro/tnc-gateway/internal/raft"
	"github.com/flowpro/tnc-gateway/internal/store"
)

// ErrUnknownNode rejects operations on node ids that were never created.
var ErrUnknownNode = errors.New("Raft node with this id has not been created")

// ConnectionState is the life-cycle state of one raft node.
type ConnectionState int

const (
	StateCreated ConnectionState = iota
	StateConnecting
	StateConnected
	StateDisconnecting
	StateDisconnected
	StateStopping
	StateStopped
)

// String returns the state name used in error messages and metrics labels.
func (s ConnectionState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	case StateDisconnected:
		return "disconnected"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StateError reports an operation attempted in an incompatible state.
type StateError struct {
	State ConnectionState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("Raft node is currently %s", e.State)
}

// node is one registry entry.
type node struct {
	id                  string
	cluster             string
	shouldCreateCluster bool
	state               ConnectionState
	controller          *raft.Controller
}

// Registry multiplexes named raft nodes. Transitions serialize per entry
// under the registry mutex; controller calls run outside it.
type Registry struct {
	mu       sync.Mutex
	nodes    map[string]*node
	dbFolder string
	source   raft.ClientSource
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewRegistry creates an empty registry. source yields the live bus client
// for the raft transport; metrics may be nil.
func NewRegistry(dbFolder string, source raft.ClientSource, metrics *observability.Metrics, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		nodes:    make(map[string]*node),
		dbFolder: dbFolder,
		source:   source,
		metrics:  metrics,
		logger:   logger.With("component", "consensus"),
	}
}

// Create registers a fresh node in state created and returns its id.
func (r *Registry) Create(cluster string, shouldCreateCluster bool) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.nodes[id] = &node{
		id:                  id,
		cluster:             cluster,
		shouldCreateCluster: shouldCreateCluster,
		state:               StateCreated,
	}
	r.mu.Unlock()

	r.metrics.RaftNodeState("", StateCreated.String())
	r.logger.Info("raft node created", "node_id", id, "cluster", cluster, "create_cluster", shouldCreateCluster)
	return id
}

// setState moves a node between states and keeps the metrics buckets in sync.
// Caller holds the registry mutex.
func (r *Registry) setState(n *node, to ConnectionState) {
	from := n.state
	n.state = to
	r.metrics.RaftNodeState(from.String(), to.String())
}

// Connect drives created or stopped nodes through connecting into connected.
// A connect failure returns the node to its prior state.
func (r *Registry) Connect(ctx context.Context, id string) error {
	r.mu.Lock()
	n, ok := r.nodes[id]
	if !ok {
		r.mu.Unlock()
		return ErrUnknownNode
	}
	prior := n.state
	if prior != StateCreated && prior != StateStopped {
		r.mu.Unlock()
		return &StateError{State: prior}
	}
	r.setState(n, StateConnecting)
	r.mu.Unlock()

	st, err := store.OpenNodeStore(r.dbFolder, id)
	if err != nil {
		r.revert(n, prior)
		return err
	}

	ctrl := raft.NewController(raft.Config{
		Id:                  id,
		Cluster:             n.cluster,
		ShouldCreateCluster: n.shouldCreateCluster,
		Store:               st,
		Transport:           raft.NewBusTransport(r.source, n.cluster, id),
		Logger:              r.logger,
	})
	if err := ctrl.Connect(ctx); err != nil {
		st.Close()
		r.revert(n, prior)
		return err
	}

	r.mu.Lock()
	n.controller = ctrl
	r.setState(n, StateConnected)
	r.mu.Unlock()
	return nil
}

func (r *Registry) revert(n *node, to ConnectionState) {
	r.mu.Lock()
	r.setState(n, to)
	r.mu.Unlock()
}

// Controller returns the controller of a connected node.
func (r *Registry) Controller(id string) (*raft.Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[id]
	if !ok {
		return nil, ErrUnknownNode
	}
	if n.state != StateConnected {
		return nil, &StateError{State: n.state}
	}
	return n.controller, nil
}

// State reports a node's connection state.
func (r *Registry) State(id string) (ConnectionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[id]
	if !ok {
		return 0, ErrUnknownNode
	}
	return n.state, nil
}

// Disconnect removes a connected node from its cluster and deletes its
// persisted state. Disconnected is terminal.
func (r *Registry) Disconnect(ctx context.Context, id string) error {
	ctrl, err := r.begin(id, StateDisconnecting)
	if err != nil {
		return err
	}

	err = ctrl.Disconnect(ctx)

	r.mu.Lock()
	n := r.nodes[id]
	n.controller = nil
	r.setState(n, StateDisconnected)
	r.mu.Unlock()

	r.logger.Info("raft node disconnected", "node_id", id, "error", err)
	return err
}

// Stop halts a connected node while keeping its cluster membership and
// persisted state; the same id may reconnect later.
func (r *Registry) Stop(id string) error {
	ctrl, err := r.begin(id, StateStopping)
	if err != nil {
		return err
	}

	ctrl.Stop()

	r.mu.Lock()
	n := r.nodes[id]
	n.controller = nil
	r.setState(n, StateStopped)
	r.mu.Unlock()

	r.logger.Info("raft node stopped", "node_id", id)
	return nil
}

// begin moves a connected node into a transitional state and hands out its
// controller.
func (r *Registry) begin(id string, transitional ConnectionState) (*raft.Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[id]
	if !ok {
		return nil, ErrUnknownNode
	}
	if n.state != StateConnected {
		return nil, &StateError{State: n.state}
	}
	ctrl := n.controller
	r.setState(n, transitional)
	return ctrl, nil
}

// Shutdown halts every connected node in parallel, best-effort. Persisted
// databases stay on disk; other gateway instances may share them by node id.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	connected := make([]string, 0, len(r.nodes))
	for id, n := range r.nodes {
		if n.state == StateConnected {
			connected = append(connected, id)
		}
	}
	r.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for _, id := range connected {
		g.Go(func() error {
			if err := r.Stop(id); err != nil {
				r.logger.Warn("stopping raft node on shutdown", "node_id", id, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}
