// ABOUTME: Raft controller for one consensus node on go.etcd.io/raft/v3
// ABOUTME: Ready loop, bus transport, join handling, proposal wait list

package raft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	etcdraft "go.etcd.io/raft/v3"
	"go.etcd.io/raft/v3/raftpb"

	"github.com/flowpro/tnc-gateway/internal/store"
)

// Controller errors, translated by the consensus gateway into its gRPC
// taxonomy.
var (
	// ErrTooManyQueuedProposals rejects proposals past the queue cap.
	ErrTooManyQueuedProposals = errors.New("too many queued up input proposals")

	// ErrDisconnectedBeforeComplete fails operations interrupted by a
	// disconnect or stop.
	ErrDisconnectedBeforeComplete = errors.New("node disconnected before operation completed")

	// ErrNotConnected rejects operations outside the connected state.
	ErrNotConnected = errors.New("operation not supported in current connection state")
)

const (
	maxQueuedProposals = 1000

	tickInterval      = 100 * time.Millisecond
	electionTicks     = 10
	heartbeatTicks    = 1
	maxInflightMsgs   = 256
	maxMessageSize    = 1024 * 1024
	snapshotThreshold = 1000
	joinRetryInterval = time.Second

	observerBuffer = 64
)

// Config assembles one controller.
type Config struct {
	Id                  string
	Cluster             string
	ShouldCreateCluster bool
	Store               *store.NodeStore
	Transport           Transport
	Logger              *slog.Logger
}

// snapshotPayload is the application data inside a raft snapshot: the state
// machine plus the raft-id to node-id mapping (conf state carries only the
// numeric ids).
type snapshotPayload struct {
	State   json.RawMessage   `json:"state"`
	Members map[uint64]string `json:"members"`
}

// Controller drives one raft node: it owns the ready loop, applies committed
// entries to the key-value state machine, moves messages over the bus, and
// admits joiners when leading.
type Controller struct {
	cfg    Config
	raftId uint64
	logger *slog.Logger

	node    etcdraft.Node
	storage *etcdraft.MemoryStorage
	sm      *StateMachine

	mu            sync.Mutex
	members       map[uint64]string
	confState     raftpb.ConfState
	waits         map[string]chan error
	queued        int
	stateObs      map[string]chan map[string]any
	confObs       map[string]chan []string
	appliedIndex  uint64
	snapshotIndex uint64

	removedCh chan struct{} // closed when a conf change removes this node
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewController creates a controller; Connect starts it.
func NewController(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		cfg:       cfg,
		raftId:    raftIdFor(cfg.Id),
		logger:    cfg.Logger.With("component", "raft", "node_id", cfg.Id, "cluster", cfg.Cluster),
		sm:        NewStateMachine(),
		members:   make(map[uint64]string),
		waits:     make(map[string]chan error),
		stateObs:  make(map[string]chan map[string]any),
		confObs:   make(map[string]chan []string),
		removedCh: make(chan struct{}),
		stopCh:    make(chan struct{}),
	}
}

// raftIdFor derives the numeric raft id from a node uuid. Raft reserves 0.
func raftIdFor(nodeId string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(nodeId))
	id := h.Sum64()
	if id == 0 {
		id = 1
	}
	return id
}

// Connect restores persisted state, starts the raft node, and brings up the
// loops. A cluster creator bootstraps itself; a joiner announces itself on
// the cluster broadcast inbox and waits to be admitted by the leader.
func (c *Controller) Connect(ctx context.Context) error {
	hasState, err := c.cfg.Store.HasState()
	if err != nil {
		return err
	}

	c.storage = etcdraft.NewMemoryStorage()
	if hasState {
		if err := c.restore(); err != nil {
			return err
		}
	}

	rc := &etcdraft.Config{
		ID:              c.raftId,
		ElectionTick:    electionTicks,
		HeartbeatTick:   heartbeatTicks,
		Storage:         c.storage,
		MaxSizePerMsg:   maxMessageSize,
		MaxInflightMsgs: maxInflightMsgs,
		CheckQuorum:     true,
		PreVote:         true,
	}

	join := false
	switch {
	case hasState:
		c.node = etcdraft.RestartNode(rc)
	case c.cfg.ShouldCreateCluster:
		c.node = etcdraft.StartNode(rc, []etcdraft.Peer{{ID: c.raftId, Context: []byte(c.cfg.Id)}})
	default:
		c.node = etcdraft.RestartNode(rc)
		join = true
	}

	c.wg.Add(3)
	go c.runReady()
	go c.runReceive()
	go c.runReceiveBroadcast()

	if join {
		if err := c.awaitAdmission(ctx); err != nil {
			c.Stop()
			return err
		}
	}

	c.logger.Info("raft node connected", "create", c.cfg.ShouldCreateCluster, "restart", hasState)
	return nil
}

// restore loads the persisted snapshot, hard state, and entries into the
// in-memory raft storage.
func (c *Controller) restore() error {
	hs, snap, entries, err := c.cfg.Store.Load()
	if err != nil {
		return err
	}
	if !etcdraft.IsEmptySnap(snap) {
		if err := c.storage.ApplySnapshot(snap); err != nil {
			return fmt.Errorf("applying persisted snapshot: %w", err)
		}
		if err := c.applySnapshotPayload(snap); err != nil {
			return err
		}
		c.appliedIndex = snap.Metadata.Index
		c.snapshotIndex = snap.Metadata.Index
	}
	if !etcdraft.IsEmptyHardState(hs) {
		if err := c.storage.SetHardState(hs); err != nil {
			return fmt.Errorf("restoring hard state: %w", err)
		}
	}
	if err := c.storage.Append(entries); err != nil {
		return fmt.Errorf("restoring entries: %w", err)
	}
	return nil
}

func (c *Controller) applySnapshotPayload(snap raftpb.Snapshot) error {
	var payload snapshotPayload
	if len(snap.Data) > 0 {
		if err := json.Unmarshal(snap.Data, &payload); err != nil {
			return fmt.Errorf("decoding snapshot payload: %w", err)
		}
	}
	if err := c.sm.Restore(payload.State); err != nil {
		return err
	}
	c.mu.Lock()
	if payload.Members != nil {
		c.members = payload.Members
	}
	c.confState = raftpb.ConfState{Voters: snap.Metadata.ConfState.Voters}
	c.mu.Unlock()
	return nil
}

// awaitAdmission broadcasts join requests until a committed conf change
// includes this node.
func (c *Controller) awaitAdmission(ctx context.Context) error {
	ticker := time.NewTicker(joinRetryInterval)
	defer ticker.Stop()

	request := wireMessage{Kind: kindJoin, From: c.cfg.Id, RaftId: c.raftId}
	if err := c.cfg.Transport.Broadcast(request); err != nil {
		c.logger.Warn("join request failed", "error", err)
	}
	for {
		if c.isMember(c.raftId) {
			return nil
		}
		select {
		case <-ticker.C:
			if err := c.cfg.Transport.Broadcast(request); err != nil {
				c.logger.Warn("join request failed", "error", err)
			}
		case <-ctx.Done():
			return fmt.Errorf("awaiting cluster admission: %w", ctx.Err())
		case <-c.stopCh:
			return ErrDisconnectedBeforeComplete
		}
	}
}

func (c *Controller) isMember(raftId uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.members[raftId]
	return ok
}

// Propose replicates one command and waits for it to commit on this node.
func (c *Controller) Propose(ctx context.Context, cmd Command) error {
	if cmd.ProposalId == "" {
		cmd.ProposalId = uuid.NewString()
	}
	cmd.Origin = c.cfg.Id

	c.mu.Lock()
	if c.queued >= maxQueuedProposals {
		c.mu.Unlock()
		return ErrTooManyQueuedProposals
	}
	c.queued++
	wait := make(chan error, 1)
	c.waits[cmd.ProposalId] = wait
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.waits, cmd.ProposalId)
		c.queued--
		c.mu.Unlock()
	}()

	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encoding command: %w", err)
	}
	// Proposals drop while no leader is known; retry until one emerges or
	// the caller gives up.
	for {
		err := c.node.Propose(ctx, data)
		if err == nil {
			break
		}
		if !errors.Is(err, etcdraft.ErrProposalDropped) {
			return err
		}
		if !c.sleepOrStop(tickInterval) {
			return ErrDisconnectedBeforeComplete
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	select {
	case err := <-wait:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopCh:
		return ErrDisconnectedBeforeComplete
	}
}

// ReadState proposes an internal no-op and returns the state after it
// commits, guaranteeing the result is at least as fresh as the call.
func (c *Controller) ReadState(ctx context.Context) (map[string]any, error) {
	if err := c.Propose(ctx, Command{Op: OpNoop}); err != nil {
		return nil, err
	}
	return c.sm.Snapshot(), nil
}

// Members returns the node ids of the current cluster members, sorted.
func (c *Controller) Members() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.members))
	for _, id := range c.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ObserveState registers an observer notified with a state snapshot after
// every committed change. Slow observers miss intermediate snapshots but
// always receive the latest.
func (c *Controller) ObserveState() (<-chan map[string]any, func()) {
	id := uuid.NewString()
	ch := make(chan map[string]any, observerBuffer)

	c.mu.Lock()
	c.stateObs[id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		if cur, ok := c.stateObs[id]; ok {
			delete(c.stateObs, id)
			close(cur)
		}
		c.mu.Unlock()
	}
}

// ObserveConfiguration registers an observer notified on every membership
// change.
func (c *Controller) ObserveConfiguration() (<-chan []string, func()) {
	id := uuid.NewString()
	ch := make(chan []string, observerBuffer)

	c.mu.Lock()
	c.confObs[id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		if cur, ok := c.confObs[id]; ok {
			delete(c.confObs, id)
			close(cur)
		}
		c.mu.Unlock()
	}
}

// Disconnect removes this node from the cluster membership and deletes its
// persisted state.
func (c *Controller) Disconnect(ctx context.Context) error {
	cc := raftpb.ConfChange{
		Type:    raftpb.ConfChangeRemoveNode,
		NodeID:  c.raftId,
		Context: []byte(c.cfg.Id),
	}
	if err := c.node.ProposeConfChange(ctx, cc); err != nil {
		c.shutdown()
		if derr := c.cfg.Store.Delete(); derr != nil {
			return derr
		}
		return err
	}

	select {
	case <-c.removedCh:
	case <-ctx.Done():
	case <-c.stopCh:
	}

	c.shutdown()
	return c.cfg.Store.Delete()
}

// Stop halts the node, keeping cluster membership and persisted state so the
// same id can reconnect and catch up from its log.
func (c *Controller) Stop() {
	c.shutdown()
	if err := c.cfg.Store.Close(); err != nil {
		c.logger.Warn("closing raft store", "error", err)
	}
}

// shutdown halts the loops and fails outstanding waits.
func (c *Controller) shutdown() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		c.node.Stop()
	})
	c.wg.Wait()

	c.mu.Lock()
	for id, wait := range c.waits {
		select {
		case wait <- ErrDisconnectedBeforeComplete:
		default:
		}
		delete(c.waits, id)
	}
	for id, ch := range c.stateObs {
		close(ch)
		delete(c.stateObs, id)
	}
	for id, ch := range c.confObs {
		close(ch)
		delete(c.confObs, id)
	}
	c.mu.Unlock()
}

// runReady is the raft ready loop: persist, send, apply, advance.
func (c *Controller) runReady() {
	defer c.wg.Done()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.node.Tick()
		case rd := <-c.node.Ready():
			c.handleReady(rd)
			c.node.Advance()
		}
	}
}

func (c *Controller) handleReady(rd etcdraft.Ready) {
	if !etcdraft.IsEmptySnap(rd.Snapshot) {
		if err := c.storage.ApplySnapshot(rd.Snapshot); err == nil {
			if err := c.applySnapshotPayload(rd.Snapshot); err != nil {
				c.logger.Error("restoring snapshot payload", "error", err)
			}
			if err := c.cfg.Store.SaveSnapshot(rd.Snapshot); err != nil {
				c.logger.Error("persisting snapshot", "error", err)
			}
			c.appliedIndex = rd.Snapshot.Metadata.Index
			c.snapshotIndex = rd.Snapshot.Metadata.Index
		}
	}
	if !etcdraft.IsEmptyHardState(rd.HardState) {
		if err := c.storage.SetHardState(rd.HardState); err != nil {
			c.logger.Error("storing hard state", "error", err)
		}
		if err := c.cfg.Store.SaveHardState(rd.HardState); err != nil {
			c.logger.Error("persisting hard state", "error", err)
		}
	}
	if err := c.storage.Append(rd.Entries); err != nil {
		c.logger.Error("storing entries", "error", err)
	}
	if err := c.cfg.Store.AppendEntries(rd.Entries); err != nil {
		c.logger.Error("persisting entries", "error", err)
	}

	for _, m := range rd.Messages {
		c.sendMessage(m)
	}

	for _, entry := range rd.CommittedEntries {
		c.applyEntry(entry)
	}
	c.maybeSnapshot()
}

// sendMessage resolves the numeric target to a node id and ships the message
// over the bus. Messages to unknown members drop; raft retries.
func (c *Controller) sendMessage(m raftpb.Message) {
	c.mu.Lock()
	to, ok := c.members[m.To]
	c.mu.Unlock()
	if !ok {
		return
	}

	data, err := m.Marshal()
	if err != nil {
		c.logger.Error("marshalling raft message", "error", err)
		return
	}
	msg := wireMessage{Kind: kindRaft, From: c.cfg.Id, Data: data}
	if err := c.cfg.Transport.Send(to, msg); err != nil {
		c.logger.Debug("raft message dropped", "to", to, "error", err)
	}
}

func (c *Controller) applyEntry(entry raftpb.Entry) {
	switch entry.Type {
	case raftpb.EntryNormal:
		if len(entry.Data) == 0 {
			break
		}
		var cmd Command
		if err := json.Unmarshal(entry.Data, &cmd); err != nil {
			c.logger.Warn("skipping undecodable entry", "index", entry.Index, "error", err)
			break
		}
		err := c.sm.Apply(cmd)
		c.wake(cmd, err)
		if cmd.Op != OpNoop {
			c.notifyState()
		}

	case raftpb.EntryConfChange:
		var cc raftpb.ConfChange
		if err := cc.Unmarshal(entry.Data); err != nil {
			c.logger.Warn("skipping undecodable conf change", "index", entry.Index, "error", err)
			break
		}
		c.applyConfChange(cc)
	}
	c.appliedIndex = entry.Index
}

// wake completes the local waiter for a committed proposal, if any.
func (c *Controller) wake(cmd Command, err error) {
	if cmd.Origin != c.cfg.Id || cmd.ProposalId == "" {
		return
	}
	c.mu.Lock()
	wait, ok := c.waits[cmd.ProposalId]
	c.mu.Unlock()
	if ok {
		wait <- err
	}
}

func (c *Controller) applyConfChange(cc raftpb.ConfChange) {
	state := c.node.ApplyConfChange(cc)

	c.mu.Lock()
	c.confState = *state
	switch cc.Type {
	case raftpb.ConfChangeAddNode:
		if len(cc.Context) > 0 {
			c.members[cc.NodeID] = string(cc.Context)
		}
	case raftpb.ConfChangeRemoveNode:
		delete(c.members, cc.NodeID)
	}
	removedSelf := cc.Type == raftpb.ConfChangeRemoveNode && cc.NodeID == c.raftId
	c.mu.Unlock()

	c.notifyConfiguration()
	if removedSelf {
		select {
		case <-c.removedCh:
		default:
			close(c.removedCh)
		}
	}
}

func (c *Controller) notifyState() {
	snapshot := c.sm.Snapshot()

	c.mu.Lock()
	targets := make([]chan map[string]any, 0, len(c.stateObs))
	for _, ch := range c.stateObs {
		targets = append(targets, ch)
	}
	c.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- snapshot:
		default:
			// Buffer full: discard the oldest pending snapshot so the
			// latest one is queued.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
				c.logger.Debug("dropped state notification for slow observer")
			}
		}
	}
}

func (c *Controller) notifyConfiguration() {
	members := c.Members()

	c.mu.Lock()
	targets := make([]chan []string, 0, len(c.confObs))
	for _, ch := range c.confObs {
		targets = append(targets, ch)
	}
	c.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- members:
		default:
			c.logger.Debug("dropped configuration notification for slow observer")
		}
	}
}

// maybeSnapshot compacts the log once enough entries applied since the last
// snapshot.
func (c *Controller) maybeSnapshot() {
	if c.appliedIndex-c.snapshotIndex < snapshotThreshold {
		return
	}

	state, err := c.sm.Marshal()
	if err != nil {
		c.logger.Error("marshalling state for snapshot", "error", err)
		return
	}
	c.mu.Lock()
	members := make(map[uint64]string, len(c.members))
	for k, v := range c.members {
		members[k] = v
	}
	confState := c.confState
	c.mu.Unlock()

	payload, err := json.Marshal(snapshotPayload{State: state, Members: members})
	if err != nil {
		c.logger.Error("marshalling snapshot payload", "error", err)
		return
	}
	snap, err := c.storage.CreateSnapshot(c.appliedIndex, &confState, payload)
	if err != nil {
		c.logger.Error("creating snapshot", "error", err)
		return
	}
	if err := c.cfg.Store.SaveSnapshot(snap); err != nil {
		c.logger.Error("persisting snapshot", "error", err)
		return
	}
	if err := c.storage.Compact(c.appliedIndex); err != nil {
		c.logger.Warn("compacting in-memory log", "error", err)
	}
	c.snapshotIndex = c.appliedIndex
	c.logger.Info("snapshot taken", "index", c.appliedIndex)
}

// runReceive steps inbound raft messages into the node, re-observing the
// inbox if the bus restarts underneath us.
func (c *Controller) runReceive() {
	defer c.wg.Done()

	for {
		msgs, cancel, err := c.cfg.Transport.Receive()
		if err != nil {
			if !c.sleepOrStop(joinRetryInterval) {
				return
			}
			continue
		}
		if !c.drainReceive(msgs, cancel) {
			return
		}
	}
}

func (c *Controller) drainReceive(msgs <-chan wireMessage, cancel func()) bool {
	defer cancel()
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return c.sleepOrStop(joinRetryInterval)
			}
			if msg.Kind != kindRaft {
				continue
			}
			var m raftpb.Message
			if err := m.Unmarshal(msg.Data); err != nil {
				c.logger.Warn("skipping undecodable raft message", "from", msg.From, "error", err)
				continue
			}
			if err := c.node.Step(context.Background(), m); err != nil {
				c.logger.Debug("stepping raft message", "error", err)
			}
		case <-c.stopCh:
			return false
		}
	}
}

// runReceiveBroadcast watches the cluster broadcast inbox and, while
// leading, admits join requests.
func (c *Controller) runReceiveBroadcast() {
	defer c.wg.Done()

	for {
		msgs, cancel, err := c.cfg.Transport.ReceiveBroadcast()
		if err != nil {
			if !c.sleepOrStop(joinRetryInterval) {
				return
			}
			continue
		}
		if !c.drainBroadcast(msgs, cancel) {
			return
		}
	}
}

func (c *Controller) drainBroadcast(msgs <-chan wireMessage, cancel func()) bool {
	defer cancel()
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return c.sleepOrStop(joinRetryInterval)
			}
			if msg.Kind != kindJoin {
				continue
			}
			c.handleJoin(msg)
		case <-c.stopCh:
			return false
		}
	}
}

// handleJoin proposes a conf change adding the requester when this node
// leads. Requests for existing members are ignored; the joiner stops asking
// once it sees itself admitted.
func (c *Controller) handleJoin(msg wireMessage) {
	if msg.RaftId == 0 || msg.From == "" {
		return
	}
	if c.isMember(msg.RaftId) {
		return
	}
	if c.node.Status().RaftState != etcdraft.StateLeader {
		return
	}

	cc := raftpb.ConfChange{
		Type:    raftpb.ConfChangeAddNode,
		NodeID:  msg.RaftId,
		Context: []byte(msg.From),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.node.ProposeConfChange(ctx, cc); err != nil {
		c.logger.Warn("proposing join conf change", "joiner", msg.From, "error", err)
		return
	}
	c.logger.Info("admitting cluster joiner", "joiner", msg.From)
}

// sleepOrStop waits d, returning false if the controller stops first.
func (c *Controller) sleepOrStop(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-c.stopCh:
		return false
	}
}
