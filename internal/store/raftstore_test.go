// ABOUTME: Tests for the per-node sqlite raft store
// ABOUTME: Persistence round-trips, log truncation, deletion of exactly one file

package store

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/raft/v3/raftpb"
)

func TestNodePath_KeyedByNodeId(t *testing.T) {
	assert.Equal(t, "/data/raft-node-1.db", NodePath("/data", "node-1"))
	assert.NotEqual(t, NodePath("/data", "a"), NodePath("/data", "b"))
}

func TestNodeStore_FreshStoreHasNoState(t *testing.T) {
	s, err := OpenNodeStore(t.TempDir(), "node-1")
	require.NoError(t, err)
	defer s.Close()

	has, err := s.HasState()
	require.NoError(t, err)
	assert.False(t, has)
}

func TestNodeStore_PersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenNodeStore(dir, "node-1")
	require.NoError(t, err)

	hs := raftpb.HardState{Term: 3, Vote: 7, Commit: 2}
	require.NoError(t, s.SaveHardState(hs))
	entries := []raftpb.Entry{
		{Index: 1, Term: 1, Type: raftpb.EntryNormal, Data: []byte(`{"op":"noop"}`)},
		{Index: 2, Term: 3, Type: raftpb.EntryNormal, Data: []byte(`{"op":"put","key":"k"}`)},
	}
	require.NoError(t, s.AppendEntries(entries))
	require.NoError(t, s.Close())

	// Reopen the same file and read everything back.
	s, err = OpenNodeStore(dir, "node-1")
	require.NoError(t, err)
	defer s.Close()

	has, err := s.HasState()
	require.NoError(t, err)
	assert.True(t, has)

	gotHs, gotSnap, gotEntries, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, hs, gotHs)
	assert.True(t, raftpb.IsEmptySnap(gotSnap) || gotSnap.Metadata.Index == 0)
	require.Len(t, gotEntries, 2)
	assert.Equal(t, entries[0].Data, gotEntries[0].Data)
	assert.Equal(t, entries[1].Term, gotEntries[1].Term)
}

func TestNodeStore_AppendOverwritesConflictingSuffix(t *testing.T) {
	s, err := OpenNodeStore(t.TempDir(), "node-1")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.AppendEntries([]raftpb.Entry{
		{Index: 1, Term: 1},
		{Index: 2, Term: 1},
		{Index: 3, Term: 1},
	}))
	// A new leader rewrites the tail at a higher term.
	require.NoError(t, s.AppendEntries([]raftpb.Entry{
		{Index: 2, Term: 2},
	}))

	_, _, entries, err := s.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(2), entries[1].Index)
	assert.Equal(t, uint64(2), entries[1].Term)
}

func TestNodeStore_SnapshotCompactsEntries(t *testing.T) {
	s, err := OpenNodeStore(t.TempDir(), "node-1")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.AppendEntries([]raftpb.Entry{
		{Index: 1, Term: 1},
		{Index: 2, Term: 1},
		{Index: 3, Term: 1},
	}))
	snap := raftpb.Snapshot{
		Data:     []byte(`{"state":{}}`),
		Metadata: raftpb.SnapshotMetadata{Index: 2, Term: 1},
	}
	require.NoError(t, s.SaveSnapshot(snap))

	gotHs, gotSnap, entries, err := s.Load()
	require.NoError(t, err)
	_ = gotHs
	assert.Equal(t, uint64(2), gotSnap.Metadata.Index)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(3), entries[0].Index)
}

func TestNodeStore_DeleteRemovesExactlyOneNodesFile(t *testing.T) {
	dir := t.TempDir()

	s1, err := OpenNodeStore(dir, "node-1")
	require.NoError(t, err)
	s2, err := OpenNodeStore(dir, "node-2")
	require.NoError(t, err)
	defer s2.Close()

	require.NoError(t, s1.Delete())

	_, err = os.Stat(NodePath(dir, "node-1"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(NodePath(dir, "node-2"))
	assert.NoError(t, err)
}
