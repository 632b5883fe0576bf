// ABOUTME: SQLite persistence for one raft node using modernc.org/sqlite
// ABOUTME: One database file per node id so co-located gateways never collide

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"go.etcd.io/raft/v3/raftpb"
)

// NodeStore persists one raft node's hard state, log entries, and snapshot.
// The database file name embeds the node id; Delete removes exactly that
// file and nothing else in the folder.
type NodeStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NodePath returns the database file path for a node id inside folder.
func NodePath(folder, nodeId string) string {
	return filepath.Join(folder, "raft-"+nodeId+".db")
}

// OpenNodeStore opens (creating if needed) the database for one node id.
// Parent directories are created if needed.
func OpenNodeStore(folder, nodeId string) (*NodeStore, error) {
	logger := slog.Default().With("component", "raft-store", "node_id", nodeId)

	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("creating consensus db folder: %w", err)
	}
	path := NodePath(folder, nodeId)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL keeps commits cheap under the raft ready loop's write pattern.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &NodeStore{db: db, path: path, logger: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("raft store opened", "path", path)
	return s, nil
}

func (s *NodeStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);

		CREATE TABLE IF NOT EXISTS entries (
			idx INTEGER PRIMARY KEY,
			term INTEGER NOT NULL,
			type INTEGER NOT NULL,
			data BLOB
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *NodeStore) Path() string {
	return s.path
}

// HasState reports whether the store carries a persisted hard state, i.e.
// the node has run before and must restart rather than bootstrap.
func (s *NodeStore) HasState() (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM meta WHERE key = 'hardstate'`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking hard state: %w", err)
	}
	return n > 0, nil
}

// SaveHardState persists the raft hard state.
func (s *NodeStore) SaveHardState(st raftpb.HardState) error {
	data, err := st.Marshal()
	if err != nil {
		return fmt.Errorf("marshalling hard state: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO meta (key, value) VALUES ('hardstate', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, data)
	if err != nil {
		return fmt.Errorf("saving hard state: %w", err)
	}
	return nil
}

// AppendEntries persists log entries, overwriting any conflicting suffix.
func (s *NodeStore) AppendEntries(entries []raftpb.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning entry append: %w", err)
	}
	defer tx.Rollback()

	// A new leader may rewrite the tail of the log.
	if _, err := tx.Exec(`DELETE FROM entries WHERE idx >= ?`, entries[0].Index); err != nil {
		return fmt.Errorf("truncating conflicting entries: %w", err)
	}
	for _, e := range entries {
		data, err := e.Marshal()
		if err != nil {
			return fmt.Errorf("marshalling entry %d: %w", e.Index, err)
		}
		if _, err := tx.Exec(`INSERT INTO entries (idx, term, type, data) VALUES (?, ?, ?, ?)`,
			e.Index, e.Term, int(e.Type), data); err != nil {
			return fmt.Errorf("inserting entry %d: %w", e.Index, err)
		}
	}
	return tx.Commit()
}

// SaveSnapshot persists the snapshot and compacts entries it covers.
func (s *NodeStore) SaveSnapshot(snap raftpb.Snapshot) error {
	data, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning snapshot save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('snapshot', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, data); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM entries WHERE idx <= ?`, snap.Metadata.Index); err != nil {
		return fmt.Errorf("compacting entries: %w", err)
	}
	return tx.Commit()
}

// Load restores the persisted state: hard state, snapshot, and log entries
// in index order.
func (s *NodeStore) Load() (raftpb.HardState, raftpb.Snapshot, []raftpb.Entry, error) {
	var hs raftpb.HardState
	var snap raftpb.Snapshot

	var data []byte
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'hardstate'`).Scan(&data)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return hs, snap, nil, fmt.Errorf("loading hard state: %w", err)
	default:
		if err := hs.Unmarshal(data); err != nil {
			return hs, snap, nil, fmt.Errorf("unmarshalling hard state: %w", err)
		}
	}

	err = s.db.QueryRow(`SELECT value FROM meta WHERE key = 'snapshot'`).Scan(&data)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return hs, snap, nil, fmt.Errorf("loading snapshot: %w", err)
	default:
		if err := snap.Unmarshal(data); err != nil {
			return hs, snap, nil, fmt.Errorf("unmarshalling snapshot: %w", err)
		}
	}

	rows, err := s.db.Query(`SELECT data FROM entries ORDER BY idx ASC`)
	if err != nil {
		return hs, snap, nil, fmt.Errorf("loading entries: %w", err)
	}
	defer rows.Close()

	var entries []raftpb.Entry
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return hs, snap, nil, fmt.Errorf("scanning entry: %w", err)
		}
		var e raftpb.Entry
		if err := e.Unmarshal(raw); err != nil {
			return hs, snap, nil, fmt.Errorf("unmarshalling entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return hs, snap, nil, fmt.Errorf("iterating entries: %w", err)
	}
	return hs, snap, entries, nil
}

// Close releases the database handle, keeping the file on disk.
func (s *NodeStore) Close() error {
	return s.db.Close()
}

// Delete closes the database and removes its file. Used by Disconnect, which
// retires the node's persisted state for good.
func (s *NodeStore) Delete() error {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("closing database before delete", "error", err)
	}
	// WAL side files go with the main database.
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(s.path + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", s.path+suffix, err)
		}
	}
	s.logger.Info("raft store deleted", "path", s.path)
	return nil
}
