package agent

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	_ "modernc.org/sqlite"

	apperrors "github.com/clintables/codefinder/pkg/errors"
)

// CheckpointStore persists run state keyed by thread ID so interrupted runs
// can resume from the last completed node.
type CheckpointStore interface {
	Save(ctx context.Context, threadID string, state *State) error
	Load(ctx context.Context, threadID string) (*State, error)
	Delete(ctx context.Context, threadID string) error
}

// MemoryCheckpointStore keeps checkpoints in process memory.
type MemoryCheckpointStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{states: map[string][]byte{}}
}

func (m *MemoryCheckpointStore) Save(_ context.Context, threadID string, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return apperrors.NewInternalError("failed to encode checkpoint", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[threadID] = raw
	return nil
}

func (m *MemoryCheckpointStore) Load(_ context.Context, threadID string) (*State, error) {
	m.mu.RLock()
	raw, ok := m.states[threadID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, apperrors.NewInternalError("failed to decode checkpoint", err)
	}
	return &state, nil
}

func (m *MemoryCheckpointStore) Delete(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, threadID)
	return nil
}

// SQLiteCheckpointStore persists checkpoints as JSON blobs in a local
// SQLite database, surviving process restarts.
type SQLiteCheckpointStore struct {
	db *sql.DB
}

// NewSQLiteCheckpointStore opens (or creates) the database at path and
// ensures the checkpoints table exists.
func NewSQLiteCheckpointStore(ctx context.Context, path string) (*SQLiteCheckpointStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to open checkpoint database", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS checkpoints (
			thread_id  TEXT PRIMARY KEY,
			state      BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, apperrors.NewInternalError("failed to initialize checkpoint schema", err)
	}
	return &SQLiteCheckpointStore{db: db}, nil
}

func (s *SQLiteCheckpointStore) Save(ctx context.Context, threadID string, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return apperrors.NewInternalError("failed to encode checkpoint", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (thread_id, state, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(thread_id) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at`,
		threadID, raw)
	if err != nil {
		return apperrors.NewInternalError("failed to save checkpoint", err)
	}
	return nil
}

func (s *SQLiteCheckpointStore) Load(ctx context.Context, threadID string) (*State, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM checkpoints WHERE thread_id = ?`, threadID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load checkpoint", err)
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, apperrors.NewInternalError("failed to decode checkpoint", err)
	}
	return &state, nil
}

func (s *SQLiteCheckpointStore) Delete(ctx context.Context, threadID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM checkpoints WHERE thread_id = ?`, threadID); err != nil {
		return apperrors.NewInternalError("failed to delete checkpoint", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteCheckpointStore) Close() error {
	return s.db.Close()
}
