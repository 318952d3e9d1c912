// Package sqlite persists parley checkpoints in a SQLite database, so
// conversations survive process restarts.
//
//	st, err := sqlite.Open(filepath.Join(dir, "conversations.db"))
//	if err != nil { ... }
//	defer st.Close()
//
//	engine := parley.NewEngine(collection, model).WithStore(st)
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rickchristie/parley"
	_ "modernc.org/sqlite"
)

// currentSchemaVersion is the latest schema version. Bump when adding
// migrations.
const currentSchemaVersion = 1

// Store is a parley.Store backed by a single SQLite database. Safe for
// concurrent use; each save replaces the thread's row in one statement, so a
// concurrent load sees either the previous checkpoint or the new one.
type Store struct {
	db *sql.DB
}

var _ parley.Store = (*Store)(nil)

// Open opens (creating if necessary) the database at path and migrates it to
// the current schema. The connection uses WAL journaling and a busy timeout,
// which keeps a CLI and an inspecting process from tripping over each other.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load implements parley.Store.
func (s *Store) Load(ctx context.Context, threadID string) (*parley.Checkpoint, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT checkpoint FROM conversations WHERE thread_id = ?`, threadID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load thread %s: %w", threadID, err)
	}

	var cp parley.Checkpoint
	if err := json.Unmarshal(payload, &cp); err != nil {
		return nil, false, fmt.Errorf("failed to decode checkpoint for thread %s: %w", threadID, err)
	}
	return &cp, true, nil
}

// Save implements parley.Store. The whole checkpoint is written in a single
// upsert statement.
func (s *Store) Save(ctx context.Context, cp *parley.Checkpoint) error {
	payload, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint for thread %s: %w", cp.ThreadID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (thread_id, state, checkpoint, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
		  state      = excluded.state,
		  checkpoint = excluded.checkpoint,
		  updated_at = excluded.updated_at`,
		cp.ThreadID,
		string(cp.State),
		payload,
		cp.CreatedAt.UnixMilli(),
		cp.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save thread %s: %w", cp.ThreadID, err)
	}
	return nil
}

// Delete implements parley.Store.
func (s *Store) Delete(ctx context.Context, threadID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE thread_id = ?`, threadID,
	); err != nil {
		return fmt.Errorf("failed to delete thread %s: %w", threadID, err)
	}
	return nil
}

// ThreadInfo summarizes one stored conversation.
type ThreadInfo struct {
	// ThreadID identifies the conversation.
	ThreadID string
	// State is the stable state the conversation was last saved at.
	State parley.State
	// UpdatedAt is when the conversation was last saved.
	UpdatedAt time.Time
}

// List returns every stored conversation, most recently updated first. Handy
// for resuming: filter on State != parley.StateTeardown for conversations
// that still accept input.
func (s *Store) List(ctx context.Context) ([]ThreadInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT thread_id, state, updated_at
		FROM conversations
		ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer rows.Close()

	var out []ThreadInfo
	for rows.Next() {
		var (
			info   ThreadInfo
			state  string
			millis int64
		)
		if err := rows.Scan(&info.ThreadID, &state, &millis); err != nil {
			return nil, fmt.Errorf("failed to scan thread row: %w", err)
		}
		info.State = parley.State(state)
		info.UpdatedAt = time.UnixMilli(millis)
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	return out, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := getUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS conversations (
		  thread_id  TEXT PRIMARY KEY,
		  state      TEXT NOT NULL,
		  checkpoint TEXT NOT NULL,
		  created_at INTEGER NOT NULL,
		  updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_conversations_state_updated
		ON conversations(state, updated_at DESC);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := setUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// getUserVersion returns the current schema version (user_version pragma).
func getUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// setUserVersion sets the schema version (user_version pragma).
func setUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
