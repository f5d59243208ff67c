// Package storage persists the full session snapshot in a single SQLite
// slot. The whole state serializes as one JSON document under a fixed
// key; every save overwrites the previous value. Corrupt or missing
// state never fails startup - Load falls back to an empty snapshot.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// StateKey is the fixed slot the snapshot lives under.
const StateKey = "local_chat_state_v1"

// SnapshotVersion is written into every saved snapshot so a future
// loader can migrate instead of silently dropping unknown structure.
const SnapshotVersion = 1

// Message is one persisted chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FileRef records a file accepted by the upload backend.
type FileRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Conversation is one persisted thread.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
	Files     []FileRef `json:"files"`
}

// Snapshot is the complete persisted state.
type Snapshot struct {
	Version               int            `json:"version"`
	Conversations         []Conversation `json:"conversations"`
	CurrentConversationID string         `json:"currentConversationId"`
	KeepContext           bool           `json:"keepContext"`
}

// EmptySnapshot is the state a fresh (or unrecoverable) install starts from.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Version:     SnapshotVersion,
		KeepContext: true,
	}
}

// StateStore is the persistence adapter around the SQLite slot.
type StateStore struct {
	db *sql.DB
}

func NewStateStore(dataDir string) (*StateStore, error) {
	dbPath := filepath.Join(dataDir, "chatterm.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &StateStore{db: db}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *StateStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save serializes the snapshot and overwrites the slot unconditionally.
func (s *StateStore) Save(snapshot Snapshot) error {
	snapshot.Version = SnapshotVersion

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		StateKey, string(data), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

// Load reads the slot. Absence, a read failure or a malformed document
// all return the empty snapshot - persisted corruption must never crash
// startup. Loaded conversations are normalized so Messages and Files are
// never nil.
func (s *StateStore) Load() Snapshot {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, StateKey).Scan(&raw)
	if err != nil {
		return EmptySnapshot()
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return EmptySnapshot()
	}

	if snapshot.Version == 0 {
		snapshot.Version = SnapshotVersion
	}
	for i := range snapshot.Conversations {
		if snapshot.Conversations[i].Messages == nil {
			snapshot.Conversations[i].Messages = []Message{}
		}
		if snapshot.Conversations[i].Files == nil {
			snapshot.Conversations[i].Files = []FileRef{}
		}
	}

	return snapshot
}

func (s *StateStore) Close() error {
	return s.db.Close()
}
