package store

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/mbarbosa/chatspace/internal/conversation"
)

// Persisted keys.
const (
	keyWorkspaces           = "workspaces"
	keyActiveWorkspaceID    = "activeWorkspaceId"
	keySelectedModel        = "selectedModel"
	keyNotificationsEnabled = "notificationsEnabled"
)

// Store implements a SQLite key/value store holding the serialized workspace
// tree and small scalar preferences. After startup it is a projection of the
// in-memory state, not a source of truth.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens (and if needed creates) the store at the given path.
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "creating store directory")
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, errors.Wrap(err, "creating preferences table")
	}

	return &Store{db: db, logger: logger}, nil
}

// Load reads the persisted state. Missing, empty or unparseable data falls
// back to a single default workspace; corruption is recovered locally and
// never surfaced as an error.
func (s *Store) Load(defaultModel string) conversation.State {
	state := conversation.DefaultState(defaultModel)

	if raw, ok := s.get(keyWorkspaces); ok {
		var workspaces []conversation.Workspace
		if err := json.Unmarshal([]byte(raw), &workspaces); err != nil {
			s.logger.Warn("discarding unparseable workspaces, starting fresh", "error", err)
		} else if len(workspaces) > 0 {
			state.Workspaces = workspaces
		}
	}

	// Restore the last active workspace when it still exists.
	state.ActiveWorkspaceID = state.Workspaces[0].ID
	if id, ok := s.get(keyActiveWorkspaceID); ok {
		for _, workspace := range state.Workspaces {
			if workspace.ID == id {
				state.ActiveWorkspaceID = id
				break
			}
		}
	}

	if model, ok := s.get(keySelectedModel); ok && model != "" {
		state.SelectedModel = model
	}
	if raw, ok := s.get(keyNotificationsEnabled); ok {
		state.NotificationsEnabled = raw == "true"
	}
	return state
}

// Save writes a full snapshot of the state. Failures are returned for the
// caller to log; they are never fatal.
func (s *Store) Save(state conversation.State) error {
	workspaces, err := json.Marshal(state.Workspaces)
	if err != nil {
		return errors.Wrap(err, "marshaling workspaces")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	pairs := map[string]string{
		keyWorkspaces:           string(workspaces),
		keyActiveWorkspaceID:    state.ActiveWorkspaceID,
		keySelectedModel:        state.SelectedModel,
		keyNotificationsEnabled: strconv.FormatBool(state.NotificationsEnabled),
	}
	for key, value := range pairs {
		if _, err := tx.Exec(`REPLACE INTO preferences (key, value) VALUES (?, ?)`, key, value); err != nil {
			return errors.Wrapf(err, "writing %s", key)
		}
	}
	return errors.Wrap(tx.Commit(), "committing snapshot")
}

func (s *Store) get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		s.logger.Warn("reading preference", "key", key, "error", err)
		return "", false
	}
	return value, true
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
