// Package history persists the conversation across restarts.
//
// The persisted document keeps the original envelope shape so the selected
// model survives restarts alongside the messages:
//
//	{"model": "...", "messages": [{"role", "content", "timestamp"}, ...]}
//
// Loading is fail-soft: a missing, unreadable or malformed file yields an
// empty conversation and a logged warning, never an error that could take
// the app down. Saving is atomic: write to a temp file in the same
// directory, fsync, rename. A crash mid-write leaves the previous copy.
package history

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/Rorical/QuickPane/internal/models"
)

type Store struct {
	path string
}

type document struct {
	Model    string        `json:"model,omitempty"`
	Messages []models.Turn `json:"messages"`
}

// NewStore places the history file under the per-user data directory
// (e.g. ~/.local/share/quickpane/history.json).
func NewStore() (*Store, error) {
	path, err := xdg.DataFile(filepath.Join("quickpane", "history.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve history path: %w", err)
	}
	return &Store{path: path}, nil
}

// NewStoreAt uses an explicit file path. Used by tests and the clear
// subcommand.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted model selection and conversation. Only
// user/assistant turns are ever persisted, so the result is safe to send to
// the model as-is.
func (s *Store) Load() (string, []models.Turn) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: cannot read history file %s: %v", s.path, err)
		}
		return "", nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("Warning: malformed history file %s: %v", s.path, err)
		return "", nil
	}

	// Tolerate turns older versions may have written oddly; drop anything
	// that has no usable role rather than failing the whole load.
	turns := make([]models.Turn, 0, len(doc.Messages))
	for _, t := range doc.Messages {
		switch t.Role {
		case models.RoleUser, models.RoleAssistant:
			turns = append(turns, t)
		}
	}
	return doc.Model, turns
}

// Save overwrites the persisted history. Only committed user/assistant turns
// are written; a partially streamed response never reaches disk.
func (s *Store) Save(model string, turns []models.Turn) error {
	doc := document{Model: model, Messages: make([]models.Turn, 0, len(turns))}
	for _, t := range turns {
		switch t.Role {
		case models.RoleUser, models.RoleAssistant:
			doc.Messages = append(doc.Messages, t)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return atomicWrite(s.path, data, 0600)
}

// Clear removes the persisted history file. Idempotent.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove history file: %w", err)
	}
	return nil
}

// atomicWrite writes data via a temp file in the target directory followed
// by a rename, syncing before the rename so either the old or the new
// complete file exists after a crash.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync history: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp, perm); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to set history permissions: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}
