// Package persistence mirrors session state to a single JSON snapshot file.
//
// The store is a one-way mirror: memory is authoritative, writes flow
// through after every mutation, and the file is only read back at startup.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Shivamtawar/buildxhire/internal/domain"
)

const snapshotFile = "session.json"

// FileStore implements ports.SnapshotStore on a local JSON file.
type FileStore struct {
	path string

	mu     sync.Mutex
	last   domain.Snapshot
	loaded bool
}

// NewFileStore creates a store writing to the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath resolves the well-known snapshot location under the user's
// state directory.
func DefaultPath() (string, error) {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, "buildxhire", snapshotFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("could not determine home directory")
	}
	return filepath.Join(home, ".local", "state", "buildxhire", snapshotFile), nil
}

// Save merges the partial update over the last known snapshot and writes the
// result. Snapshots with no real session data are kept in memory but never
// written, so storage is not polluted with all-empty placeholders.
func (s *FileStore) Save(update domain.SnapshotUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoadedLocked()
	merged := update.ApplyTo(s.last)
	s.last = merged

	if !merged.HasSessionData() {
		return nil
	}
	return s.writeLocked(merged)
}

// Load reads the snapshot from disk. A missing file is not an error. A
// corrupt file is erased and reported as absent, so a bad snapshot can never
// wedge startup.
func (s *FileStore) Load() (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, ok := s.readLocked()
	s.loaded = true
	if !ok {
		s.last = domain.Snapshot{}
		return nil, nil
	}
	s.last = snapshot

	out := snapshot
	return &out, nil
}

// Clear removes the snapshot unconditionally.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = domain.Snapshot{}
	s.loaded = true

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove snapshot %s: %w", s.path, err)
	}
	return nil
}

// ensureLoadedLocked primes the in-memory state from disk once, so the first
// partial Save of a restored process merges over real data.
func (s *FileStore) ensureLoadedLocked() {
	if s.loaded {
		return
	}
	if snapshot, ok := s.readLocked(); ok {
		s.last = snapshot
	}
	s.loaded = true
}

// readLocked returns (snapshot, false) when the file is absent or corrupt;
// corruption also erases the file.
func (s *FileStore) readLocked() (domain.Snapshot, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.Snapshot{}, false
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		_ = os.Remove(s.path)
		return domain.Snapshot{}, false
	}
	return snapshot, true
}

// writeLocked writes atomically via temp file and rename.
func (s *FileStore) writeLocked(snapshot domain.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
