package appstate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Store persists a State between runs.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, s *State) error
}

// FileStore keeps the state as one JSON document on disk.
type FileStore struct {
	logger *slog.Logger
	path   string
	mu     sync.Mutex
}

// NewFileStore returns a store writing to path. The directory is created on first save.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// DefaultPath is where the CLI keeps its state unless told otherwise.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "worldclock", "state.json"), nil
}

// Path returns the file backing the store.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the state. A missing file yields the defaults.
func (f *FileStore) Load(ctx context.Context) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.logger.Debug("no state file, using defaults", "path", f.path)
			return New(), nil
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	snap := defaults()
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding state file %s: %w", f.path, err)
	}
	f.logger.Debug("state loaded", "path", f.path, "cities", len(snap.Cities), "favorites", len(snap.Favorites))
	return fromSnapshot(snap), nil
}

// Save writes the state atomically: a temp file is synced and renamed over the old one.
func (f *FileStore) Save(ctx context.Context, s *State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	tempPath := f.path + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	defer func() {
		// Only try to remove temp file if it still exists
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			f.logger.Debug("Failed to remove temp file", "error", removeErr)
		}
	}()

	if _, err := file.Write(data); err != nil {
		_ = file.Close() //nolint:errcheck // best effort close on error path
		return fmt.Errorf("writing state file: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close() //nolint:errcheck // best effort close on error path
		return fmt.Errorf("syncing state file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing state file: %w", err)
	}
	if err := os.Rename(tempPath, f.path); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}

	f.logger.Debug("state saved", "path", f.path, "bytes", len(data))
	return nil
}

// MemoryStore keeps the state in memory, for tests and ephemeral sessions.
type MemoryStore struct {
	saved *snapshot
	mu    sync.Mutex
}

// Load returns a copy of the last saved state, or the defaults.
func (m *MemoryStore) Load(ctx context.Context) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return New(), nil
	}
	return fromSnapshot(copySnapshot(*m.saved)), nil
}

// Save stores a copy of the state.
func (m *MemoryStore) Save(ctx context.Context, s *State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := s.snapshot()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = &snap
	return nil
}

func copySnapshot(s snapshot) snapshot {
	return snapshot{
		Cities:            append(s.Cities[:0:0], s.Cities...),
		Favorites:         append(s.Favorites[:0:0], s.Favorites...),
		SearchHistory:     append(s.SearchHistory[:0:0], s.SearchHistory...),
		ConversionHistory: append(s.ConversionHistory[:0:0], s.ConversionHistory...),
		Preferences:       s.Preferences,
	}
}
