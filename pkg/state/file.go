package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mercator-hq/creditpilot/pkg/pid"
)

// FileBackend persists controller state as a small JSON file.
//
// Writes go through a temporary file followed by rename, so a crash mid-save
// leaves the previous state intact rather than a truncated file.
type FileBackend struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// NewFileBackend creates a file-based state backend at path. The parent
// directory is created if it does not exist.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("state file path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory %q: %w", dir, err)
		}
	}
	return &FileBackend{
		path:   path,
		logger: slog.Default().With("component", "state.file"),
		now:    time.Now,
	}, nil
}

// Load reads the persisted state. A missing file yields the default state;
// a file that cannot be parsed is logged as corrupt and also yields the
// default state, so losing integral history never halts the controller.
func (b *FileBackend) Load(ctx context.Context) (pid.State, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		b.logger.Info("no previous state found, starting fresh", "path", b.path)
		return DefaultState(b.now()), nil
	}
	if err != nil {
		return pid.State{}, fmt.Errorf("failed to read state file %q: %w", b.path, err)
	}

	var s pid.State
	if err := json.Unmarshal(data, &s); err != nil {
		cerr := &CorruptionError{Backend: "file", Path: b.path, Cause: err}
		b.logger.Warn("resetting to default state", "error", cerr)
		return DefaultState(b.now()), nil
	}

	return s, nil
}

// Save writes the state atomically.
func (b *FileBackend) Save(ctx context.Context, s pid.State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace state file %q: %w", b.path, err)
	}
	return nil
}

// Reset removes the state file.
func (b *FileBackend) Reset(ctx context.Context) error {
	err := os.Remove(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Close is a no-op for the file backend.
func (b *FileBackend) Close() error {
	return nil
}
