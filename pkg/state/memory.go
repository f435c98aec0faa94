package state

import (
	"context"
	"sync"
	"time"

	"github.com/mercator-hq/creditpilot/pkg/pid"
)

// MemoryBackend keeps controller state in process memory only.
//
// It exists for tests and for spend-trajectory simulations, where durable
// state would leak between runs.
type MemoryBackend struct {
	mu    sync.RWMutex
	s     pid.State
	saved bool
	now   func() time.Time
}

// NewMemoryBackend creates an empty in-memory state backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{now: time.Now}
}

// Load returns the last saved state, or the default state if nothing has
// been saved yet.
func (b *MemoryBackend) Load(ctx context.Context) (pid.State, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.saved {
		return DefaultState(b.now()), nil
	}
	return b.s, nil
}

// Save stores the state.
func (b *MemoryBackend) Save(ctx context.Context, s pid.State) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.s = s
	b.saved = true
	return nil
}

// Reset discards the stored state.
func (b *MemoryBackend) Reset(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.s = pid.State{}
	b.saved = false
	return nil
}

// Close is a no-op for the memory backend.
func (b *MemoryBackend) Close() error {
	return nil
}
