package state

import (
	"context"
	"fmt"
	"time"

	"github.com/mercator-hq/creditpilot/pkg/pid"
)

// Backend defines the interface for controller state persistence.
//
// Load must never fail on a missing or corrupt record; both resolve to the
// default state so the control loop always has something valid to start
// from. Save must round-trip exactly: Load after Save returns a state equal
// in every field.
type Backend interface {
	// Load retrieves the persisted controller state. If no state has been
	// persisted yet, or the persisted record cannot be decoded, it returns
	// DefaultState(now). Only a system failure (I/O, database) is an error.
	Load(ctx context.Context) (pid.State, error)

	// Save persists the controller state, replacing any previous record.
	Save(ctx context.Context, s pid.State) error

	// Reset removes the persisted record. The next Load starts fresh.
	// Intended for operator use; a no-op when nothing is persisted.
	Reset(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error
}

// DefaultState returns the state used on a first run or after corruption
// recovery: zero accumulator, zero previous error, last update now.
func DefaultState(now time.Time) pid.State {
	return pid.State{
		IntegralAccumulator: 0,
		PreviousError:       0,
		LastUpdate:          unixSeconds(now),
	}
}

// CorruptionError describes a persisted record that exists but cannot be
// decoded. Backends recover from it internally; it appears only in logs.
type CorruptionError struct {
	Backend string
	Path    string
	Cause   error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("%s state at %s is corrupt: %v", e.Backend, e.Path, e.Cause)
}

func (e *CorruptionError) Unwrap() error {
	return e.Cause
}

// unixSeconds converts a time to fractional Unix seconds, the resolution
// the controller state is persisted at.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
