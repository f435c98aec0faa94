package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mercator-hq/creditpilot/pkg/pid"
)

// backends under test share one contract; run the same suite over each.
func testBackends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()

	fb, err := NewFileBackend(filepath.Join(dir, "pid_state.json"))
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}

	sb, err := NewSQLiteBackend(filepath.Join(dir, "state.db"))
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	t.Cleanup(func() { sb.Close() })

	return map[string]Backend{
		"file":   fb,
		"sqlite": sb,
		"memory": NewMemoryBackend(),
	}
}

func TestBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	want := pid.State{
		IntegralAccumulator: 12345.6789,
		PreviousError:       -42.5,
		LastUpdate:          1735689600.25,
	}

	for name, b := range testBackends(t) {
		if err := b.Save(ctx, want); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, err := b.Load(ctx)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if got != want {
			t.Errorf("%s: round trip mismatch: got %+v, want %+v", name, got, want)
		}
	}
}

func TestBackend_FirstLoadReturnsDefault(t *testing.T) {
	ctx := context.Background()
	before := time.Now()

	for name, b := range testBackends(t) {
		got, err := b.Load(ctx)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if got.IntegralAccumulator != 0 || got.PreviousError != 0 {
			t.Errorf("%s: expected zeroed default state, got %+v", name, got)
		}
		if got.LastUpdate < float64(before.Unix()) {
			t.Errorf("%s: default LastUpdate %v is before test start", name, got.LastUpdate)
		}
	}
}

func TestBackend_ResetClearsState(t *testing.T) {
	ctx := context.Background()
	saved := pid.State{IntegralAccumulator: 7, PreviousError: 3, LastUpdate: 100}

	for name, b := range testBackends(t) {
		if err := b.Save(ctx, saved); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		if err := b.Reset(ctx); err != nil {
			t.Fatalf("%s: reset: %v", name, err)
		}
		got, err := b.Load(ctx)
		if err != nil {
			t.Fatalf("%s: load after reset: %v", name, err)
		}
		if got.IntegralAccumulator != 0 || got.PreviousError != 0 {
			t.Errorf("%s: expected default state after reset, got %+v", name, got)
		}
	}
}

func TestFileBackend_CorruptFileRecoversToDefault(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pid_state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := NewFileBackend(path)
	if err != nil {
		t.Fatal(err)
	}

	got, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("corrupt file must not surface an error, got %v", err)
	}
	if got.IntegralAccumulator != 0 || got.PreviousError != 0 {
		t.Errorf("expected default state after corruption, got %+v", got)
	}
}

func TestSQLiteBackend_CorruptRowRecoversToDefault(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	b, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if _, err := b.db.ExecContext(ctx,
		`INSERT INTO controller_state (key, state, updated_at) VALUES (?, ?, ?)`,
		stateKey, "garbage", 0); err != nil {
		t.Fatal(err)
	}

	got, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("corrupt row must not surface an error, got %v", err)
	}
	if got.IntegralAccumulator != 0 || got.PreviousError != 0 {
		t.Errorf("expected default state after corruption, got %+v", got)
	}
}

func TestFileBackend_SaveIsAtomic(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pid_state.json")

	b, err := NewFileBackend(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Save(ctx, pid.State{IntegralAccumulator: 1}); err != nil {
		t.Fatal(err)
	}

	// No temporary file should linger after a successful save.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}
}
