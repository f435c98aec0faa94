package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "budget:\n  total_credits: 500000\n")

	w, err := New(cfgPath, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 1)
	go func() {
		_ = w.Watch(ctx, func() error {
			select {
			case reloaded <- struct{}{}:
			default:
			}
			return nil
		})
	}()
	defer w.Stop()

	// Give the watcher time to install before mutating the file.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, cfgPath, "budget:\n  total_credits: 600000\n")

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a reload after config write")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "a: 1\n")

	w, err := New(cfgPath, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int64
	go func() {
		_ = w.Watch(ctx, func() error {
			reloads.Add(1)
			return nil
		})
	}()
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "unrelated.txt"), "noise\n")
	time.Sleep(300 * time.Millisecond)

	if got := reloads.Load(); got != 0 {
		t.Errorf("reloads = %d, want 0 for unrelated file", got)
	}
}

func TestWatch_RejectsSecondStart(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "a: 1\n")

	w, err := New(cfgPath, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, func() error { return nil })
	}()
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	if err := w.Watch(ctx, func() error { return nil }); err == nil {
		t.Error("expected second Watch to fail while running")
	}
}

func TestNew_RequiresPath(t *testing.T) {
	if _, err := New("", 0); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestDebouncer_CollapsesBursts(t *testing.T) {
	d := newDebouncer(100 * time.Millisecond)
	defer d.stop()

	var calls atomic.Int64
	for i := 0; i < 10; i++ {
		d.trigger(func() { calls.Add(1) })
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}
}
