package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mercator-hq/creditpilot/pkg/optimizer"
)

func TestWriteArtifact_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollout.yaml")
	decision := &optimizer.Decision{
		CycleID:         "7b0e8a1c-0000-4000-8000-000000000000",
		Timestamp:       time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC),
		FinalPercentage: 42.5,
	}

	if err := WriteArtifact(path, decision); err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}

	got, err := ReadArtifact(path)
	if err != nil {
		t.Fatalf("ReadArtifact: %v", err)
	}
	if got.RolloutPercentage != 42.5 {
		t.Errorf("RolloutPercentage = %v, want 42.5", got.RolloutPercentage)
	}
	if got.CycleID != decision.CycleID {
		t.Errorf("CycleID = %q, want %q", got.CycleID, decision.CycleID)
	}
	if !got.GeneratedAt.Equal(decision.Timestamp) {
		t.Errorf("GeneratedAt = %v, want %v", got.GeneratedAt, decision.Timestamp)
	}
}

func TestWriteArtifact_LeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rollout.yaml")

	if err := WriteArtifact(path, &optimizer.Decision{FinalPercentage: 10}); err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "rollout.yaml" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

func TestReadArtifact_MissingFile(t *testing.T) {
	if _, err := ReadArtifact(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing artifact")
	}
}
