package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mercator-hq/creditpilot/pkg/optimizer"
)

// Artifact is the machine-readable result of a decision cycle, written
// for downstream automation (the workflow that actually flips the
// routing percentage).
type Artifact struct {
	RolloutPercentage float64   `yaml:"rollout_percentage"`
	GeneratedAt       time.Time `yaml:"generated_at"`
	CycleID           string    `yaml:"cycle_id"`
}

// NewArtifact builds the artifact for a completed decision.
func NewArtifact(d *optimizer.Decision) Artifact {
	return Artifact{
		RolloutPercentage: d.FinalPercentage,
		GeneratedAt:       d.Timestamp,
		CycleID:           d.CycleID,
	}
}

// WriteArtifact writes the artifact as YAML to path. The write goes
// through a temp file and rename so a consumer never reads a partial
// artifact.
func WriteArtifact(path string, d *optimizer.Decision) error {
	data, err := yaml.Marshal(NewArtifact(d))
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize artifact: %w", err)
	}
	return nil
}

// ReadArtifact loads a previously written artifact.
func ReadArtifact(path string) (Artifact, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to read artifact: %w", err)
	}

	var a Artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return Artifact{}, fmt.Errorf("failed to parse artifact: %w", err)
	}
	return a, nil
}
