package main

import (
	"path/filepath"
	"testing"

	"github.com/mercator-hq/creditpilot/pkg/config"
	"github.com/mercator-hq/creditpilot/pkg/state"
)

func TestNewStateBackend(t *testing.T) {
	dir := t.TempDir()

	fileCfg := &config.Config{}
	fileCfg.State.Backend = "file"
	fileCfg.State.Path = filepath.Join(dir, "state.json")

	backend, err := newStateBackend(fileCfg)
	if err != nil {
		t.Fatalf("newStateBackend(file): %v", err)
	}
	if _, ok := backend.(*state.FileBackend); !ok {
		t.Errorf("backend = %T, want *state.FileBackend", backend)
	}
	backend.Close()

	sqliteCfg := &config.Config{}
	sqliteCfg.State.Backend = "sqlite"
	sqliteCfg.State.Path = filepath.Join(dir, "state.db")

	backend, err = newStateBackend(sqliteCfg)
	if err != nil {
		t.Fatalf("newStateBackend(sqlite): %v", err)
	}
	if _, ok := backend.(*state.SQLiteBackend); !ok {
		t.Errorf("backend = %T, want *state.SQLiteBackend", backend)
	}
	backend.Close()
}

func TestBudgetFromConfig(t *testing.T) {
	b := budgetFromConfig(config.BudgetConfig{TotalCredits: 250000, SafetyMargin: 0.05})
	if b.TotalCredits != 250000 || b.SafetyMargin != 0.05 {
		t.Errorf("budgetFromConfig = %+v", b)
	}
	if got := b.TargetCredits(); got != 237500 {
		t.Errorf("TargetCredits() = %v, want 237500", got)
	}
}
