package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mercator-hq/creditpilot/pkg/cli"
	"github.com/mercator-hq/creditpilot/pkg/config"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or reset the persisted controller state",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted controller state",
	RunE:  showState,
}

var stateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the controller state to a clean start",
	Long: `Reset the persisted controller state.

The next cycle starts with a zero integral accumulator, as if the
controller had never run. Use this after changing gains substantially or
at the start of a new month when stale carry-over is unwanted.`,
	RunE: resetState,
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateResetCmd)
}

func showState(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	store, err := newStateBackend(cfg)
	if err != nil {
		return cli.NewCommandError("state show", err)
	}
	defer store.Close()

	s, err := store.Load(cmd.Context())
	if err != nil {
		return cli.NewCommandError("state show", err)
	}

	fmt.Printf("Backend:              %s (%s)\n", cfg.State.Backend, cfg.State.Path)
	fmt.Printf("Integral accumulator: %.6f\n", s.IntegralAccumulator)
	fmt.Printf("Previous error:       %.6f\n", s.PreviousError)
	fmt.Printf("Last update:          %s\n", time.Unix(int64(s.LastUpdate), 0).UTC().Format(time.RFC3339))
	return nil
}

func resetState(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	store, err := newStateBackend(cfg)
	if err != nil {
		return cli.NewCommandError("state reset", err)
	}
	defer store.Close()

	if err := store.Reset(cmd.Context()); err != nil {
		return cli.NewCommandError("state reset", err)
	}

	fmt.Println("✓ Controller state reset")
	return nil
}
