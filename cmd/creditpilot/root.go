package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "creditpilot",
	Short: "Creditpilot - budget-aware CI routing controller",
	Long: `Creditpilot decides what percentage of CI jobs should route to the
secondary cloud account so its monthly credit grant is spent smoothly.

Each cycle it:
  - Fetches month-to-date spend from the billing analytics API
  - Reads the baseline rollout percentage from a GitHub issue comment
  - Compares spend against a linear month trajectory
  - Adjusts the percentage with a PID controller
  - Persists controller state so the next cycle continues seamlessly

The hard budget stop always wins: once spend reaches the target, the
routing percentage drops to zero regardless of the controller output.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
