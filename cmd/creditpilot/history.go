package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mercator-hq/creditpilot/pkg/cli"
	"github.com/mercator-hq/creditpilot/pkg/config"
	"github.com/mercator-hq/creditpilot/pkg/history"
)

var historyFlags struct {
	limit int
	since string
	until string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent decisions",
	Long: `Show decisions from the audit trail, newest first.

Examples:
  # Last 10 decisions
  creditpilot history --limit 10

  # Decisions since the start of the month
  creditpilot history --since 2026-08-01`,
	RunE: showHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "maximum number of decisions to show")
	historyCmd.Flags().StringVar(&historyFlags.since, "since", "", "only decisions at or after this date (YYYY-MM-DD)")
	historyCmd.Flags().StringVar(&historyFlags.until, "until", "", "only decisions before this date (YYYY-MM-DD)")
}

func showHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	filter := history.QueryFilter{Limit: historyFlags.limit}
	if historyFlags.since != "" {
		t, err := time.Parse("2006-01-02", historyFlags.since)
		if err != nil {
			return cli.NewConfigError("since", fmt.Sprintf("invalid date %q", historyFlags.since))
		}
		filter.Since = t
	}
	if historyFlags.until != "" {
		t, err := time.Parse("2006-01-02", historyFlags.until)
		if err != nil {
			return cli.NewConfigError("until", fmt.Sprintf("invalid date %q", historyFlags.until))
		}
		filter.Until = t
	}

	store, err := history.NewStore(cfg.History.Path)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	records, err := store.Query(cmd.Context(), filter)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	if len(records) == 0 {
		fmt.Println("No decisions recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tSPEND\tIDEAL\tBASE%\tFINAL%\tOVERRIDE")
	for _, r := range records {
		override := ""
		if r.Overridden {
			override = "budget-exceeded"
		}
		fmt.Fprintf(w, "%s\t%.0f\t%.0f\t%.1f\t%.1f\t%s\n",
			r.Timestamp.Format(time.RFC3339),
			r.CurrentMonthSpend,
			r.IdealSpend,
			r.BasePercentage,
			r.FinalPercentage,
			override,
		)
	}
	return w.Flush()
}
