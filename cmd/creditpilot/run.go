package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mercator-hq/creditpilot/pkg/cli"
	"github.com/mercator-hq/creditpilot/pkg/config"
	"github.com/mercator-hq/creditpilot/pkg/history"
	"github.com/mercator-hq/creditpilot/pkg/optimizer"
	"github.com/mercator-hq/creditpilot/pkg/rollout"
	"github.com/mercator-hq/creditpilot/pkg/scheduler"
	"github.com/mercator-hq/creditpilot/pkg/spend"
	"github.com/mercator-hq/creditpilot/pkg/state"
	"github.com/mercator-hq/creditpilot/pkg/telemetry/logging"
	"github.com/mercator-hq/creditpilot/pkg/telemetry/metrics"
	"github.com/mercator-hq/creditpilot/pkg/watcher"
)

var runFlags struct {
	days     int
	dryRun   bool
	schedule string
	output   string
	logLevel string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a decision cycle (or a daemon of them)",
	Long: `Run one complete decision cycle: fetch spend and the baseline rollout
percentage, compare spend against the month's budget trajectory, adjust
the percentage with the PID controller, and persist the controller state.

With --schedule the command stays up and runs a cycle on every cron tick,
exposing Prometheus metrics when enabled in the config.

Examples:
  # One cycle with the default config
  creditpilot run

  # Average the daily spend rate over the last 7 completed days
  creditpilot run --days 7

  # Compute without persisting state or recording history
  creditpilot run --dry-run

  # Write the decision for downstream automation
  creditpilot run --output rollout.yaml

  # Daemon mode, one cycle per hour
  creditpilot run --schedule "0 * * * *"`,
	RunE: runController,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runFlags.days, "days", 1, "completed days to average the spend rate over")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "compute a decision without persisting state")
	runCmd.Flags().StringVar(&runFlags.schedule, "schedule", "", "cron expression for daemon mode")
	runCmd.Flags().StringVarP(&runFlags.output, "output", "o", "", "write the decision as a YAML artifact")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func runController(cmd *cobra.Command, args []string) error {
	if runFlags.days < 1 {
		return cli.NewConfigError("days", fmt.Sprintf("must be >= 1, got %d", runFlags.days))
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	} else if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, closeLogs, err := logging.Setup(logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return cli.NewConfigError("logging", err.Error())
	}
	defer closeLogs()

	store, err := newStateBackend(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer store.Close()

	spendClient, err := spend.NewClient(spend.Config{
		BaseURL:    cfg.Spend.BaseURL,
		TenantID:   cfg.Spend.TenantID,
		ProjectID:  cfg.Spend.ProjectID,
		APIKey:     cfg.Spend.APIKey,
		Timeout:    cfg.Spend.Timeout,
		MaxRetries: cfg.Spend.MaxRetries,
	})
	if err != nil {
		return cli.NewConfigError("spend", err.Error())
	}
	defer spendClient.Close()

	baseline, err := rollout.NewFetcher(rollout.Config{
		CommentURL: cfg.Rollout.CommentURL,
		Repo:       cfg.Rollout.Repo,
		Group:      cfg.Rollout.Group,
		Token:      cfg.Rollout.Token,
		Timeout:    cfg.Rollout.Timeout,
		MaxRetries: cfg.Rollout.MaxRetries,
	})
	if err != nil {
		return cli.NewConfigError("rollout", err.Error())
	}
	defer baseline.Close()

	var recorder optimizer.DecisionRecorder
	var audit *history.Store
	if cfg.History.Enabled && !runFlags.dryRun {
		audit, err = history.NewStore(cfg.History.Path)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer audit.Close()
		recorder = audit
	}

	opt, err := optimizer.New(optimizer.Config{
		Budget:       budgetFromConfig(cfg.Budget),
		Gains:        cfg.PID.Gains(),
		LookbackDays: runFlags.days,
		DryRun:       runFlags.dryRun,
	}, store, spendClient, baseline, recorder)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	schedule := runFlags.schedule
	if schedule == "" {
		schedule = cfg.Scheduler.Schedule
	}
	if schedule != "" {
		logger.Info("starting daemon mode", "schedule", schedule)
		return runDaemon(cfg, opt, audit, schedule)
	}

	ctx := cli.SetupSignalHandler()
	decision, err := opt.RunCycle(ctx)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	printDecision(decision)

	if runFlags.output != "" {
		if err := cli.WriteArtifact(runFlags.output, decision); err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Printf("✓ Artifact written to %s\n", runFlags.output)
	}

	return nil
}

// runDaemon keeps the controller up, running a cycle on every cron tick.
func runDaemon(cfg *config.Config, opt *optimizer.Optimizer, audit *history.Store, schedule string) error {
	registry := prometheus.NewRegistry()

	var m *metrics.Metrics
	listen := ""
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace, registry)
		listen = cfg.Metrics.ListenAddress
	}

	sched, err := scheduler.New(scheduler.Config{
		Schedule:      schedule,
		ListenAddress: listen,
		RetentionDays: cfg.History.RetentionDays,
	}, opt, m, audit, registry)
	if err != nil {
		return cli.NewConfigError("scheduler", err.Error())
	}

	ctx := cli.SetupSignalHandler()

	if cfg.Scheduler.WatchConfig {
		w, err := watcher.New(cfgFile, 0)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go func() {
			_ = w.Watch(ctx, func() error {
				reloaded, err := config.Load(cfgFile)
				if err != nil {
					return err
				}
				opt.Retune(budgetFromConfig(reloaded.Budget), reloaded.PID.Gains())
				return nil
			})
		}()
		defer w.Stop()
	}

	fmt.Printf("✓ Daemon started (schedule %q)\n", schedule)
	return sched.Run(ctx)
}

// newStateBackend builds the configured controller state backend.
func newStateBackend(cfg *config.Config) (state.Backend, error) {
	switch cfg.State.Backend {
	case "sqlite":
		return state.NewSQLiteBackend(cfg.State.Path)
	default:
		return state.NewFileBackend(cfg.State.Path)
	}
}

// budgetFromConfig converts the config section into the optimizer's type.
func budgetFromConfig(c config.BudgetConfig) optimizer.Budget {
	return optimizer.Budget{
		TotalCredits: c.TotalCredits,
		SafetyMargin: c.SafetyMargin,
	}
}

// printDecision summarizes the cycle on stdout for a human operator.
func printDecision(d *optimizer.Decision) {
	fmt.Printf("Cycle %s\n", d.CycleID)
	fmt.Printf("  Spend:        %.2f credits (ideal %.2f, error %+.2f)\n",
		d.Snapshot.CurrentMonthSpend, d.IdealSpend, d.SpendError)
	fmt.Printf("  Daily rate:   %.2f credits/day (target %.2f)\n",
		d.Snapshot.DailySpendRate, d.TargetDailyRate)
	fmt.Printf("  PID:          P=%+.3f I=%+.3f D=%+.3f\n",
		d.Components.P, d.Components.I, d.Components.D)
	fmt.Printf("  Baseline:     %.2f%%\n", d.BasePercentage)
	if d.Overridden {
		fmt.Printf("  Routing:      0%% (budget exceeded, hard stop)\n")
		return
	}
	fmt.Printf("  Routing:      %.2f%% (raw %.2f%%)\n", d.FinalPercentage, d.RawPercentage)
}
