package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for values the controller cannot run
// with. It is called after defaults and environment overrides.
func Validate(cfg *Config) error {
	if cfg.Budget.TotalCredits <= 0 {
		return fmt.Errorf("budget.total_credits must be positive, got %v", cfg.Budget.TotalCredits)
	}
	if cfg.Budget.SafetyMargin < 0 || cfg.Budget.SafetyMargin >= 1 {
		return fmt.Errorf("budget.safety_margin must be in [0, 1), got %v", cfg.Budget.SafetyMargin)
	}

	if cfg.Spend.BaseURL == "" {
		return fmt.Errorf("spend.base_url is required")
	}

	if cfg.Rollout.CommentURL == "" {
		return fmt.Errorf("rollout.comment_url is required")
	}
	if cfg.Rollout.Repo == "" {
		return fmt.Errorf("rollout.repo is required")
	}

	switch cfg.State.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("state.backend must be \"file\" or \"sqlite\", got %q", cfg.State.Backend)
	}
	if cfg.State.Path == "" {
		return fmt.Errorf("state.path is required")
	}

	if cfg.History.Enabled && cfg.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	if cfg.History.RetentionDays < 0 {
		return fmt.Errorf("history.retention_days cannot be negative, got %d", cfg.History.RetentionDays)
	}

	if cfg.Scheduler.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Scheduler.Schedule); err != nil {
			return fmt.Errorf("scheduler.schedule %q is not a valid cron expression: %w",
				cfg.Scheduler.Schedule, err)
		}
	}

	return nil
}
