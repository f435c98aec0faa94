package config

import (
	"time"

	"github.com/mercator-hq/creditpilot/pkg/pid"
)

// Config is the root controller configuration.
type Config struct {
	Budget    BudgetConfig    `yaml:"budget"`
	PID       PIDConfig       `yaml:"pid"`
	Spend     SpendConfig     `yaml:"spend"`
	Rollout   RolloutConfig   `yaml:"rollout"`
	State     StateConfig     `yaml:"state"`
	History   HistoryConfig   `yaml:"history"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// BudgetConfig describes the monthly credit budget.
type BudgetConfig struct {
	// TotalCredits is the monthly credit grant on the secondary account.
	TotalCredits float64 `yaml:"total_credits"`

	// SafetyMargin is the fraction of the grant held back as headroom.
	SafetyMargin float64 `yaml:"safety_margin"`
}

// PIDConfig carries the controller gains.
type PIDConfig struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

// Gains converts the config into pid.Gains.
func (c PIDConfig) Gains() pid.Gains {
	return pid.Gains{Kp: c.Kp, Ki: c.Ki, Kd: c.Kd}
}

// SpendConfig configures the spend analytics provider.
type SpendConfig struct {
	BaseURL    string        `yaml:"base_url"`
	TenantID   string        `yaml:"tenant_id"`
	ProjectID  string        `yaml:"project_id"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// RolloutConfig configures the baseline percentage source.
type RolloutConfig struct {
	CommentURL string        `yaml:"comment_url"`
	Repo       string        `yaml:"repo"`
	Group      string        `yaml:"group"`
	Token      string        `yaml:"token"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// StateConfig configures controller state persistence.
type StateConfig struct {
	// Backend selects the persistence backend: "file" or "sqlite".
	Backend string `yaml:"backend"`

	// Path is the state file or database path.
	Path string `yaml:"path"`
}

// HistoryConfig configures the decision audit trail.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`

	// RetentionDays prunes records older than this in daemon mode.
	// Zero keeps everything.
	RetentionDays int `yaml:"retention_days"`
}

// LoggingConfig configures log output. Field semantics match
// telemetry/logging.Config.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// MetricsConfig configures the Prometheus endpoint used in daemon mode.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listen_address"`
	Namespace     string `yaml:"namespace"`
}

// SchedulerConfig configures daemon mode.
type SchedulerConfig struct {
	// Schedule is a cron expression; empty means one-shot operation.
	Schedule string `yaml:"schedule"`

	// WatchConfig reloads tunables when the config file changes.
	WatchConfig bool `yaml:"watch_config"`
}
