package config

import "time"

// Default values for every omitted field. The budget and tuning defaults
// mirror the production deployment this controller was built for.
const (
	DefaultTotalCredits = 500000.0
	DefaultSafetyMargin = 0.02

	DefaultKp = 2.0
	DefaultKi = 0.15
	DefaultKd = 0.5

	DefaultSpendBaseURL = "https://api.ternary.app"
	DefaultSpendTimeout = 10 * time.Second
	DefaultMaxRetries   = 3

	DefaultRolloutRepo  = "pytorch/test-infra"
	DefaultRolloutGroup = "lf"

	DefaultStateBackend = "file"
	DefaultStatePath    = "pid_state.json"

	DefaultHistoryPath = "decisions.db"

	DefaultLogFilePath   = "controller.log"
	DefaultLogMaxSizeMB  = 5
	DefaultLogMaxBackups = 3

	DefaultMetricsListen    = ":9090"
	DefaultMetricsNamespace = "creditpilot"
)

// ApplyDefaults fills every zero-valued field with its default.
func ApplyDefaults(cfg *Config) {
	if cfg.Budget.TotalCredits == 0 {
		cfg.Budget.TotalCredits = DefaultTotalCredits
	}
	if cfg.Budget.SafetyMargin == 0 {
		cfg.Budget.SafetyMargin = DefaultSafetyMargin
	}

	if cfg.PID.Kp == 0 && cfg.PID.Ki == 0 && cfg.PID.Kd == 0 {
		cfg.PID.Kp = DefaultKp
		cfg.PID.Ki = DefaultKi
		cfg.PID.Kd = DefaultKd
	}

	if cfg.Spend.BaseURL == "" {
		cfg.Spend.BaseURL = DefaultSpendBaseURL
	}
	if cfg.Spend.Timeout == 0 {
		cfg.Spend.Timeout = DefaultSpendTimeout
	}
	if cfg.Spend.MaxRetries == 0 {
		cfg.Spend.MaxRetries = DefaultMaxRetries
	}

	if cfg.Rollout.Repo == "" {
		cfg.Rollout.Repo = DefaultRolloutRepo
	}
	if cfg.Rollout.Group == "" {
		cfg.Rollout.Group = DefaultRolloutGroup
	}
	if cfg.Rollout.Timeout == 0 {
		cfg.Rollout.Timeout = DefaultSpendTimeout
	}
	if cfg.Rollout.MaxRetries == 0 {
		cfg.Rollout.MaxRetries = DefaultMaxRetries
	}

	if cfg.State.Backend == "" {
		cfg.State.Backend = DefaultStateBackend
	}
	if cfg.State.Path == "" {
		cfg.State.Path = DefaultStatePath
	}

	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}

	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = DefaultLogFilePath
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = DefaultLogMaxBackups
	}

	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = DefaultMetricsListen
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}
