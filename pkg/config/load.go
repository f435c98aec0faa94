package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the configuration from a YAML file, applies defaults and
// environment overrides, and validates the result.
//
// A missing file is not an error: the defaults plus environment variables
// are a complete minimal deployment. Any other read or parse failure is.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults-only run.
	case err != nil:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides using the
// CREDITPILOT_SECTION_FIELD convention. TERNARY_API_KEY and GITHUB_TOKEN
// are honored as well, matching how the deployment's secret store already
// names them.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("CREDITPILOT_BUDGET_TOTAL_CREDITS"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Budget.TotalCredits = f
		}
	}
	if val := os.Getenv("CREDITPILOT_BUDGET_SAFETY_MARGIN"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Budget.SafetyMargin = f
		}
	}

	if val := os.Getenv("CREDITPILOT_PID_KP"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.PID.Kp = f
		}
	}
	if val := os.Getenv("CREDITPILOT_PID_KI"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.PID.Ki = f
		}
	}
	if val := os.Getenv("CREDITPILOT_PID_KD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.PID.Kd = f
		}
	}

	if val := os.Getenv("CREDITPILOT_SPEND_BASE_URL"); val != "" {
		cfg.Spend.BaseURL = val
	}
	if val := os.Getenv("CREDITPILOT_SPEND_TENANT_ID"); val != "" {
		cfg.Spend.TenantID = val
	}
	if val := os.Getenv("CREDITPILOT_SPEND_PROJECT_ID"); val != "" {
		cfg.Spend.ProjectID = val
	}
	if val := os.Getenv("CREDITPILOT_SPEND_API_KEY"); val != "" {
		cfg.Spend.APIKey = val
	} else if val := os.Getenv("TERNARY_API_KEY"); val != "" && cfg.Spend.APIKey == "" {
		cfg.Spend.APIKey = val
	}
	if val := os.Getenv("CREDITPILOT_SPEND_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Spend.Timeout = d
		}
	}

	if val := os.Getenv("CREDITPILOT_ROLLOUT_COMMENT_URL"); val != "" {
		cfg.Rollout.CommentURL = val
	}
	if val := os.Getenv("CREDITPILOT_ROLLOUT_REPO"); val != "" {
		cfg.Rollout.Repo = val
	}
	if val := os.Getenv("CREDITPILOT_ROLLOUT_GROUP"); val != "" {
		cfg.Rollout.Group = val
	}
	if val := os.Getenv("CREDITPILOT_ROLLOUT_TOKEN"); val != "" {
		cfg.Rollout.Token = val
	} else if val := os.Getenv("GITHUB_TOKEN"); val != "" && cfg.Rollout.Token == "" {
		cfg.Rollout.Token = val
	}

	if val := os.Getenv("CREDITPILOT_STATE_BACKEND"); val != "" {
		cfg.State.Backend = val
	}
	if val := os.Getenv("CREDITPILOT_STATE_PATH"); val != "" {
		cfg.State.Path = val
	}

	if val := os.Getenv("CREDITPILOT_HISTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Enabled = b
		}
	}
	if val := os.Getenv("CREDITPILOT_HISTORY_PATH"); val != "" {
		cfg.History.Path = val
	}

	if val := os.Getenv("CREDITPILOT_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("CREDITPILOT_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("CREDITPILOT_LOGGING_FILE_PATH"); val != "" {
		cfg.Logging.FilePath = val
	}

	if val := os.Getenv("CREDITPILOT_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("CREDITPILOT_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Metrics.ListenAddress = val
	}

	if val := os.Getenv("CREDITPILOT_SCHEDULER_SCHEDULE"); val != "" {
		cfg.Scheduler.Schedule = val
	}
}
