package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("budget.total_credits", "must be positive")
	if !strings.Contains(err.Error(), "budget.total_credits") {
		t.Errorf("ConfigError.Error() = %q, want field name included", err.Error())
	}

	bare := NewConfigError("", "failed to load config")
	if strings.Contains(bare.Error(), "in :") {
		t.Errorf("ConfigError.Error() = %q, want no dangling field", bare.Error())
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewCommandError("run", cause)

	if !errors.Is(err, cause) {
		t.Error("expected CommandError to unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "run") {
		t.Errorf("CommandError.Error() = %q, want command name included", err.Error())
	}
}
