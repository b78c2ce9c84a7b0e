package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("cooldown.state_path", "path cannot be empty")
	if !strings.Contains(err.Error(), "cooldown.state_path") {
		t.Errorf("expected field in message, got %q", err.Error())
	}

	err = NewConfigError("", "failed to load config")
	if strings.Contains(err.Error(), "in :") {
		t.Errorf("empty field must not render a placeholder, got %q", err.Error())
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	cause := errors.New("queue locked")
	err := NewCommandError("batch", cause)

	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose the cause")
	}
	if !strings.Contains(err.Error(), "batch") {
		t.Errorf("expected command name in message, got %q", err.Error())
	}
}
