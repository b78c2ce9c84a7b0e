package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	// Field is the dotted path of the invalid field (e.g., "models.chain").
	Field string

	// Message describes what is invalid about the field.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates all validation failures found in one pass.
type ValidationErrors struct {
	Errors []*ValidationError
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "configuration validation failed with %d errors:", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&b, "\n  - %s", err)
	}
	return b.String()
}

// Validate checks the configuration for errors. It collects every problem
// found rather than stopping at the first one.
func Validate(cfg *Config) error {
	var errs []*ValidationError

	add := func(field, message string) {
		errs = append(errs, &ValidationError{Field: field, Message: message})
	}

	// Models
	if len(cfg.Models.Chain) == 0 {
		add("models.chain", "at least one model is required")
	}
	seen := make(map[string]bool)
	for i, model := range cfg.Models.Chain {
		if model == "" {
			add(fmt.Sprintf("models.chain[%d]", i), "model identifier cannot be empty")
			continue
		}
		if seen[model] {
			add(fmt.Sprintf("models.chain[%d]", i), fmt.Sprintf("duplicate model %q", model))
		}
		seen[model] = true
	}

	// Provider
	if cfg.Provider.BaseURL == "" {
		add("provider.base_url", "field is required")
	} else if u, err := url.Parse(cfg.Provider.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("provider.base_url", fmt.Sprintf("invalid URL %q", cfg.Provider.BaseURL))
	}
	if cfg.Provider.Timeout < 0 {
		add("provider.timeout", "must not be negative")
	}

	// Cooldown
	if cfg.Cooldown.StatePath == "" {
		add("cooldown.state_path", "field is required")
	}
	if cfg.Cooldown.CountersPath == "" {
		add("cooldown.counters_path", "field is required")
	}
	if cfg.Cooldown.DefaultDuration <= 0 {
		add("cooldown.default_duration", "must be positive")
	}

	// Server
	if cfg.Server.ListenAddress != "" {
		if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
			add("server.listen_address", fmt.Sprintf("invalid host:port %q", cfg.Server.ListenAddress))
		}
	}

	// Batch
	if cfg.Batch.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Batch.Schedule); err != nil {
			add("batch.schedule", fmt.Sprintf("invalid cron expression %q: %v", cfg.Batch.Schedule, err))
		}
	}
	if cfg.Batch.RetryInterval < 0 {
		add("batch.retry_interval", "must not be negative")
	}

	// Report
	if cfg.Report.Window <= 0 {
		add("report.window", "must be positive")
	}
	if cfg.Report.CriticalThreshold < cfg.Report.WarningThreshold {
		add("report.critical_threshold", "must be greater than or equal to warning_threshold")
	}

	// Telemetry
	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		add("telemetry.logging.level", fmt.Sprintf("invalid level %q (must be debug, info, warn, or error)", cfg.Telemetry.Logging.Level))
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		add("telemetry.logging.format", fmt.Sprintf("invalid format %q (must be json or text)", cfg.Telemetry.Logging.Format))
	}

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}
