package config

import "time"

// Config is the root configuration for Ceres.
// It is loaded from a YAML file, filled with defaults, optionally overridden
// by CERES_* environment variables, and validated before use.
type Config struct {
	// Models configures the fallback chain of model identifiers.
	Models ModelsConfig `yaml:"models"`

	// Provider configures the generative-AI backend.
	Provider ProviderConfig `yaml:"provider"`

	// Cooldown configures the shared cooldown/counter state.
	Cooldown CooldownConfig `yaml:"cooldown"`

	// Server configures the live coach HTTP server.
	Server ServerConfig `yaml:"server"`

	// Batch configures the batch digest runner.
	Batch BatchConfig `yaml:"batch"`

	// Report configures the log-mining health report.
	Report ReportConfig `yaml:"report"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ModelsConfig configures the fallback chain.
type ModelsConfig struct {
	// Chain is the ordered list of model identifiers. Earlier entries are
	// always preferred; the order is fixed for the lifetime of the process.
	Chain []string `yaml:"chain"`
}

// ProviderConfig configures the generative-AI provider client.
type ProviderConfig struct {
	// Name identifies the provider in logs and errors (e.g., "gemini").
	Name string `yaml:"name"`

	// BaseURL is the provider API base URL.
	BaseURL string `yaml:"base_url"`

	// APIKey is the provider API key. Usually supplied via the
	// GEMINI_API_KEY environment variable rather than the config file.
	APIKey string `yaml:"api_key"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// CooldownConfig configures the shared cooldown store and usage counters.
type CooldownConfig struct {
	// StatePath is the path of the textual cooldown state file shared
	// between the server and batch processes.
	StatePath string `yaml:"state_path"`

	// CountersPath is the path of the textual usage counters file.
	CountersPath string `yaml:"counters_path"`

	// DefaultDuration is the cooldown applied when the provider does not
	// supply a Retry-After hint.
	DefaultDuration time.Duration `yaml:"default_duration"`

	// Watch enables fsnotify-based observation of the state file so the
	// server notices writes made by sibling processes.
	Watch bool `yaml:"watch"`
}

// ServerConfig configures the live HTTP server.
type ServerConfig struct {
	// ListenAddress is the host:port to bind.
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// BatchConfig configures the batch digest runner.
type BatchConfig struct {
	// QueuePath is the path of the SQLite work-unit queue.
	QueuePath string `yaml:"queue_path"`

	// Schedule is a standard cron expression for scheduled runs.
	// Empty disables the scheduler; `ceres batch --once` still works.
	Schedule string `yaml:"schedule"`

	// RetryInterval is how long a batch worker sleeps after finding every
	// model cooling before retrying selection exactly once more.
	RetryInterval time.Duration `yaml:"retry_interval"`
}

// ReportConfig configures the health report generator.
type ReportConfig struct {
	// LogPath is the JSON log file mined for capacity events.
	LogPath string `yaml:"log_path"`

	// Window is the trailing window considered by the report.
	Window time.Duration `yaml:"window"`

	// WarningThreshold is the capacity-event count (rate-limit plus
	// overload) at which the system is classified WARNING.
	WarningThreshold int `yaml:"warning_threshold"`

	// CriticalThreshold is the capacity-event count at which the system is
	// classified CRITICAL. Any chain-exhaustion event is CRITICAL outright.
	CriticalThreshold int `yaml:"critical_threshold"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json" or "text").
	Format string `yaml:"format"`

	// FilePath, when set, duplicates JSON log output into a file. The
	// health report mines this file.
	FilePath string `yaml:"file_path"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled toggles the /metrics endpoint.
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	Namespace string `yaml:"namespace"`
}
