package config

import "time"

// Default values for configuration fields.
const (
	// Provider defaults
	DefaultProviderName    = "gemini"
	DefaultProviderBaseURL = "https://generativelanguage.googleapis.com"
	DefaultProviderTimeout = 60 * time.Second

	// Cooldown defaults. The 300s default matches the operational value
	// observed in production; it applies only when the provider does not
	// send a Retry-After hint.
	DefaultStatePath        = "data/cooldowns.state"
	DefaultCountersPath     = "data/usage.counters"
	DefaultCooldownDuration = 300 * time.Second

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Batch defaults
	DefaultQueuePath          = "data/batch.db"
	DefaultBatchRetryInterval = 60 * time.Second

	// Report defaults
	DefaultReportWindow      = time.Hour
	DefaultWarningThreshold  = 5
	DefaultCriticalThreshold = 20

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "ceres"
)

// DefaultChain is the fallback chain used when none is configured.
var DefaultChain = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-flash",
}

// ApplyDefaults fills in default values for any unset configuration fields.
// It modifies the configuration in place.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Models
	if len(cfg.Models.Chain) == 0 {
		cfg.Models.Chain = append([]string(nil), DefaultChain...)
	}

	// Provider
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = DefaultProviderName
	}
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = DefaultProviderBaseURL
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = DefaultProviderTimeout
	}

	// Cooldown
	if cfg.Cooldown.StatePath == "" {
		cfg.Cooldown.StatePath = DefaultStatePath
	}
	if cfg.Cooldown.CountersPath == "" {
		cfg.Cooldown.CountersPath = DefaultCountersPath
	}
	if cfg.Cooldown.DefaultDuration == 0 {
		cfg.Cooldown.DefaultDuration = DefaultCooldownDuration
	}

	// Server
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Batch
	if cfg.Batch.QueuePath == "" {
		cfg.Batch.QueuePath = DefaultQueuePath
	}
	if cfg.Batch.RetryInterval == 0 {
		cfg.Batch.RetryInterval = DefaultBatchRetryInterval
	}

	// Report
	if cfg.Report.LogPath == "" {
		cfg.Report.LogPath = cfg.Telemetry.Logging.FilePath
	}
	if cfg.Report.Window == 0 {
		cfg.Report.Window = DefaultReportWindow
	}
	if cfg.Report.WarningThreshold == 0 {
		cfg.Report.WarningThreshold = DefaultWarningThreshold
	}
	if cfg.Report.CriticalThreshold == 0 {
		cfg.Report.CriticalThreshold = DefaultCriticalThreshold
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// NewDefaultConfig returns a configuration populated entirely with defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
		Cooldown: CooldownConfig{Watch: true},
	}
	ApplyDefaults(cfg)
	return cfg
}
