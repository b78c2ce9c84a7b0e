package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values and validates the result. A missing file is not
// an error; defaults are used instead so a bare install works out of the box.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Run on defaults.
	default:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. A .env file in the working directory is
// loaded first (without clobbering already-set variables), matching how the
// backend this coordinator serves supplies its API key.
//
// The loading sequence is:
//  1. Load .env (best effort)
//  2. Load YAML from file
//  3. Apply default values
//  4. Apply CERES_* and GEMINI_API_KEY environment overrides
//  5. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format CERES_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// The provider key follows the provider's conventional variable name in
	// addition to the CERES_ namespace.
	if val := os.Getenv("GEMINI_API_KEY"); val != "" {
		cfg.Provider.APIKey = val
	}
	if val := os.Getenv("CERES_PROVIDER_API_KEY"); val != "" {
		cfg.Provider.APIKey = val
	}
	if val := os.Getenv("CERES_PROVIDER_BASE_URL"); val != "" {
		cfg.Provider.BaseURL = val
	}
	setDuration(&cfg.Provider.Timeout, "CERES_PROVIDER_TIMEOUT")

	if val := os.Getenv("CERES_MODELS_CHAIN"); val != "" {
		var chain []string
		for _, m := range strings.Split(val, ",") {
			if m = strings.TrimSpace(m); m != "" {
				chain = append(chain, m)
			}
		}
		if len(chain) > 0 {
			cfg.Models.Chain = chain
		}
	}

	if val := os.Getenv("CERES_COOLDOWN_STATE_PATH"); val != "" {
		cfg.Cooldown.StatePath = val
	}
	if val := os.Getenv("CERES_COOLDOWN_COUNTERS_PATH"); val != "" {
		cfg.Cooldown.CountersPath = val
	}
	setDuration(&cfg.Cooldown.DefaultDuration, "CERES_COOLDOWN_DEFAULT_DURATION")

	if val := os.Getenv("CERES_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}

	if val := os.Getenv("CERES_BATCH_QUEUE_PATH"); val != "" {
		cfg.Batch.QueuePath = val
	}
	if val := os.Getenv("CERES_BATCH_SCHEDULE"); val != "" {
		cfg.Batch.Schedule = val
	}
	setDuration(&cfg.Batch.RetryInterval, "CERES_BATCH_RETRY_INTERVAL")

	if val := os.Getenv("CERES_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CERES_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CERES_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}

// setDuration overrides a duration field from an environment variable when
// the variable holds a valid Go duration string.
func setDuration(dst *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
