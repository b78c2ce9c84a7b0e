// Package config provides configuration management for Ceres.
//
// Configuration is loaded from a YAML file, filled with defaults, optionally
// overridden by environment variables, and validated before use. The two
// operational constants that shape capacity handling — the default cooldown
// applied when the provider sends no Retry-After hint, and the interval a
// batch worker waits after finding the whole chain cooling — are ordinary
// configuration fields, never literals in the code that uses them.
//
// # Loading
//
//	cfg, err := config.LoadConfigWithEnvOverrides("ceres.yaml")
//
// A missing file is not an error; the defaults describe a working
// single-host deployment. Environment variables use the naming convention
// CERES_SECTION_FIELD (for example CERES_COOLDOWN_DEFAULT_DURATION). The
// provider API key is additionally read from GEMINI_API_KEY, and a .env file
// in the working directory is honored, matching the backend this
// coordinator fronts.
//
// # Example
//
//	models:
//	  chain: ["gemini-2.0-flash", "gemini-2.0-flash-lite", "gemini-1.5-flash"]
//
//	cooldown:
//	  state_path: data/cooldowns.state
//	  default_duration: 300s
//
//	batch:
//	  schedule: "*/15 * * * *"
//	  retry_interval: 60s
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
package config
