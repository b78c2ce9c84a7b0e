package main

import (
	"fmt"

	"nutrivita-hq/ceres/pkg/cli"
	"nutrivita-hq/ceres/pkg/config"
	"nutrivita-hq/ceres/pkg/cooldown"
	"nutrivita-hq/ceres/pkg/fallback"
	"nutrivita-hq/ceres/pkg/provider"
	"nutrivita-hq/ceres/pkg/stats"
	"nutrivita-hq/ceres/pkg/status"
	"nutrivita-hq/ceres/pkg/telemetry/logging"
)

// loadConfig loads, defaults, env-overrides, and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging installs the configured logger and returns the log file
// close function.
func setupLogging(cfg *config.Config) (func() error, error) {
	_, closeFile, err := logging.Setup(logging.Config{
		Level:    cfg.Telemetry.Logging.Level,
		Format:   cfg.Telemetry.Logging.Format,
		FilePath: cfg.Telemetry.Logging.FilePath,
	})
	return closeFile, err
}

// coordinator bundles the shared-state collaborators most commands need.
type coordinator struct {
	store    *cooldown.FileStore
	agg      *stats.FileAggregator
	chain    fallback.Chain
	reporter *status.Reporter
}

// newCoordinator opens the shared cooldown and counter files.
func newCoordinator(cfg *config.Config) (*coordinator, error) {
	store, err := cooldown.NewFileStore(cfg.Cooldown.StatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cooldown store: %w", err)
	}

	agg, err := stats.NewFileAggregator(cfg.Cooldown.CountersPath)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to open usage counters: %w", err)
	}

	chain, err := fallback.NewChain(cfg.Models.Chain)
	if err != nil {
		store.Close()
		agg.Close()
		return nil, err
	}

	return &coordinator{
		store:    store,
		agg:      agg,
		chain:    chain,
		reporter: status.NewReporter(store, agg, chain),
	}, nil
}

// Close releases the shared-state files.
func (c *coordinator) Close() {
	c.store.Close()
	c.agg.Close()
}

// newExecutor wires the provider client and fallback executor on top of the
// coordinator's shared state.
func newExecutor(cfg *config.Config, coord *coordinator, metrics fallback.Metrics) (*fallback.Executor, error) {
	client, err := provider.NewGeminiClient(provider.GeminiConfig{
		Name:    cfg.Provider.Name,
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Timeout: cfg.Provider.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create provider client: %w", err)
	}

	return fallback.NewExecutor(fallback.ExecutorConfig{
		Provider:        client,
		Store:           coord.store,
		Stats:           coord.agg,
		Chain:           coord.chain,
		DefaultCooldown: cfg.Cooldown.DefaultDuration,
		Metrics:         metrics,
	})
}
