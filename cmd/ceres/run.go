package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"nutrivita-hq/ceres/pkg/cli"
	"nutrivita-hq/ceres/pkg/cooldown"
	"nutrivita-hq/ceres/pkg/fallback"
	"nutrivita-hq/ceres/pkg/server"
	"nutrivita-hq/ceres/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Ceres API server",
	Long: `Start the Ceres API server with the specified configuration.

The server handles live generation requests on the fail-fast policy: a
request routes to the first ready model in the chain and surfaces a capacity
failure immediately instead of making the user wait.

Examples:
  # Start with default config
  ceres run

  # Start with custom config
  ceres run --config /etc/ceres/config.yaml

  # Override listen address
  ceres run --listen 0.0.0.0:8080

  # Validate config without starting the server
  ceres run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	coord, err := newCoordinator(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer coord.Close()

	var m *metrics.Metrics
	var execMetrics fallback.Metrics
	if cfg.Telemetry.Metrics.Enabled {
		m = metrics.New(cfg.Telemetry.Metrics.Namespace)
		execMetrics = m
	}

	executor, err := newExecutor(cfg, coord, execMetrics)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	opts := server.Options{}
	if m != nil {
		opts.MetricsHandler = m.Handler()
		opts.MetricsPath = cfg.Telemetry.Metrics.Path
		opts.Observer = m
	}
	srv := server.NewServer(cfg.Server, executor, coord.reporter, opts)

	ctx := cli.SetupSignalHandler()

	// Observe cooldown writes made by sibling processes so the metrics
	// snapshot stays current between status requests.
	if cfg.Cooldown.Watch && m != nil {
		watcher, err := cooldown.NewWatcher(cooldown.WatcherConfig{Path: coord.store.Path()})
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer watcher.Stop()

		go func() {
			err := watcher.Watch(ctx, func() {
				report, err := coord.reporter.Report()
				if err != nil {
					slog.Warn("failed to refresh status after state change", "error", err)
					return
				}
				for _, ms := range report.Models {
					m.UpdateModelState(ms.Model, ms.State == cooldown.StateCooldown)
				}
			})
			if err != nil {
				slog.Error("state file watcher failed", "error", err)
			}
		}()
	}

	slog.Info("starting ceres",
		"version", Version,
		"chain", cfg.Models.Chain,
		"state_path", cfg.Cooldown.StatePath,
	)

	return srv.Start(ctx)
}
