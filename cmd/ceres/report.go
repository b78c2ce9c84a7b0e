package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nutrivita-hq/ceres/pkg/cli"
	"nutrivita-hq/ceres/pkg/report"
)

var reportFlags struct {
	json bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Classify system health from the capacity-event log",
	Long: `Mine the JSON log for rate-limit, overload, and chain-exhaustion
events within the trailing window and classify system health as HEALTHY,
WARNING, or CRITICAL. Reads only the log file; no provider calls are made.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolVar(&reportFlags.json, "json", false, "output as JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Report.LogPath == "" {
		return cli.NewConfigError("report.log_path",
			"no log file configured; set telemetry.logging.file_path or report.log_path")
	}

	gen, err := report.NewGenerator(report.GeneratorConfig{
		LogPath:           cfg.Report.LogPath,
		Window:            cfg.Report.Window,
		WarningThreshold:  cfg.Report.WarningThreshold,
		CriticalThreshold: cfg.Report.CriticalThreshold,
	})
	if err != nil {
		return cli.NewCommandError("report", err)
	}

	health, err := gen.Generate()
	if err != nil {
		return cli.NewCommandError("report", err)
	}

	if reportFlags.json {
		out, err := report.FormatJSON(health)
		if err != nil {
			return cli.NewCommandError("report", err)
		}
		fmt.Println(out)
		return nil
	}

	fmt.Print(report.FormatText(health))
	return nil
}
