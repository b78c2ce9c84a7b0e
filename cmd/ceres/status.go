package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nutrivita-hq/ceres/pkg/cli"
	"nutrivita-hq/ceres/pkg/status"
)

var statusFlags struct {
	json bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-model cooldown state and usage counters",
	Long: `Show each model in the fallback chain with its cooldown state, the
remaining cooldown seconds, and the shared usage counters. Reads only the
shared state files; no provider calls are made.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusFlags.json, "json", false, "output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	coord, err := newCoordinator(cfg)
	if err != nil {
		return cli.NewCommandError("status", err)
	}
	defer coord.Close()

	report, err := coord.reporter.Report()
	if err != nil {
		return cli.NewCommandError("status", err)
	}

	if statusFlags.json {
		out, err := status.FormatJSON(report)
		if err != nil {
			return cli.NewCommandError("status", err)
		}
		fmt.Println(out)
		return nil
	}

	fmt.Print(status.FormatText(report))
	return nil
}
