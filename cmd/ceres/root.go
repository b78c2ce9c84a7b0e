package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ceres",
	Short: "Ceres - multi-model capacity coordinator for the NutriVita backend",
	Long: `Ceres coordinates a fixed fallback chain of generative-AI models.

When a model reports rate limiting or overload it goes on a shared cooldown
and traffic moves to the next model in the chain. Cooldown state and usage
counters are plain files shared between the API server and batch processes.

Commands:
  - run     start the live API server
  - batch   drain the queued digest work, on a schedule or once
  - status  show per-model cooldown state and usage counters
  - report  classify system health from the capacity-event log
  - clean   remove expired cooldown entries from the state file`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
