package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nutrivita-hq/ceres/pkg/cli"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove expired cooldown entries from the state file",
	Long: `Remove expired entries from the shared cooldown state file.

Expired entries are harmless (an expired cooldown reads as READY), so this
is housekeeping, not correctness. Safe to run while the server is up.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	coord, err := newCoordinator(cfg)
	if err != nil {
		return cli.NewCommandError("clean", err)
	}
	defer coord.Close()

	removed, err := coord.store.CleanExpired()
	if err != nil {
		return cli.NewCommandError("clean", err)
	}

	fmt.Printf("removed %d expired cooldown entries\n", removed)
	return nil
}
