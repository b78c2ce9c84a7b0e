package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nutrivita-hq/ceres/pkg/batch"
	"nutrivita-hq/ceres/pkg/cli"
)

var batchFlags struct {
	once bool
}

var enqueueFlags struct {
	system string
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run queued digest work through the fallback chain",
	Long: `Drain the batch work queue through the fallback chain.

Batch work runs the chain-exhaustion policy: every ready model is tried in
order. When the whole chain is cooling down, the runner waits out the
configured retry interval and tries once more before deferring the unit to
the next run.

Examples:
  # Drain the queue once and exit
  ceres batch --once

  # Run on the configured cron schedule until interrupted
  ceres batch`,
	RunE: runBatch,
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <prompt>",
	Short: "Add a work unit to the batch queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnqueue,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.AddCommand(enqueueCmd)

	batchCmd.Flags().BoolVar(&batchFlags.once, "once", false, "drain the queue once and exit")
	enqueueCmd.Flags().StringVar(&enqueueFlags.system, "system", "", "system instruction for the unit")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	coord, err := newCoordinator(cfg)
	if err != nil {
		return cli.NewCommandError("batch", err)
	}
	defer coord.Close()

	executor, err := newExecutor(cfg, coord, nil)
	if err != nil {
		return cli.NewCommandError("batch", err)
	}

	queue, err := batch.OpenQueue(cfg.Batch.QueuePath)
	if err != nil {
		return cli.NewCommandError("batch", err)
	}
	defer queue.Close()

	runner, err := batch.NewRunner(batch.RunnerConfig{
		Queue:         queue,
		Executor:      executor,
		RetryInterval: cfg.Batch.RetryInterval,
	})
	if err != nil {
		return cli.NewCommandError("batch", err)
	}

	ctx := cli.SetupSignalHandler()

	if batchFlags.once {
		result, err := runner.RunOnce(ctx)
		if err != nil {
			return cli.NewCommandError("batch", err)
		}
		fmt.Printf("processed %d units: %d succeeded, %d failed, %d deferred\n",
			result.Processed, result.Succeeded, result.Failed, result.Skipped)
		return nil
	}

	if cfg.Batch.Schedule == "" {
		return cli.NewConfigError("batch.schedule",
			"no schedule configured; use --once for a single run")
	}

	scheduler := batch.NewScheduler(runner, cfg.Batch.Schedule)
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("batch", err)
	}

	<-ctx.Done()
	scheduler.Stop()
	return nil
}

func runEnqueue(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	queue, err := batch.OpenQueue(cfg.Batch.QueuePath)
	if err != nil {
		return cli.NewCommandError("enqueue", err)
	}
	defer queue.Close()

	id, err := queue.Enqueue(cmd.Context(), args[0], enqueueFlags.system)
	if err != nil {
		return cli.NewCommandError("enqueue", err)
	}

	fmt.Printf("enqueued unit %d\n", id)
	return nil
}
