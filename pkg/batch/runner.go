package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nutrivita-hq/ceres/pkg/fallback"
	"nutrivita-hq/ceres/pkg/provider"
)

// Executor runs a generation request through the fallback chain.
type Executor interface {
	Execute(ctx context.Context, req *provider.GenerateRequest, policy fallback.Policy) (*provider.GenerateResponse, error)
}

// Runner drains the work queue through the fallback chain. Batch work runs
// the chain-exhaustion policy: every available model is tried before a unit
// is considered blocked.
type Runner struct {
	queue         *Queue
	executor      Executor
	retryInterval time.Duration
	batchSize     int
	logger        *slog.Logger
	sleepFunc     func(ctx context.Context, d time.Duration) error
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Queue is the work queue to drain.
	Queue *Queue

	// Executor runs each unit through the fallback chain.
	Executor Executor

	// RetryInterval is how long to wait before the single retry after the
	// whole chain is exhausted.
	RetryInterval time.Duration

	// BatchSize is the maximum number of units per run (default 50).
	BatchSize int
}

// RunResult summarizes one queue drain.
type RunResult struct {
	Processed int
	Succeeded int
	Failed    int
	Skipped   int
}

// NewRunner creates a batch runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("queue cannot be nil")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("executor cannot be nil")
	}
	if cfg.RetryInterval <= 0 {
		return nil, fmt.Errorf("retry interval must be positive")
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Runner{
		queue:         cfg.Queue,
		executor:      cfg.Executor,
		retryInterval: cfg.RetryInterval,
		batchSize:     batchSize,
		logger:        slog.Default().With("component", "batch.runner"),
		sleepFunc:     sleepContext,
	}, nil
}

// RunOnce drains up to one batch of pending units.
func (r *Runner) RunOnce(ctx context.Context) (*RunResult, error) {
	units, err := r.queue.Pending(ctx, r.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending units: %w", err)
	}

	result := &RunResult{}
	for _, unit := range units {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Processed++

		switch err := r.process(ctx, unit); {
		case err == nil:
			result.Succeeded++
		case errors.Is(err, fallback.ErrAllModelsExhausted):
			// Still blocked after the retry. Leave the unit pending for the
			// next scheduled run rather than failing it.
			result.Skipped++
			r.logger.Warn("unit blocked, deferring to next run", "unit_id", unit.ID)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return result, err
		default:
			result.Failed++
			if qerr := r.queue.MarkFailed(ctx, unit.ID, err.Error()); qerr != nil {
				r.logger.Error("failed to record unit failure", "unit_id", unit.ID, "error", qerr)
			}
		}
	}

	r.logger.Info("batch run completed",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)
	return result, nil
}

// process runs one unit, waiting out a fully exhausted chain once.
func (r *Runner) process(ctx context.Context, unit Unit) error {
	req := &provider.GenerateRequest{
		Prompt:            unit.Prompt,
		SystemInstruction: unit.SystemInstruction,
	}

	resp, err := r.executor.Execute(ctx, req, fallback.PolicyChainExhaustion)
	if errors.Is(err, fallback.ErrAllModelsExhausted) {
		r.logger.Warn("all models cooling down, waiting before retry",
			"unit_id", unit.ID,
			"wait", r.retryInterval.String(),
		)
		if serr := r.sleepFunc(ctx, r.retryInterval); serr != nil {
			return serr
		}
		resp, err = r.executor.Execute(ctx, req, fallback.PolicyChainExhaustion)
	}
	if err != nil {
		return err
	}

	return r.queue.MarkDone(ctx, unit.ID, resp.Model, resp.Text)
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
