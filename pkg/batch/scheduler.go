package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the batch runner on a cron schedule.
type Scheduler struct {
	runner   *Runner
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a scheduler that drains the queue on the given
// cron expression (e.g. "0 3 * * *" for daily at 3 AM).
func NewScheduler(runner *Runner, schedule string) *Scheduler {
	return &Scheduler{
		runner:   runner,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "batch.scheduler"),
	}
}

// Start begins the scheduled runs. An empty schedule disables the
// scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("batch schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runBatch(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule batch runs: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("batch scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runBatch executes one scheduled queue drain.
func (s *Scheduler) runBatch(ctx context.Context) {
	s.logger.Info("starting scheduled batch run")

	result, err := s.runner.RunOnce(ctx)
	if err != nil {
		s.logger.Error("scheduled batch run failed", "error", err)
		return
	}
	if result.Processed == 0 {
		s.logger.Debug("scheduled batch run completed, queue empty")
		return
	}
	s.logger.Info("scheduled batch run completed",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)
}

// Stop stops the scheduler and waits for any running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("batch scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled run time.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
