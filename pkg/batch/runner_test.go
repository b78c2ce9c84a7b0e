package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"nutrivita-hq/ceres/pkg/fallback"
	"nutrivita-hq/ceres/pkg/provider"
)

// scriptedExecutor returns pre-scripted results in order, repeating the
// last entry.
type scriptedExecutor struct {
	script []error
	calls  int
}

func (e *scriptedExecutor) Execute(ctx context.Context, req *provider.GenerateRequest, policy fallback.Policy) (*provider.GenerateResponse, error) {
	idx := e.calls
	if idx >= len(e.script) {
		idx = len(e.script) - 1
	}
	e.calls++

	if policy != fallback.PolicyChainExhaustion {
		return nil, errors.New("batch work must run the chain-exhaustion policy")
	}
	if err := e.script[idx]; err != nil {
		return nil, err
	}
	return &provider.GenerateResponse{Text: "ok", Model: "alpha"}, nil
}

func newTestRunner(t *testing.T, q *Queue, exec Executor) (*Runner, *[]time.Duration) {
	t.Helper()

	runner, err := NewRunner(RunnerConfig{
		Queue:         q,
		Executor:      exec,
		RetryInterval: 60 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}

	var sleeps []time.Duration
	runner.sleepFunc = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return runner, &sleeps
}

func TestRunOnceSuccess(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	if _, err := q.Enqueue(ctx, "analyze breakfast", ""); err != nil {
		t.Fatal(err)
	}

	runner, sleeps := newTestRunner(t, q, &scriptedExecutor{script: []error{nil}})

	result, err := runner.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Succeeded != 1 || result.Processed != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(*sleeps) != 0 {
		t.Errorf("success must not sleep, got %v", *sleeps)
	}

	counts, err := q.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[StatusDone] != 1 {
		t.Errorf("expected unit done, got %v", counts)
	}
}

func TestRunOnceExhaustedRetriesOnceAfterSleep(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	if _, err := q.Enqueue(ctx, "analyze lunch", ""); err != nil {
		t.Fatal(err)
	}

	exhausted := &fallback.AllModelsExhaustedError{Chain: []string{"alpha", "beta"}}
	exec := &scriptedExecutor{script: []error{exhausted, nil}}
	runner, sleeps := newTestRunner(t, q, exec)

	result, err := runner.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Succeeded != 1 {
		t.Errorf("expected success on retry, got %+v", result)
	}
	if exec.calls != 2 {
		t.Errorf("expected exactly 2 execute calls, got %d", exec.calls)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 60*time.Second {
		t.Errorf("expected one 60s wait before the retry, got %v", *sleeps)
	}
}

func TestRunOnceExhaustedTwiceDefersUnit(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	if _, err := q.Enqueue(ctx, "analyze dinner", ""); err != nil {
		t.Fatal(err)
	}

	exhausted := &fallback.AllModelsExhaustedError{Chain: []string{"alpha"}}
	exec := &scriptedExecutor{script: []error{exhausted, exhausted}}
	runner, _ := newTestRunner(t, q, exec)

	result, err := runner.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Skipped != 1 || result.Failed != 0 {
		t.Errorf("blocked unit must be skipped, not failed: %+v", result)
	}
	if exec.calls != 2 {
		t.Errorf("expected exactly one retry, got %d calls", exec.calls)
	}

	// The unit stays pending for the next scheduled run.
	units, err := q.Pending(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 {
		t.Errorf("expected unit still pending, got %d", len(units))
	}
}

func TestRunOnceNonCapacityErrorFailsUnit(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	if _, err := q.Enqueue(ctx, "analyze snack", ""); err != nil {
		t.Fatal(err)
	}

	exec := &scriptedExecutor{script: []error{
		&provider.ProviderError{Provider: "gemini", Model: "alpha", StatusCode: 400, Message: "bad request"},
	}}
	runner, sleeps := newTestRunner(t, q, exec)

	result, err := runner.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Failed != 1 {
		t.Errorf("expected unit failed, got %+v", result)
	}
	if len(*sleeps) != 0 {
		t.Errorf("non-capacity errors must not wait, got %v", *sleeps)
	}

	counts, err := q.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[StatusFailed] != 1 {
		t.Errorf("expected failed count 1, got %v", counts)
	}
}

func TestRunOnceCancelledSleepStopsRun(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()
	if _, err := q.Enqueue(ctx, "a", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := q.Enqueue(ctx, "b", ""); err != nil {
		t.Fatal(err)
	}

	exhausted := &fallback.AllModelsExhaustedError{Chain: []string{"alpha"}}
	runner, _ := newTestRunner(t, q, &scriptedExecutor{script: []error{exhausted}})
	runner.sleepFunc = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	if _, err := runner.RunOnce(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation to surface, got %v", err)
	}
}

func TestNewRunnerValidation(t *testing.T) {
	q := newTestQueue(t)
	exec := &scriptedExecutor{script: []error{nil}}

	if _, err := NewRunner(RunnerConfig{Executor: exec, RetryInterval: time.Second}); err == nil {
		t.Error("expected error for nil queue")
	}
	if _, err := NewRunner(RunnerConfig{Queue: q, RetryInterval: time.Second}); err == nil {
		t.Error("expected error for nil executor")
	}
	if _, err := NewRunner(RunnerConfig{Queue: q, Executor: exec}); err == nil {
		t.Error("expected error for missing retry interval")
	}
}

func TestSchedulerValidatesExpression(t *testing.T) {
	q := newTestQueue(t)
	runner, _ := newTestRunner(t, q, &scriptedExecutor{script: []error{nil}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler(runner, "not a cron line")
	if err := s.Start(ctx); err == nil {
		t.Error("expected error for invalid schedule")
	}

	s = NewScheduler(runner, "")
	if err := s.Start(ctx); err != nil {
		t.Errorf("empty schedule must be a no-op, got %v", err)
	}
	if s.IsRunning() {
		t.Error("empty schedule must not start the cron loop")
	}

	s = NewScheduler(runner, "*/5 * * * *")
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if !s.IsRunning() {
		t.Error("expected scheduler running")
	}
	if s.NextRun() == nil {
		t.Error("expected a next run time")
	}
	s.Stop()
	if s.IsRunning() {
		t.Error("expected scheduler stopped")
	}
}
