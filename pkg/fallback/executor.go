package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"nutrivita-hq/ceres/pkg/cooldown"
	"nutrivita-hq/ceres/pkg/provider"
	"nutrivita-hq/ceres/pkg/stats"
)

// Policy selects how the executor walks the chain.
type Policy string

const (
	// PolicyFailFast places at most one network call and surfaces its
	// failure immediately. The live chat path uses it because it must not
	// add latency.
	PolicyFailFast Policy = "fail-fast"

	// PolicyChainExhaustion retries through the remaining chain after a
	// capacity failure. Batch jobs use it.
	PolicyChainExhaustion Policy = "chain-exhaustion"
)

// Log event values attached as the "event" attribute on capacity log lines.
// The health report mines these out of the JSON log.
const (
	EventRateLimited        = "rate_limited"
	EventOverloaded         = "overloaded"
	EventAllModelsExhausted = "all_models_exhausted"
)

// Metrics receives executor observations. The telemetry package provides
// the Prometheus implementation; a nil Metrics in the config disables
// observation.
type Metrics interface {
	// RecordCall observes one attempted network call and its outcome
	// ("success", "rate_limited", "overloaded", or "error").
	RecordCall(model, outcome string, latency time.Duration)

	// RecordSaved observes one pre-emptive skip of a cooling model.
	RecordSaved(model string)

	// RecordCooldown observes a cooldown write.
	RecordCooldown(model string, d time.Duration)
}

// Executor invokes the generative-AI provider with a model chosen from the
// fallback chain, classifies the outcome, and drives the cooldown and
// counter writes.
type Executor struct {
	provider        provider.Provider
	store           cooldown.Store
	stats           stats.Aggregator
	chain           Chain
	defaultCooldown time.Duration
	metrics         Metrics
	logger          *slog.Logger
}

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	// Provider is the generative-AI backend.
	Provider provider.Provider

	// Store is the shared cooldown store.
	Store cooldown.Store

	// Stats is the usage counter aggregator.
	Stats stats.Aggregator

	// Chain is the fallback chain.
	Chain Chain

	// DefaultCooldown is applied when a capacity failure carries no
	// Retry-After hint.
	DefaultCooldown time.Duration

	// Metrics optionally receives observations.
	Metrics Metrics
}

// NewExecutor creates an executor. Provider, Store, and Stats are required;
// the chain must be non-empty.
func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Stats == nil {
		return nil, fmt.Errorf("stats aggregator is required")
	}
	if cfg.Chain.Len() == 0 {
		return nil, fmt.Errorf("chain cannot be empty")
	}
	if cfg.DefaultCooldown <= 0 {
		return nil, fmt.Errorf("default cooldown must be positive")
	}

	m := cfg.Metrics
	if m == nil {
		m = noopMetrics{}
	}

	return &Executor{
		provider:        cfg.Provider,
		store:           cfg.Store,
		stats:           cfg.Stats,
		chain:           cfg.Chain,
		defaultCooldown: cfg.DefaultCooldown,
		metrics:         m,
		logger:          slog.Default().With("component", "fallback.executor"),
	}, nil
}

// Execute walks the chain in priority order. Models already cooling are
// skipped without a network call (counted as saved). The first available
// model is called; a capacity failure cools it down and, under
// PolicyChainExhaustion, moves on to the next model. Any non-capacity
// provider error is returned unchanged and never cools a model.
//
// When no model produces a response within this one logical operation, the
// returned error matches ErrAllModelsExhausted.
func (e *Executor) Execute(ctx context.Context, req *provider.GenerateRequest, policy Policy) (*provider.GenerateResponse, error) {
	requestID := uuid.NewString()
	logger := e.logger.With("request_id", requestID, "policy", string(policy))

	var skipped, attempted []string

	for _, model := range e.chain.Models() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		on, err := e.store.IsOnCooldown(model)
		if err != nil {
			return nil, fmt.Errorf("cooldown check for model %q: %w", model, err)
		}
		if on {
			// The pre-emptive skip is the saved call.
			skipped = append(skipped, model)
			if err := e.stats.RecordSaved(); err != nil {
				logger.Warn("failed to record saved call", "error", err)
			}
			e.metrics.RecordSaved(model)
			logger.Debug("skipping cooling model", "model", model)
			continue
		}

		attempted = append(attempted, model)
		if err := e.stats.RecordCall(); err != nil {
			logger.Warn("failed to record call", "error", err)
		}

		start := time.Now()
		resp, err := e.provider.Generate(ctx, model, req)
		latency := time.Since(start)

		if err == nil {
			e.metrics.RecordCall(model, "success", latency)
			logger.Info("provider call succeeded",
				"model", model,
				"latency", latency,
			)
			return resp, nil
		}

		retryAfter, capacity := provider.IsCapacityError(err)
		if !capacity {
			// Unrelated fault: propagate unchanged so a healthy model is
			// never blacklisted for it.
			e.metrics.RecordCall(model, "error", latency)
			logger.Error("provider call failed",
				"model", model,
				"latency", latency,
				"error", err,
			)
			return nil, err
		}

		// Cooldown write and counter increment form one logical
		// failure-handling step so the two cannot drift apart.
		d := retryAfter
		if d <= 0 {
			d = e.defaultCooldown
		}
		if serr := e.store.SetCooldown(model, d); serr != nil {
			logger.Error("failed to persist cooldown", "model", model, "error", serr)
		}
		if serr := e.stats.RecordRateLimited(); serr != nil {
			logger.Warn("failed to record rate limit", "error", serr)
		}

		event := EventRateLimited
		outcome := "rate_limited"
		if errors.Is(err, provider.ErrOverloaded) {
			event = EventOverloaded
			outcome = "overloaded"
		}
		e.metrics.RecordCall(model, outcome, latency)
		e.metrics.RecordCooldown(model, d)

		logger.Warn("model capacity failure, cooling down",
			"event", event,
			"model", model,
			"cooldown", d,
			"retry_after_hint", retryAfter,
			"error", err,
		)

		if policy == PolicyFailFast {
			return nil, err
		}
	}

	logger.Error("all fallback models exhausted",
		"event", EventAllModelsExhausted,
		"chain_len", e.chain.Len(),
		"skipped", len(skipped),
		"attempted", len(attempted),
	)

	return nil, &AllModelsExhaustedError{
		Chain:     e.chain.Models(),
		Skipped:   skipped,
		Attempted: attempted,
	}
}

// Chain returns the executor's fallback chain.
func (e *Executor) Chain() Chain {
	return e.chain
}

// noopMetrics is the default observer when none is configured.
type noopMetrics struct{}

func (noopMetrics) RecordCall(string, string, time.Duration) {}
func (noopMetrics) RecordSaved(string)                       {}
func (noopMetrics) RecordCooldown(string, time.Duration)     {}
