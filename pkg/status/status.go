// Package status renders a read-only snapshot of the coordinator: which
// models are READY or COOLDOWN, the raw usage counters, and the derived
// efficiency. Building a report is a pure local read over the cooldown
// store and the counters — it consumes no API quota and is safe to call
// arbitrarily often, for human dashboards and for automated
// should-I-proceed checks alike.
package status

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nutrivita-hq/ceres/pkg/cooldown"
	"nutrivita-hq/ceres/pkg/fallback"
	"nutrivita-hq/ceres/pkg/stats"
)

// ModelStatus is the state of one chain model at report time.
type ModelStatus struct {
	// Model is the model identifier.
	Model string `json:"model"`

	// State is READY or COOLDOWN.
	State cooldown.State `json:"state"`

	// RemainingSeconds is how long the cooldown has left (0 when READY).
	RemainingSeconds int64 `json:"remaining_seconds"`
}

// Report is a point-in-time snapshot of the whole coordinator.
type Report struct {
	// GeneratedAt is when the report was built.
	GeneratedAt time.Time `json:"generated_at"`

	// Models lists every chain model in priority order.
	Models []ModelStatus `json:"models"`

	// CoolingCount is the number of models currently in COOLDOWN.
	CoolingCount int `json:"cooling_count"`

	// Usage holds the raw counters.
	Usage stats.Snapshot `json:"usage"`

	// Efficiency is the fraction of call attempts that were saved calls,
	// derived from the counters at report time.
	Efficiency float64 `json:"efficiency"`
}

// AllCooling reports whether every chain model is in COOLDOWN. Batch jobs
// use it as a cheap should-I-proceed check before claiming work.
func (r *Report) AllCooling() bool {
	return len(r.Models) > 0 && r.CoolingCount == len(r.Models)
}

// Reporter builds reports from a store and an aggregator.
type Reporter struct {
	store   cooldown.Store
	stats   stats.Aggregator
	chain   fallback.Chain
	nowFunc func() time.Time
}

// NewReporter creates a reporter over the given store and aggregator.
func NewReporter(store cooldown.Store, agg stats.Aggregator, chain fallback.Chain) *Reporter {
	return &Reporter{
		store:   store,
		stats:   agg,
		chain:   chain,
		nowFunc: time.Now,
	}
}

// Report builds a snapshot. Cooldown state is evaluated lazily against the
// clock at call time; a record whose expiry has passed reads as READY even
// if it is still physically present in the store.
func (r *Reporter) Report() (*Report, error) {
	records, err := r.store.Records()
	if err != nil {
		return nil, fmt.Errorf("failed to read cooldown records: %w", err)
	}

	usage, err := r.stats.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to read usage counters: %w", err)
	}

	now := r.nowFunc()
	expiries := make(map[string]time.Time, len(records))
	for _, rec := range records {
		expiries[rec.Model] = rec.Expiry
	}

	report := &Report{
		GeneratedAt: now,
		Usage:       usage,
		Efficiency:  usage.Efficiency(),
	}
	for _, model := range r.chain.Models() {
		ms := ModelStatus{Model: model, State: cooldown.StateReady}
		if expiry, ok := expiries[model]; ok && expiry.After(now) {
			ms.State = cooldown.StateCooldown
			ms.RemainingSeconds = int64(expiry.Sub(now).Round(time.Second).Seconds())
			report.CoolingCount++
		}
		report.Models = append(report.Models, ms)
	}
	return report, nil
}

// FormatText renders the report for humans.
func FormatText(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Model availability (%d/%d cooling)\n", r.CoolingCount, len(r.Models))
	for _, m := range r.Models {
		if m.State == cooldown.StateCooldown {
			fmt.Fprintf(&b, "  %-28s %-9s %ds remaining\n", m.Model, m.State, m.RemainingSeconds)
		} else {
			fmt.Fprintf(&b, "  %-28s %s\n", m.Model, m.State)
		}
	}

	fmt.Fprintf(&b, "\nUsage\n")
	fmt.Fprintf(&b, "  total API calls:    %d\n", r.Usage.TotalAPICalls)
	fmt.Fprintf(&b, "  rate limited:       %d\n", r.Usage.RateLimitedCount)
	fmt.Fprintf(&b, "  saved calls:        %d\n", r.Usage.SavedCalls)
	fmt.Fprintf(&b, "  efficiency:         %.1f%%\n", r.Efficiency*100)

	return b.String()
}

// FormatJSON renders the report for scripts.
func FormatJSON(r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}
