// Package stats tracks aggregate usage counters for the capacity
// coordinator: how many provider calls were attempted, how many came back
// rate limited, and how many were avoided entirely because the selector
// skipped a cooling model.
//
// All three counters are monotonically increasing. The derived efficiency
// ratio — saved / (attempted + saved) — is recomputed on every read and
// never stored, so it cannot drift from the counters it is derived from.
package stats

import "sync/atomic"

// Snapshot is a point-in-time view of the usage counters.
type Snapshot struct {
	// TotalAPICalls is the number of attempted network calls, regardless of
	// outcome. Pre-emptive skips are not included.
	TotalAPICalls int64 `json:"total_api_calls"`

	// RateLimitedCount is the number of calls that failed on provider
	// capacity (rate limited or overloaded).
	RateLimitedCount int64 `json:"rate_limited_count"`

	// SavedCalls is the number of provider calls avoided because the
	// selector skipped a model that was cooling down.
	SavedCalls int64 `json:"saved_calls"`
}

// Efficiency returns the fraction of call attempts that were saved calls.
// It is 0 when no calls have been attempted or saved.
func (s Snapshot) Efficiency() float64 {
	total := s.TotalAPICalls + s.SavedCalls
	if total == 0 {
		return 0
	}
	return float64(s.SavedCalls) / float64(total)
}

// Aggregator records usage counters. Implementations must be safe for
// concurrent use; the file-backed implementation additionally shares
// counters between processes with the same last-write-wins discipline as
// the cooldown store.
type Aggregator interface {
	// RecordCall counts one attempted network call.
	RecordCall() error

	// RecordRateLimited counts one capacity-classified failure.
	RecordRateLimited() error

	// RecordSaved counts one pre-emptively skipped call.
	RecordSaved() error

	// Snapshot returns the current counter values.
	Snapshot() (Snapshot, error)

	// Close releases any resources held by the aggregator.
	Close() error
}

// MemoryAggregator implements Aggregator with in-process atomic counters.
// It is used by tests and by tools that do not need cross-process counters.
type MemoryAggregator struct {
	totalCalls  atomic.Int64
	rateLimited atomic.Int64
	savedCalls  atomic.Int64
}

// NewMemoryAggregator creates a zeroed in-memory aggregator.
func NewMemoryAggregator() *MemoryAggregator {
	return &MemoryAggregator{}
}

// RecordCall counts one attempted network call.
func (m *MemoryAggregator) RecordCall() error {
	m.totalCalls.Add(1)
	return nil
}

// RecordRateLimited counts one capacity-classified failure.
func (m *MemoryAggregator) RecordRateLimited() error {
	m.rateLimited.Add(1)
	return nil
}

// RecordSaved counts one pre-emptively skipped call.
func (m *MemoryAggregator) RecordSaved() error {
	m.savedCalls.Add(1)
	return nil
}

// Snapshot returns the current counter values.
func (m *MemoryAggregator) Snapshot() (Snapshot, error) {
	return Snapshot{
		TotalAPICalls:    m.totalCalls.Load(),
		RateLimitedCount: m.rateLimited.Load(),
		SavedCalls:       m.savedCalls.Load(),
	}, nil
}

// Close is a no-op for the in-memory aggregator.
func (m *MemoryAggregator) Close() error {
	return nil
}
