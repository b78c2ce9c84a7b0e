package cooldown

import "time"

// State is the per-model availability state.
type State string

const (
	// StateReady means the model may be selected.
	StateReady State = "READY"

	// StateCooldown means the model is excluded from selection until its
	// cooldown expires.
	StateCooldown State = "COOLDOWN"
)

// Record is a single persisted cooldown entry. A record marks its model
// unusable exactly while Expiry is in the future; expired records are
// harmless leftovers that CleanExpired removes on a best-effort basis.
type Record struct {
	// Model is the model identifier.
	Model string

	// Expiry is when the cooldown ends.
	Expiry time.Time
}

// Expired reports whether the record's cooldown has passed at the given time.
func (r Record) Expired(now time.Time) bool {
	return !r.Expiry.After(now)
}

// Store tracks which models are cooling down. Implementations must be safe
// for concurrent use within a process; the file-backed implementation is
// additionally shared between processes with last-write-wins semantics.
//
// The store is handed explicitly to the selector and executor rather than
// accessed as a singleton, so tests can substitute the in-memory
// implementation.
type Store interface {
	// SetCooldown marks the model unusable until now+d, replacing any prior
	// record for the same model.
	SetCooldown(model string, d time.Duration) error

	// IsOnCooldown reports whether the model currently has an unexpired
	// cooldown record.
	IsOnCooldown(model string) (bool, error)

	// FirstAvailable scans the chain in order and returns the first model
	// without an active cooldown, evaluated against a single consistent
	// snapshot. ok is false when every model is cooling; that is an ordinary
	// outcome, not an error.
	FirstAvailable(chain []string) (model string, ok bool, err error)

	// CleanExpired removes records whose cooldown has passed and returns how
	// many were removed. Running it twice in a row removes nothing the
	// second time.
	CleanExpired() (int, error)

	// Records returns a snapshot of all live (unexpired) records.
	Records() ([]Record, error)

	// Close releases any resources held by the store.
	Close() error
}
