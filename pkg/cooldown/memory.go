package cooldown

import (
	"sync"
	"time"
)

// MemoryStore implements Store using an in-process map. It is the
// implementation used by tests and by tools that do not need to share state
// with sibling processes.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]time.Time
	nowFunc func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]time.Time),
		nowFunc: time.Now,
	}
}

// SetCooldown marks the model unusable until now+d.
func (m *MemoryStore) SetCooldown(model string, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[model] = m.nowFunc().Add(d)
	return nil
}

// IsOnCooldown reports whether the model has an unexpired record.
func (m *MemoryStore) IsOnCooldown(model string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	expiry, ok := m.records[model]
	return ok && expiry.After(m.nowFunc()), nil
}

// FirstAvailable returns the first chain model without an active cooldown.
func (m *MemoryStore) FirstAvailable(chain []string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.nowFunc()
	for _, model := range chain {
		expiry, ok := m.records[model]
		if !ok || !expiry.After(now) {
			return model, true, nil
		}
	}
	return "", false, nil
}

// CleanExpired removes expired records and returns how many were removed.
func (m *MemoryStore) CleanExpired() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFunc()
	removed := 0
	for model, expiry := range m.records {
		if !expiry.After(now) {
			delete(m.records, model)
			removed++
		}
	}
	return removed, nil
}

// Records returns a snapshot of all live records.
func (m *MemoryStore) Records() ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.nowFunc()
	records := make([]Record, 0, len(m.records))
	for model, expiry := range m.records {
		if expiry.After(now) {
			records = append(records, Record{Model: model, Expiry: expiry})
		}
	}
	return records, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
