// Package cooldown tracks which generative-AI model identifiers are
// temporarily unusable after capacity failures.
//
// A model is on cooldown exactly while its recorded expiry is in the
// future. There is no background timer: the COOLDOWN state ends lazily, the
// next time anything reads the store after the expiry has passed. Records
// are never required to be deleted promptly; CleanExpired is best-effort
// garbage collection, not a correctness mechanism.
//
// Two implementations are provided. MemoryStore is for tests and
// single-process tools. FileStore persists records to a diffable text file
// and is shared, without locks, between the long-running coach server and
// independently scheduled batch jobs. The file is rewritten wholesale on
// each mutation via an atomic rename, so concurrent writers settle on
// last-write-wins with a staleness window of one write. A stale read merely
// retries a still-cooling model, which re-cools it, so the race is benign
// at the call volumes this system sees (tens of writes per minute). The
// trade-off would need revisiting at substantially higher concurrency.
package cooldown
