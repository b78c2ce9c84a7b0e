package stats

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Counter keys as they appear in the persisted counters file.
const (
	keyTotalAPICalls    = "total_api_calls"
	keyRateLimitedCount = "rate_limited_count"
	keySavedCalls       = "saved_calls"
)

// FileAggregator implements Aggregator on a plain text key=value file shared
// between processes. Each increment is a read-modify-write-replace cycle with
// an atomic rename, mirroring the cooldown store's discipline: last writer
// wins, a missing file is an all-zero counter set, and a malformed line is
// skipped and logged rather than aborting the read.
//
// A racing increment from a sibling process can be lost inside one write
// window. The counters feed an efficiency ratio, not billing, so bounded
// undercounting at tens of writes per minute is acceptable.
type FileAggregator struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileAggregator creates a file-backed aggregator at the given path. The
// parent directory is created if needed.
func NewFileAggregator(path string) (*FileAggregator, error) {
	if path == "" {
		return nil, fmt.Errorf("counters path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create counters directory: %w", err)
		}
	}
	return &FileAggregator{
		path:   path,
		logger: slog.Default().With("component", "stats.counters"),
	}, nil
}

// RecordCall counts one attempted network call.
func (f *FileAggregator) RecordCall() error {
	return f.increment(keyTotalAPICalls)
}

// RecordRateLimited counts one capacity-classified failure.
func (f *FileAggregator) RecordRateLimited() error {
	return f.increment(keyRateLimitedCount)
}

// RecordSaved counts one pre-emptively skipped call.
func (f *FileAggregator) RecordSaved() error {
	return f.increment(keySavedCalls)
}

// Snapshot returns the current counter values.
func (f *FileAggregator) Snapshot() (Snapshot, error) {
	counters := f.read()
	return Snapshot{
		TotalAPICalls:    counters[keyTotalAPICalls],
		RateLimitedCount: counters[keyRateLimitedCount],
		SavedCalls:       counters[keySavedCalls],
	}, nil
}

// Close is a no-op; the aggregator holds no open handles between operations.
func (f *FileAggregator) Close() error {
	return nil
}

// increment bumps one counter by a full read-modify-write-replace cycle.
func (f *FileAggregator) increment(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	counters := f.read()
	counters[key]++
	return f.replace(counters)
}

// read loads the counters file. Missing file means all zeros; malformed
// lines are skipped and logged.
func (f *FileAggregator) read() map[string]int64 {
	counters := map[string]int64{
		keyTotalAPICalls:    0,
		keyRateLimitedCount: 0,
		keySavedCalls:       0,
	}

	file, err := os.Open(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("failed to open counters file, treating as zero",
				"path", f.path,
				"error", err,
			)
		}
		return counters
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, valStr, ok := strings.Cut(line, "=")
		if !ok {
			f.logger.Warn("skipping malformed counter line",
				"path", f.path,
				"line", lineNo,
			)
			continue
		}
		val, err := strconv.ParseInt(strings.TrimSpace(valStr), 10, 64)
		if err != nil || val < 0 {
			f.logger.Warn("skipping malformed counter line",
				"path", f.path,
				"line", lineNo,
				"error", err,
			)
			continue
		}
		counters[strings.TrimSpace(key)] = val
	}
	if err := scanner.Err(); err != nil {
		f.logger.Warn("error reading counters file", "path", f.path, "error", err)
	}
	return counters
}

// replace writes the full counter set to a temporary file and atomically
// renames it over the counters file.
func (f *FileAggregator) replace(counters map[string]int64) error {
	var b strings.Builder
	// Fixed key order keeps the file diffable.
	for _, key := range []string{keyTotalAPICalls, keyRateLimitedCount, keySavedCalls} {
		fmt.Fprintf(&b, "%s=%d\n", key, counters[key])
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp counters file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write counters file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close counters file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace counters file: %w", err)
	}
	return nil
}
