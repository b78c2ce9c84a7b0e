package cooldown

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FileStore implements Store on a plain text file shared between the coach
// server and batch processes.
//
// Every mutation is a full read-modify-write-replace cycle: read all records,
// apply one change, write a temporary file, and rename it over the original.
// The rename is atomic on POSIX filesystems, so readers never observe a
// partially written file. Concurrent writers from different processes may
// race; the accepted outcome is last-write-wins with a staleness window
// bounded by one write. A stale read only causes a redundant attempt against
// a still-cooling model, which re-cools it identically, so no cross-process
// locking is used.
//
// The file holds one record per line:
//
//	model-id<TAB>expiry-epoch-seconds
//
// A missing file is an empty store (all models available). A malformed line
// is skipped and logged, never fatal.
type FileStore struct {
	path    string
	logger  *slog.Logger
	nowFunc func() time.Time

	// mu serializes writers within this process. It does nothing for
	// sibling processes; see the last-write-wins note above.
	mu sync.Mutex
}

// NewFileStore creates a file-backed store at the given path. The parent
// directory is created if needed; the file itself is created lazily on the
// first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("state path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	return &FileStore{
		path:    path,
		logger:  slog.Default().With("component", "cooldown.store"),
		nowFunc: time.Now,
	}, nil
}

// Path returns the state file path.
func (f *FileStore) Path() string {
	return f.path
}

// SetCooldown marks the model unusable until now+d, replacing any prior
// record for the same model.
func (f *FileStore) SetCooldown(model string, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records := f.read()
	records[model] = f.nowFunc().Add(d)
	return f.replace(records)
}

// IsOnCooldown reports whether the model has an unexpired record.
func (f *FileStore) IsOnCooldown(model string) (bool, error) {
	expiry, ok := f.read()[model]
	return ok && expiry.After(f.nowFunc()), nil
}

// FirstAvailable returns the first chain model without an active cooldown.
// The whole chain is evaluated against one file read, so the result is
// consistent with a single snapshot.
func (f *FileStore) FirstAvailable(chain []string) (string, bool, error) {
	records := f.read()
	now := f.nowFunc()

	for _, model := range chain {
		expiry, ok := records[model]
		if !ok || !expiry.After(now) {
			return model, true, nil
		}
	}
	return "", false, nil
}

// CleanExpired removes expired records and returns how many were removed.
// When nothing is expired the file is left untouched, which keeps the
// operation idempotent and avoids needless churn for watchers.
func (f *FileStore) CleanExpired() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records := f.read()
	now := f.nowFunc()

	removed := 0
	for model, expiry := range records {
		if !expiry.After(now) {
			delete(records, model)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, f.replace(records)
}

// Records returns a snapshot of all live records.
func (f *FileStore) Records() ([]Record, error) {
	now := f.nowFunc()

	var records []Record
	for model, expiry := range f.read() {
		if expiry.After(now) {
			records = append(records, Record{Model: model, Expiry: expiry})
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Model < records[j].Model })
	return records, nil
}

// Close is a no-op; the store holds no open handles between operations.
func (f *FileStore) Close() error {
	return nil
}

// read loads all records from the state file. A missing file yields an empty
// map. Malformed lines are skipped and logged.
func (f *FileStore) read() map[string]time.Time {
	records := make(map[string]time.Time)

	file, err := os.Open(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("failed to open state file, treating as empty",
				"path", f.path,
				"error", err,
			)
		}
		return records
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

		model, epochStr, ok := strings.Cut(line, "\t")
		if !ok || model == "" {
			f.logger.Warn("skipping malformed cooldown record",
				"path", f.path,
				"line", lineNo,
			)
			continue
		}
		epoch, err := strconv.ParseInt(strings.TrimSpace(epochStr), 10, 64)
		if err != nil {
			f.logger.Warn("skipping malformed cooldown record",
				"path", f.path,
				"line", lineNo,
				"error", err,
			)
			continue
		}
		records[model] = time.Unix(epoch, 0)
	}
	if err := scanner.Err(); err != nil {
		f.logger.Warn("error reading state file", "path", f.path, "error", err)
	}
	return records
}

// replace writes the full record set to a temporary file and atomically
// renames it over the state file.
func (f *FileStore) replace(records map[string]time.Time) error {
	models := make([]string, 0, len(records))
	for model := range records {
		models = append(models, model)
	}
	sort.Strings(models)

	var b strings.Builder
	for _, model := range models {
		fmt.Fprintf(&b, "%s\t%d\n", model, records[model].Unix())
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
