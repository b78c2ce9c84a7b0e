// Package report classifies overall system health by mining the structured
// JSON log for capacity events within a trailing window. It reads the log
// the executor writes — rate-limit, overload, and chain-exhaustion events
// carry a machine-readable "event" attribute — and never touches the
// provider, so generating a report consumes no quota.
package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"nutrivita-hq/ceres/pkg/fallback"
)

// Level is the overall health classification.
type Level string

const (
	// LevelHealthy means capacity events in the window stayed below the
	// warning threshold and the chain was never exhausted.
	LevelHealthy Level = "HEALTHY"

	// LevelWarning means capacity events reached the warning threshold.
	LevelWarning Level = "WARNING"

	// LevelCritical means the chain was exhausted at least once, or
	// capacity events reached the critical threshold.
	LevelCritical Level = "CRITICAL"
)

// HealthReport summarizes capacity events within the trailing window.
type HealthReport struct {
	// Level is the overall classification.
	Level Level `json:"level"`

	// WindowStart and WindowEnd bound the trailing window.
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	// RateLimited is the count of rate-limit events in the window.
	RateLimited int `json:"rate_limited"`

	// Overloaded is the count of overload events in the window.
	Overloaded int `json:"overloaded"`

	// Exhausted is the count of chain-exhaustion events in the window.
	Exhausted int `json:"exhausted"`

	// ScannedLines is how many log lines were read.
	ScannedLines int `json:"scanned_lines"`

	// SkippedLines is how many lines could not be parsed.
	SkippedLines int `json:"skipped_lines"`
}

// CapacityEvents is the combined rate-limit and overload count the
// thresholds apply to.
func (r *HealthReport) CapacityEvents() int {
	return r.RateLimited + r.Overloaded
}

// Generator mines a JSON log file for capacity events.
type Generator struct {
	logPath           string
	window            time.Duration
	warningThreshold  int
	criticalThreshold int
	logger            *slog.Logger
	nowFunc           func() time.Time
}

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	// LogPath is the JSON log file to mine.
	LogPath string

	// Window is the trailing window to consider.
	Window time.Duration

	// WarningThreshold is the capacity-event count that classifies WARNING.
	WarningThreshold int

	// CriticalThreshold is the capacity-event count that classifies
	// CRITICAL. Any chain-exhaustion event is CRITICAL regardless.
	CriticalThreshold int
}

// NewGenerator creates a health report generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.LogPath == "" {
		return nil, fmt.Errorf("log path cannot be empty")
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("window must be positive")
	}
	if cfg.CriticalThreshold < cfg.WarningThreshold {
		return nil, fmt.Errorf("critical threshold must be >= warning threshold")
	}
	return &Generator{
		logPath:           cfg.LogPath,
		window:            cfg.Window,
		warningThreshold:  cfg.WarningThreshold,
		criticalThreshold: cfg.CriticalThreshold,
		logger:            slog.Default().With("component", "report.generator"),
		nowFunc:           time.Now,
	}, nil
}

// logLine is the subset of a slog JSON record the miner cares about.
type logLine struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
}

// Generate scans the log and classifies system health. A missing log file
// yields an empty, HEALTHY report: no evidence of trouble is not an error.
func (g *Generator) Generate() (*HealthReport, error) {
	now := g.nowFunc()
	report := &HealthReport{
		WindowStart: now.Add(-g.window),
		WindowEnd:   now,
	}

	file, err := os.Open(g.logPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			report.Level = LevelHealthy
			return report, nil
		}
		return nil, fmt.Errorf("failed to open log file %q: %w", g.logPath, err)
	}
	defer file.Close()

	if err := g.scan(file, report); err != nil {
		return nil, err
	}

	report.Level = g.classify(report)
	return report, nil
}

// scan reads the log line by line, counting in-window capacity events.
func (g *Generator) scan(r io.Reader, report *HealthReport) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		report.ScannedLines++

		var entry logLine
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			report.SkippedLines++
			continue
		}
		if entry.Event == "" || entry.Time.Before(report.WindowStart) || entry.Time.After(report.WindowEnd) {
			continue
		}

		switch entry.Event {
		case fallback.EventRateLimited:
			report.RateLimited++
		case fallback.EventOverloaded:
			report.Overloaded++
		case fallback.EventAllModelsExhausted:
			report.Exhausted++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to scan log file: %w", err)
	}
	return nil
}

// classify applies the thresholds. Chain exhaustion is total capacity loss
// and is CRITICAL on its own, whatever the event counts say.
func (g *Generator) classify(report *HealthReport) Level {
	if report.Exhausted > 0 {
		return LevelCritical
	}
	capacity := report.CapacityEvents()
	if capacity >= g.criticalThreshold && g.criticalThreshold > 0 {
		return LevelCritical
	}
	if capacity >= g.warningThreshold && g.warningThreshold > 0 {
		return LevelWarning
	}
	return LevelHealthy
}

// FormatText renders the report for humans.
func FormatText(r *HealthReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "System health: %s\n", r.Level)
	fmt.Fprintf(&b, "Window:        %s .. %s\n",
		r.WindowStart.Format(time.RFC3339), r.WindowEnd.Format(time.RFC3339))
	fmt.Fprintf(&b, "  rate limited:     %d\n", r.RateLimited)
	fmt.Fprintf(&b, "  overloaded:       %d\n", r.Overloaded)
	fmt.Fprintf(&b, "  chain exhausted:  %d\n", r.Exhausted)
	fmt.Fprintf(&b, "  lines scanned:    %d (%d skipped)\n", r.ScannedLines, r.SkippedLines)
	return b.String()
}

// FormatJSON renders the report for scripts.
func FormatJSON(r *HealthReport) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}
