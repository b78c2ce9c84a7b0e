// Package logging configures structured logging for Ceres. All packages log
// through log/slog; this package builds the handler stack from
// configuration and installs it as the default logger.
//
// When a log file is configured, records are additionally written there in
// JSON regardless of the console format, because the health report mines
// capacity events out of that file.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Config configures the logger.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string

	// Format is the console output format ("json" or "text").
	Format string

	// FilePath, when set, duplicates records into a JSON log file.
	FilePath string

	// Writer overrides the console writer (defaults to os.Stdout).
	Writer io.Writer
}

// Setup builds the logger, installs it as slog's default, and returns it
// together with a close function for the log file (a no-op when no file is
// configured).
func Setup(cfg Config) (*slog.Logger, func() error, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}

	var console slog.Handler
	switch cfg.Format {
	case "", "json":
		console = slog.NewJSONHandler(writer, opts)
	case "text":
		console = slog.NewTextHandler(writer, opts)
	default:
		return nil, nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	closeFile := func() error { return nil }
	handler := console

	if cfg.FilePath != "" {
		if dir := filepath.Dir(cfg.FilePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %q: %w", cfg.FilePath, err)
		}
		closeFile = file.Close
		handler = newMultiHandler(console, slog.NewJSONHandler(file, opts))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, closeFile, nil
}

// parseLevel converts a level name to a slog.Level.
func parseLevel(level string) (slog.Level, error) {
	switch level {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", level)
	}
}

// multiHandler fans records out to several handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func newMultiHandler(handlers ...slog.Handler) *multiHandler {
	return &multiHandler{handlers: handlers}
}

// Enabled reports whether any wrapped handler accepts the level.
func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes the record to every wrapped handler that accepts its level.
func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WithAttrs returns a multiHandler whose wrapped handlers carry the attrs.
func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

// WithGroup returns a multiHandler whose wrapped handlers carry the group.
func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
