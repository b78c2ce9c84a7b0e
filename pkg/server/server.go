// Package server provides the HTTP API for the generation coordinator:
// live generation requests, the cooldown status report, health, and
// Prometheus metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"nutrivita-hq/ceres/pkg/config"
	"nutrivita-hq/ceres/pkg/fallback"
	"nutrivita-hq/ceres/pkg/provider"
	"nutrivita-hq/ceres/pkg/status"
)

// Executor runs a generation request through the fallback chain.
type Executor interface {
	Execute(ctx context.Context, req *provider.GenerateRequest, policy fallback.Policy) (*provider.GenerateResponse, error)
}

// Reporter builds the per-model cooldown status report.
type Reporter interface {
	Report() (*status.Report, error)
}

// StateObserver receives per-model cooldown state refreshes. The metrics
// registry implements it; a nil observer disables the refresh.
type StateObserver interface {
	UpdateModelState(model string, coolingDown bool)
}

// Server is the coordinator's HTTP API server.
type Server struct {
	config         config.ServerConfig
	executor       Executor
	reporter       Reporter
	metricsHandler http.Handler
	metricsPath    string
	observer       StateObserver
	httpServer     *http.Server
	shutdownChan   chan struct{}
	shutdownOnce   sync.Once
	mu             sync.RWMutex
	isRunning      bool
}

// Options carries the optional server collaborators.
type Options struct {
	// MetricsHandler, when set, is mounted at MetricsPath.
	MetricsHandler http.Handler

	// MetricsPath is the metrics mount point (defaults to /metrics).
	MetricsPath string

	// Observer receives cooldown state refreshes on each status request.
	Observer StateObserver
}

// NewServer creates the API server.
func NewServer(cfg config.ServerConfig, executor Executor, reporter Reporter, opts Options) *Server {
	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	return &Server{
		config:         cfg,
		executor:       executor,
		reporter:       reporter,
		metricsHandler: opts.MetricsHandler,
		metricsPath:    metricsPath,
		observer:       opts.Observer,
		shutdownChan:   make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting api server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("api server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/v1/chat", newChatHandler(s.executor))
	mux.Handle("/v1/status", newStatusHandler(s.reporter, s.observer))
	mux.Handle("/healthz", newHealthHandler())
	if s.metricsHandler != nil {
		mux.Handle(s.metricsPath, s.metricsHandler)
	}

	var handler http.Handler = mux
	handler = requestIDMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = recoveryMiddleware(handler)

	return handler
}
