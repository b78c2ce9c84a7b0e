package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"nutrivita-hq/ceres/pkg/cooldown"
	"nutrivita-hq/ceres/pkg/fallback"
	"nutrivita-hq/ceres/pkg/provider"
)

// chatRequest is the wire format of a live generation request.
type chatRequest struct {
	Prompt            string `json:"prompt"`
	SystemInstruction string `json:"system_instruction,omitempty"`
	MaxOutputTokens   int    `json:"max_output_tokens,omitempty"`
}

// chatResponse is the wire format of a successful generation.
type chatResponse struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// errorResponse is the wire format of an API error. Upstream provider
// error text is never copied into it.
type errorResponse struct {
	Error string `json:"error"`
}

// chatHandler serves live generation requests. Live traffic runs the
// fail-fast policy: a capacity failure surfaces immediately rather than
// walking the rest of the chain, and the handler never sleeps.
type chatHandler struct {
	executor Executor
	logger   *slog.Logger
}

func newChatHandler(executor Executor) *chatHandler {
	return &chatHandler{
		executor: executor,
		logger:   slog.Default().With("component", "server.chat"),
	}
}

func (h *chatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	resp, err := h.executor.Execute(r.Context(), &provider.GenerateRequest{
		Prompt:            req.Prompt,
		SystemInstruction: req.SystemInstruction,
		MaxOutputTokens:   req.MaxOutputTokens,
	}, fallback.PolicyFailFast)
	if err != nil {
		h.writeExecuteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Text: resp.Text, Model: resp.Model})
}

// writeExecuteError maps executor failures to API status codes without
// leaking upstream error text to clients.
func (h *chatHandler) writeExecuteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, fallback.ErrAllModelsExhausted):
		writeError(w, http.StatusServiceUnavailable, "all models are busy, please retry shortly")
	case errors.Is(err, provider.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "model capacity exceeded, please retry shortly")
	case errors.Is(err, provider.ErrOverloaded):
		writeError(w, http.StatusServiceUnavailable, "model temporarily overloaded, please retry shortly")
	case r.Context().Err() != nil:
		writeError(w, http.StatusBadGateway, "request cancelled")
	default:
		h.logger.Error("generation failed", "error", err, "request_id", requestIDFromContext(r.Context()))
		writeError(w, http.StatusBadGateway, "upstream provider error")
	}
}

// statusHandler serves the cooldown status report.
type statusHandler struct {
	reporter Reporter
	observer StateObserver
}

func newStatusHandler(reporter Reporter, observer StateObserver) *statusHandler {
	return &statusHandler{reporter: reporter, observer: observer}
}

func (h *statusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	report, err := h.reporter.Report()
	if err != nil {
		slog.Error("failed to build status report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build status report")
		return
	}

	if h.observer != nil {
		for _, m := range report.Models {
			h.observer.UpdateModelState(m.Model, m.State == cooldown.StateCooldown)
		}
	}

	writeJSON(w, http.StatusOK, report)
}

// healthHandler reports process liveness. It deliberately ignores cooldown
// state: a fully cooling chain is a capacity condition, not a dead process.
type healthHandler struct {
	startedAt time.Time
}

func newHealthHandler() *healthHandler {
	return &healthHandler{startedAt: time.Now()}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Error: message})
}
