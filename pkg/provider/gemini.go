package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// GeminiClient implements Provider against the Gemini generateContent HTTP
// API. Responses are decoded structurally; failure classification uses the
// HTTP status code and the Retry-After header, never pattern matching on
// the response text.
type GeminiClient struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	// Name identifies the provider in logs and errors (default "gemini").
	Name string

	// BaseURL is the API base URL, without a trailing slash.
	BaseURL string

	// APIKey authenticates requests.
	APIKey string

	// Timeout is the per-request timeout (default 60s).
	Timeout time.Duration
}

// NewGeminiClient creates a Gemini API client.
func NewGeminiClient(cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}
	if cfg.Name == "" {
		cfg.Name = "gemini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &GeminiClient{
		name:    cfg.Name,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  slog.Default().With("component", "provider.gemini"),
	}, nil
}

// Name identifies the provider.
func (g *GeminiClient) Name() string {
	return g.name
}

// Request/response wire types for the generateContent endpoint.
type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenCfg   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenCfg struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends the request to the named model and classifies the outcome.
func (g *GeminiClient) Generate(ctx context.Context, model string, req *GenerateRequest) (*GenerateResponse, error) {
	wireReq := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: req.Prompt}},
		}},
	}
	if req.SystemInstruction != "" {
		wireReq.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemInstruction}},
		}
	}
	if req.MaxOutputTokens > 0 {
		wireReq.GenerationConfig = &geminiGenCfg{MaxOutputTokens: req.MaxOutputTokens}
	}

	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, &ProviderError{
			Provider: g.name,
			Model:    model,
			Message:  "failed to marshal request",
			Cause:    err,
		}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{
			Provider: g.name,
			Model:    model,
			Message:  "failed to build request",
			Cause:    err,
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{
			Provider: g.name,
			Model:    model,
			Message:  "request failed",
			Cause:    err,
		}
	}
	defer resp.Body.Close()

	latency := time.Since(start)
	g.logger.Debug("provider response",
		"model", model,
		"status", resp.StatusCode,
		"latency", latency,
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return g.decodeResponse(resp.Body, model)
	}

	errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, &RateLimitError{
			Provider:   g.name,
			Model:      model,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    string(errorBody),
		}

	case http.StatusServiceUnavailable:
		return nil, &OverloadedError{
			Provider:   g.name,
			Model:      model,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    string(errorBody),
		}

	default:
		return nil, &ProviderError{
			Provider:   g.name,
			Model:      model,
			StatusCode: resp.StatusCode,
			Message:    string(errorBody),
		}
	}
}

// decodeResponse extracts the generated text from a success response.
func (g *GeminiClient) decodeResponse(body io.Reader, model string) (*GenerateResponse, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &ProviderError{
			Provider: g.name,
			Model:    model,
			Message:  "failed to read response",
			Cause:    err,
		}
	}

	var wireResp geminiResponse
	if err := json.Unmarshal(data, &wireResp); err != nil {
		return nil, &ProviderError{
			Provider: g.name,
			Model:    model,
			Message:  "failed to decode response",
			Cause:    err,
		}
	}
	if len(wireResp.Candidates) == 0 || len(wireResp.Candidates[0].Content.Parts) == 0 {
		return nil, &ProviderError{
			Provider: g.name,
			Model:    model,
			Message:  "response contained no candidates",
		}
	}

	return &GenerateResponse{
		Text:  wireResp.Candidates[0].Content.Parts[0].Text,
		Model: model,
	}, nil
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	// Try parsing as seconds
	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}

	// Try parsing as HTTP date
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}

	return 0
}
