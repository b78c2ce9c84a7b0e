// Package provider wraps the generative-AI backend behind a small
// interface: send a prompt to a named model, get text back or a typed
// error. The coordinator depends only on the error classification contract
// — rate limited, overloaded, or anything else — never on the shape of the
// provider's wire format or error bodies.
package provider

import "context"

// GenerateRequest is a single generation request.
type GenerateRequest struct {
	// Prompt is the user-visible prompt text.
	Prompt string

	// SystemInstruction optionally steers the model (coaching persona,
	// output constraints). Empty means none.
	SystemInstruction string

	// MaxOutputTokens caps the response length (0 = provider default).
	MaxOutputTokens int
}

// GenerateResponse is a successful generation result.
type GenerateResponse struct {
	// Text is the generated text.
	Text string

	// Model is the model that produced the response.
	Model string
}

// Provider is the external generative-AI collaborator. Implementations
// classify failures into the typed errors of this package: RateLimitError
// for 429-class signals, OverloadedError for 503-class signals, and
// ProviderError for everything else.
type Provider interface {
	// Generate sends the request to the named model.
	Generate(ctx context.Context, model string, req *GenerateRequest) (*GenerateResponse, error)

	// Name identifies the provider in logs and errors.
	Name() string
}
