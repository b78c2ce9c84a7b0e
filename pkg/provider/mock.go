package provider

import (
	"context"
	"sync"
)

// MockProvider implements Provider with scripted per-model outcomes for
// tests. Each call against a model consumes the next scripted result for
// that model; when the script runs out, the last result repeats.
type MockProvider struct {
	mu      sync.Mutex
	name    string
	scripts map[string][]mockResult
	calls   []string
}

type mockResult struct {
	resp *GenerateResponse
	err  error
}

// NewMockProvider creates an empty mock. Models without a script succeed
// with a canned response.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name:    "mock",
		scripts: make(map[string][]mockResult),
	}
}

// Succeed scripts a successful response for the model.
func (m *MockProvider) Succeed(model, text string) *MockProvider {
	return m.script(model, mockResult{resp: &GenerateResponse{Text: text, Model: model}})
}

// Fail scripts an error for the model.
func (m *MockProvider) Fail(model string, err error) *MockProvider {
	return m.script(model, mockResult{err: err})
}

func (m *MockProvider) script(model string, r mockResult) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[model] = append(m.scripts[model], r)
	return m
}

// Generate returns the next scripted result for the model.
func (m *MockProvider) Generate(ctx context.Context, model string, req *GenerateRequest) (*GenerateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, model)

	script := m.scripts[model]
	if len(script) == 0 {
		return &GenerateResponse{Text: "ok", Model: model}, nil
	}

	result := script[0]
	if len(script) > 1 {
		m.scripts[model] = script[1:]
	}
	if result.err != nil {
		return nil, result.err
	}
	return result.resp, nil
}

// Name identifies the provider.
func (m *MockProvider) Name() string {
	return m.name
}

// Calls returns the models called, in order.
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
