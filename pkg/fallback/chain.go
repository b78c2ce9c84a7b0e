package fallback

import "fmt"

// Chain is the fixed, ordered list of model identifiers consulted until one
// is available. Order is static priority: an earlier model is always
// preferred over a later one, regardless of history. The chain is configured
// once per process and never mutated, so every caller sees the same order
// and selection is deterministic given the same store snapshot.
type Chain struct {
	models []string
}

// NewChain creates a chain from the configured model order. The list must be
// non-empty and free of duplicates and empty identifiers.
func NewChain(models []string) (Chain, error) {
	if len(models) == 0 {
		return Chain{}, fmt.Errorf("fallback chain cannot be empty")
	}
	seen := make(map[string]bool, len(models))
	for _, model := range models {
		if model == "" {
			return Chain{}, fmt.Errorf("fallback chain contains an empty model identifier")
		}
		if seen[model] {
			return Chain{}, fmt.Errorf("fallback chain contains duplicate model %q", model)
		}
		seen[model] = true
	}
	return Chain{models: append([]string(nil), models...)}, nil
}

// Models returns the chain in priority order. The returned slice is a copy.
func (c Chain) Models() []string {
	return append([]string(nil), c.models...)
}

// Len returns the number of models in the chain.
func (c Chain) Len() int {
	return len(c.models)
}
