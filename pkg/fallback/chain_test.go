package fallback

import (
	"testing"

	"nutrivita-hq/ceres/pkg/cooldown"
)

func TestNewChain(t *testing.T) {
	tests := []struct {
		name    string
		models  []string
		wantErr bool
	}{
		{"valid", []string{"x", "y", "z"}, false},
		{"single", []string{"x"}, false},
		{"empty", nil, true},
		{"empty identifier", []string{"x", ""}, true},
		{"duplicate", []string{"x", "y", "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, err := NewChain(tt.models)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if chain.Len() != len(tt.models) {
				t.Errorf("expected len %d, got %d", len(tt.models), chain.Len())
			}
		})
	}
}

func TestChainModelsIsACopy(t *testing.T) {
	chain, err := NewChain([]string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}

	models := chain.Models()
	models[0] = "mutated"

	if chain.Models()[0] != "x" {
		t.Error("mutating the returned slice must not affect the chain")
	}
}

func TestSelect(t *testing.T) {
	store := cooldown.NewMemoryStore()
	chain, err := NewChain([]string{"x", "y", "z"})
	if err != nil {
		t.Fatal(err)
	}

	model, ok, err := Select(store, chain)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || model != "x" {
		t.Errorf("expected (x, true), got (%q, %v)", model, ok)
	}
}
