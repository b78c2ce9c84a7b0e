package fallback

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAllModelsExhausted matches the condition where every model in the chain
// was either cooling down or failed on capacity within one logical
// operation. It is deliberately distinct from ordinary per-model failure:
// it signals total capacity loss that needs operator attention, and callers
// branch on it (the live path shows "system busy", batch jobs
// sleep-and-retry).
var ErrAllModelsExhausted = errors.New("all fallback models exhausted")

// AllModelsExhaustedError reports that no model in the chain could serve a
// request. It records which models were skipped pre-emptively and which were
// attempted and failed.
type AllModelsExhaustedError struct {
	// Chain is the configured model order.
	Chain []string

	// Skipped are models passed over because they were already cooling.
	Skipped []string

	// Attempted are models that were called and failed on capacity.
	Attempted []string
}

// Error implements the error interface.
func (e *AllModelsExhaustedError) Error() string {
	if len(e.Attempted) == 0 {
		return fmt.Sprintf("all fallback models exhausted (all %d cooling down)", len(e.Chain))
	}
	return fmt.Sprintf("all fallback models exhausted (skipped: %s; failed: %s)",
		joinOrNone(e.Skipped), joinOrNone(e.Attempted))
}

// Is implements error matching for errors.Is().
func (e *AllModelsExhaustedError) Is(target error) bool {
	return target == ErrAllModelsExhausted
}

func joinOrNone(models []string) string {
	if len(models) == 0 {
		return "none"
	}
	return strings.Join(models, ", ")
}
