package fallback

import "nutrivita-hq/ceres/pkg/cooldown"

// Select returns the first chain model without an active cooldown. It is a
// stateless read: every call re-evaluates the current store contents, and no
// decision is ever cached across calls. ok is false when the whole chain is
// cooling; that is an ordinary outcome for the caller to branch on, not an
// error.
func Select(store cooldown.Store, chain Chain) (model string, ok bool, err error) {
	return store.FirstAvailable(chain.Models())
}
