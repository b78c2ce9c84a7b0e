// Package fallback selects a usable model from a fixed priority chain and
// executes provider calls against it.
//
// Selection is deliberately simple: the chain order is static
// configuration, an earlier model always beats a later one, and nothing is
// learned or re-ranked at runtime. The selector is a pure function over the
// chain and the cooldown store, re-evaluated on every call.
//
// The executor is where classification happens. A 429-class or 503-class
// failure cools the model down (honoring the provider's Retry-After hint
// when present) and either surfaces immediately (PolicyFailFast, the live
// chat path) or falls through to the next model (PolicyChainExhaustion,
// batch jobs). Exhausting the whole chain in one logical operation is a
// distinct, errors.Is-matchable condition — total capacity loss — never
// merged with ordinary per-model failure. Every other provider error passes
// through untouched and leaves cooldown state alone.
package fallback
