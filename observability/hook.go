// Package observability defines the step-event callback surface: a
// single hook invoked at fixed points in the request lifecycle,
// carrying enough detail for a caller to log or export metrics without
// this package prescribing a backend.
package observability

import (
	"time"

	"github.com/kestrelmem/semanticmemory/internal/obsmetrics"
)

// Step names one point in the request lifecycle.
type Step string

const (
	StepIntentExtractionStart    Step = "intent-extraction-start"
	StepIntentExtractionComplete Step = "intent-extraction-complete"
	StepIntentExtractionError    Step = "intent-extraction-error"

	StepCacheCheckStart Step = "cache-check-start"
	StepCacheHit        Step = "cache-hit"
	StepCacheMiss       Step = "cache-miss"

	StepGenerationStart    Step = "generation-start"
	StepGenerationComplete Step = "generation-complete"

	StepCacheStoreStart    Step = "cache-store-start"
	StepCacheStoreComplete Step = "cache-store-complete"
	StepCacheStoreError    Step = "cache-store-error"
)

// StepEvent describes one lifecycle checkpoint. Fields other than Step
// are populated only when meaningful for that step.
type StepEvent struct {
	Step Step

	// Scope is the caller-supplied cache scope/namespace, when the
	// caller sets one; the core itself does not partition by scope.
	Scope string
	// CacheID is the composite id computed for the call, once known.
	CacheID string

	// UserIntention is the normalized cache input text fingerprinted
	// for this call.
	UserIntention string
	// ExtractedIntent carries the intent-variant's structured result
	// on StepIntentExtractionComplete.
	ExtractedIntent any

	// CacheScore is the winning candidate's similarity score on
	// StepCacheHit.
	CacheScore float64

	Duration time.Duration
	Err      error
}

// Hook receives a StepEvent at each checkpoint. Implementations must
// not block; slow work should be handed off.
type Hook func(StepEvent)

// Dispatch records ev against the per-step counter and then calls hook
// if non-nil, so callers don't need a nil check at every call site and
// every emitted step is counted even when no hook is configured.
func Dispatch(hook Hook, ev StepEvent) {
	obsmetrics.StepEventsTotal.WithLabelValues(string(ev.Step)).Inc()
	if hook != nil {
		hook(ev)
	}
}
