// Package obsmetrics exposes Prometheus counters and histograms for
// the cache's hit/miss/store outcomes.
package obsmetrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StepEventsTotal counts every dispatched lifecycle step by name,
	// regardless of outcome. Incremented once per observability.Dispatch
	// call, so it covers steps the more specific counters below don't
	// label individually (cache-check-start, generation-start/complete).
	StepEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semanticmemory_step_events_total",
			Help: "Total lifecycle step events dispatched, by step name.",
		},
		[]string{"step"},
	)

	// LookupOutcomesTotal counts cache-check results by outcome (hit,
	// miss, refresh) and variant (the id prefix).
	LookupOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semanticmemory_lookup_outcomes_total",
			Help: "Total cache lookups by outcome.",
		},
		[]string{"outcome", "variant"},
	)

	// WriteBackOutcomesTotal counts write-back attempts by outcome:
	// complete, lock_lost, error.
	WriteBackOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semanticmemory_writeback_outcomes_total",
			Help: "Total write-back attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// IntentExtractionOutcomesTotal counts extractor results.
	IntentExtractionOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semanticmemory_intent_extraction_outcomes_total",
			Help: "Total intent extractions by outcome: complete, error.",
		},
		[]string{"outcome"},
	)

	// LookupLatencySeconds measures time from call entry to the
	// cache-check decision (hit/miss/refresh), excluding any
	// subsequent replay or live-provider time.
	LookupLatencySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "semanticmemory_lookup_latency_seconds",
			Help:    "Latency of the fingerprint+embed+query+select path.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
	)

	// CacheSimilarityScore tracks the winning candidate's score on
	// every hit, to help tune the threshold.
	CacheSimilarityScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "semanticmemory_cache_similarity_score",
			Help:    "Similarity score of the candidate selected on a cache hit.",
			Buckets: prometheus.LinearBuckets(0.80, 0.02, 11),
		},
	)
)

// Register registers all package metrics with the default registry.
// Safe to call once at process startup.
func Register() {
	prometheus.MustRegister(
		StepEventsTotal,
		LookupOutcomesTotal,
		WriteBackOutcomesTotal,
		IntentExtractionOutcomesTotal,
		LookupLatencySeconds,
		CacheSimilarityScore,
	)
}

// Handler exposes the /metrics endpoint for Prometheus to scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}
