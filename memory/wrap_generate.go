package memory

import (
	"context"
	"time"

	"github.com/kestrelmem/semanticmemory/config"
	"github.com/kestrelmem/semanticmemory/internal/obsmetrics"
	"github.com/kestrelmem/semanticmemory/internal/writeback"
	"github.com/kestrelmem/semanticmemory/observability"
	"github.com/kestrelmem/semanticmemory/provider"
	"github.com/kestrelmem/semanticmemory/replay"
)

// WrapGenerate implements the non-stream half of the cache middleware:
// on a hit it returns the recorded result directly; on a miss it
// calls through and writes the result back under lock.
func (m *Memory) WrapGenerate(ctx context.Context, params provider.CallParams, doGenerate provider.DoGenerate) (provider.GenerateResult, error) {
	start := time.Now()

	d, err := m.derive(ctx, params)
	if err != nil {
		return provider.GenerateResult{}, err
	}

	res, err := m.lookupOrFailOpen(ctx, d)
	if err != nil {
		return provider.GenerateResult{}, err
	}

	obsmetrics.LookupLatencySeconds.Observe(time.Since(start).Seconds())

	if res.Hit && m.cfg.CacheMode != config.ModeRefresh {
		payload, err := replay.DecodePayload(res.Payload)
		if err == nil && payload.Generate != nil {
			obsmetrics.CacheSimilarityScore.Observe(res.Score)
			obsmetrics.LookupOutcomesTotal.WithLabelValues("hit", string(m.prefix)).Inc()
			observability.Dispatch(m.cfg.OnStepFinish, observability.StepEvent{
				Step: observability.StepCacheHit, CacheID: d.ID, CacheScore: res.Score, UserIntention: d.Text,
			})
			return *payload.Generate, nil
		}
		// Legacy or unreadable payload: fall through to the live path
		// rather than return a shape this decoder can't interpret as a
		// generate result.
	}

	outcome := "miss"
	if res.Hit {
		outcome = "refresh"
	}
	obsmetrics.LookupOutcomesTotal.WithLabelValues(outcome, string(m.prefix)).Inc()
	observability.Dispatch(m.cfg.OnStepFinish, observability.StepEvent{Step: observability.StepCacheMiss, CacheID: d.ID, UserIntention: d.Text})

	observability.Dispatch(m.cfg.OnStepFinish, observability.StepEvent{Step: observability.StepGenerationStart, CacheID: d.ID})
	result, err := doGenerate(ctx, params)
	if err != nil {
		return provider.GenerateResult{}, err
	}
	observability.Dispatch(m.cfg.OnStepFinish, observability.StepEvent{Step: observability.StepGenerationComplete, CacheID: d.ID})

	payloadBytes, err := replay.EncodeGeneratePayload(result)
	if err == nil {
		m.pool.Submit(writeback.Job{
			ID:       d.ID,
			Payload:  payloadBytes,
			Vector:   d.vector,
			Metadata: m.scopeMetadata(d),
			TTL:      m.cfg.TTL,
		})
	}

	return result, nil
}
