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

// WrapStream implements the streaming half of the cache middleware:
// on a hit it replays a paced chunk sequence reconstructed from the
// recorded payload; on a miss it captures the live provider stream on
// the way through and writes it back once it ends cleanly.
func (m *Memory) WrapStream(ctx context.Context, params provider.CallParams, doStream provider.DoStream) (provider.StreamResult, error) {
	start := time.Now()

	d, err := m.derive(ctx, params)
	if err != nil {
		return provider.StreamResult{}, err
	}

	res, err := m.lookupOrFailOpen(ctx, d)
	if err != nil {
		return provider.StreamResult{}, err
	}

	obsmetrics.LookupLatencySeconds.Observe(time.Since(start).Seconds())

	if res.Hit && m.cfg.CacheMode != config.ModeRefresh {
		if payload, err := replay.DecodePayload(res.Payload); err == nil {
			if chunks, ok := replay.BuildReplaySequence(payload, res.ID); ok {
				obsmetrics.CacheSimilarityScore.Observe(res.Score)
				obsmetrics.LookupOutcomesTotal.WithLabelValues("hit", string(m.prefix)).Inc()
				observability.Dispatch(m.cfg.OnStepFinish, observability.StepEvent{
					Step: observability.StepCacheHit, CacheID: d.ID, CacheScore: res.Score, UserIntention: d.Text,
				})
				initial, between := replay.PacingFor(m.cfg.SimulateStream.Enabled, m.cfg.SimulateStream.InitialDelayMs, m.cfg.SimulateStream.ChunkDelayMs)
				return provider.StreamResult{Stream: replay.Paced(ctx, chunks, initial, between)}, nil
			}
		}
		// No interpretable chunk sequence: fall through to the live
		// path instead of replaying nothing.
	}

	outcome := "miss"
	if res.Hit {
		outcome = "refresh"
	}
	obsmetrics.LookupOutcomesTotal.WithLabelValues(outcome, string(m.prefix)).Inc()
	observability.Dispatch(m.cfg.OnStepFinish, observability.StepEvent{Step: observability.StepCacheMiss, CacheID: d.ID, UserIntention: d.Text})

	observability.Dispatch(m.cfg.OnStepFinish, observability.StepEvent{Step: observability.StepGenerationStart, CacheID: d.ID})
	live, err := doStream(ctx, params)
	if err != nil {
		return provider.StreamResult{}, err
	}

	captured := replay.Capture(live.Stream, func(chunks []provider.Chunk) {
		observability.Dispatch(m.cfg.OnStepFinish, observability.StepEvent{Step: observability.StepGenerationComplete, CacheID: d.ID})
		payloadBytes, err := replay.EncodeStreamPayload(chunks)
		if err != nil {
			return
		}
		m.pool.Submit(writeback.Job{
			ID:       d.ID,
			Payload:  payloadBytes,
			Vector:   d.vector,
			Metadata: m.scopeMetadata(d),
			TTL:      m.cfg.TTL,
		})
	})

	return provider.StreamResult{Stream: captured, Rest: live.Rest}, nil
}
