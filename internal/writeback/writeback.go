// Package writeback runs the detached post-miss store step: after a
// live call completes, acquire the per-id NX lock and write
// payload-then-vector, without blocking the caller who already
// received their result. A bounded errgroup with singleflight dedup
// ensures two goroutines racing on the same id inside one process do
// the work once, and losers across processes are turned away by the
// lock itself.
package writeback

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/kestrelmem/semanticmemory/fingerprint"
	"github.com/kestrelmem/semanticmemory/internal/logging"
	"github.com/kestrelmem/semanticmemory/internal/obsmetrics"
	"github.com/kestrelmem/semanticmemory/observability"
	"github.com/kestrelmem/semanticmemory/payloadstore"
	"github.com/kestrelmem/semanticmemory/vectorindex"
)

const lockTTL = 15 * time.Second

// Job is one write-back request: the id already carries the (S, T)
// pair's hash, so the pool only needs the payload and the embedding
// to complete both writes.
type Job struct {
	ID       string
	Payload  []byte
	Vector   []float32
	Metadata map[string]any
	TTL      time.Duration
}

// Pool bounds concurrent write-backs and deduplicates same-id jobs
// racing within this process, on top of the cross-process NX lock.
type Pool struct {
	store  payloadstore.Store
	index  vectorindex.Index
	onStep observability.Hook

	group      *errgroup.Group
	inflight   singleflight.Group
	background context.Context
}

// New builds a Pool. maxConcurrent bounds the errgroup; 0 means
// unbounded (errgroup's default).
func New(background context.Context, store payloadstore.Store, index vectorindex.Index, maxConcurrent int, onStep observability.Hook) *Pool {
	g, ctx := errgroup.WithContext(background)
	if maxConcurrent > 0 {
		g.SetLimit(maxConcurrent)
	}
	return &Pool{
		store:      store,
		index:      index,
		onStep:     onStep,
		group:      g,
		background: ctx,
	}
}

// Submit enqueues a write-back job without waiting for its store I/O.
// With no limit set in New it returns immediately; with a limit it
// waits until a slot is free.
func (p *Pool) Submit(job Job) {
	p.group.Go(func() error {
		_, _, _ = p.inflight.Do(job.ID, func() (any, error) {
			p.run(job)
			return nil, nil
		})
		return nil
	})
}

// Wait blocks until every submitted job has finished. Intended for
// graceful shutdown, not for the request path.
func (p *Pool) Wait() error {
	return p.group.Wait()
}

func (p *Pool) run(job Job) {
	ctx := p.background
	log := logging.FromContext(ctx)

	lockKey := "lock:" + job.ID
	acquired, err := p.store.SetNX(ctx, lockKey, lockTTL)
	if err != nil {
		p.emitStore(observability.StepCacheStoreError, job.ID, err)
		obsmetrics.WriteBackOutcomesTotal.WithLabelValues("error").Inc()
		log.Warn("writeback: lock acquire failed", zap.String("id", job.ID), zap.Error(err))
		return
	}
	if !acquired {
		p.emitStore(observability.StepCacheStoreStart, job.ID, nil)
		obsmetrics.WriteBackOutcomesTotal.WithLabelValues("lock_lost").Inc()
		return
	}
	defer func() {
		if err := p.store.Del(ctx, lockKey); err != nil {
			log.Warn("writeback: lock release failed", zap.String("id", job.ID), zap.Error(err))
		}
	}()

	p.emitStore(observability.StepCacheStoreStart, job.ID, nil)

	// Payload before vector, so the only observable inconsistency from
	// a crash mid-write is a dangling vector rather than an
	// unreachable payload.
	if err := p.store.Set(ctx, job.ID, job.Payload, job.TTL); err != nil {
		p.emitStore(observability.StepCacheStoreError, job.ID, err)
		obsmetrics.WriteBackOutcomesTotal.WithLabelValues("error").Inc()
		log.Warn("writeback: payload set failed", zap.String("id", job.ID), zap.Error(err))
		return
	}
	if err := p.index.Upsert(ctx, vectorindex.Entry{ID: job.ID, Vector: job.Vector, Metadata: job.Metadata}); err != nil {
		p.emitStore(observability.StepCacheStoreError, job.ID, err)
		obsmetrics.WriteBackOutcomesTotal.WithLabelValues("error").Inc()
		log.Warn("writeback: vector upsert failed", zap.String("id", job.ID), zap.Error(err))
		return
	}

	p.emitStore(observability.StepCacheStoreComplete, job.ID, nil)
	obsmetrics.WriteBackOutcomesTotal.WithLabelValues("complete").Inc()
}

func (p *Pool) emitStore(step observability.Step, id string, err error) {
	observability.Dispatch(p.onStep, observability.StepEvent{Step: step, CacheID: id, Err: err})
}

// ScopeMetadata builds the metadata map stored alongside a vector
// entry: the fingerprinted text (keyed by textKey, "prompt" or
// "intent" depending on the cache variant) plus the scope fields.
// extra carries variant-specific fields such as the intent
// extractor's domain/stack/goal; nil for the prompt-similarity
// variant.
func ScopeMetadata(textKey, text string, s fingerprint.Scope, extra map[string]any) map[string]any {
	m := map[string]any{
		textKey:      text,
		"llmModel":   s.LLMModel,
		"systemHash": s.SystemHash,
		"paramsHash": s.ParamsHash,
		"toolsHash":  s.ToolsHash,
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}
