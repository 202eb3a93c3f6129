// Package memory is the public API surface: CreateSemanticMemory and
// CreateIntentMemory each return a Memory that wraps a provider's
// doStream/doGenerate with cache-aware replay, capture, and detached
// write-back.
package memory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kestrelmem/semanticmemory/config"
	"github.com/kestrelmem/semanticmemory/embedding"
	"github.com/kestrelmem/semanticmemory/fingerprint"
	"github.com/kestrelmem/semanticmemory/intent"
	"github.com/kestrelmem/semanticmemory/internal/logging"
	"github.com/kestrelmem/semanticmemory/internal/writeback"
	"github.com/kestrelmem/semanticmemory/lookup"
	"github.com/kestrelmem/semanticmemory/observability"
	"github.com/kestrelmem/semanticmemory/payloadstore"
	"github.com/kestrelmem/semanticmemory/provider"
	"github.com/kestrelmem/semanticmemory/vectorindex"
)

const topK = 3

// Memory binds the fingerprinter, similarity index, payload store and
// replay adapter into the wrapStream/wrapGenerate contract a provider
// framework already knows how to dispatch.
type Memory struct {
	cfg       config.Config
	model     embedding.Service
	index     vectorindex.Index
	store     payloadstore.Store
	extractor *intent.Extractor // nil for the prompt-similarity variant
	prefix    fingerprint.Prefix
	pool      *writeback.Pool
}

// Close releases the store and index connections. Pending write-backs
// are not awaited; call Wait first for a graceful shutdown.
func (m *Memory) Close() error {
	err1 := m.store.Close()
	err2 := m.index.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Wait blocks until every submitted write-back job has finished.
func (m *Memory) Wait() error {
	return m.pool.Wait()
}

func newMemory(cfg config.Config, index vectorindex.Index, store payloadstore.Store, extractor *intent.Extractor, prefix fingerprint.Prefix) (*Memory, error) {
	ctx := context.Background()
	if err := index.EnsureCollection(ctx, cfg.EmbeddingDimensions); err != nil {
		return nil, fmt.Errorf("semanticmemory: %w", err)
	}
	pool := writeback.New(ctx, store, index, 0, cfg.OnStepFinish)
	return &Memory{
		cfg:       cfg,
		model:     cfg.Model,
		index:     index,
		store:     store,
		extractor: extractor,
		prefix:    prefix,
		pool:      pool,
	}, nil
}

// derived is the fingerprint plus its embedding, threaded from lookup
// through to write-back so a miss never re-embeds. intent is non-nil
// only for the intent-similarity variant, carrying the extractor's
// domain/stack/goal out to the stored vector metadata.
type derived struct {
	fingerprint.Fingerprint
	vector []float32
	intent *intent.Intent
}

// scopeMetadata builds the vector-index metadata for d, keying the
// fingerprinted text by variant ("prompt" or "intent") and, for the
// intent variant, carrying domain/stack/goal alongside the scope
// hashes.
func (m *Memory) scopeMetadata(d derived) map[string]any {
	textKey := "prompt"
	var extra map[string]any
	if d.intent != nil {
		textKey = "intent"
		extra = map[string]any{
			"domain": d.intent.Domain,
			"stack":  d.intent.Stack,
			"goal":   d.intent.Goal,
		}
	}
	return writeback.ScopeMetadata(textKey, d.Text, d.Scope, extra)
}

func (m *Memory) derive(ctx context.Context, params provider.CallParams) (derived, error) {
	observability.Dispatch(m.cfg.OnStepFinish, observability.StepEvent{Step: observability.StepCacheCheckStart})

	scope := fingerprint.ScopeFromParams(params)

	var text string
	var ex intent.Intent
	var hasIntent bool
	switch {
	case m.extractor != nil && len(params.Messages) > 0:
		ex = m.extractor.Extract(ctx, params.Messages)
		hasIntent = true
		text = fingerprint.BuildIntentText(ex.Goal, ex.Domain, ex.Stack, ex.Constraints)
	case m.extractor != nil:
		text = fingerprint.Normalize(params.Prompt)
	default:
		text = fingerprint.BuildPromptText(params, m.cfg.UseFullMessages)
	}

	id := fingerprint.ComputeID(m.prefix, scope, text)

	vec, err := m.model.Get(ctx, text)
	if err != nil {
		return derived{}, fmt.Errorf("semanticmemory: embed: %w", err)
	}

	d := derived{
		Fingerprint: fingerprint.Fingerprint{Text: text, Scope: scope, ID: id},
		vector:      vec,
	}
	if hasIntent {
		d.intent = &ex
	}
	return d, nil
}

func (m *Memory) selectCandidate(ctx context.Context, d derived) (lookup.Result, error) {
	candidates, err := m.index.Query(ctx, d.vector, topK)
	if err != nil {
		return lookup.Result{}, fmt.Errorf("semanticmemory: query: %w", err)
	}
	res, err := lookup.Select(ctx, m.store, candidates, d.Scope, m.cfg.Threshold)
	if err != nil {
		return lookup.Result{}, fmt.Errorf("semanticmemory: get: %w", err)
	}
	return res, nil
}

// lookupOrFailOpen resolves a candidate, downgrading a lookup error to
// a clean miss when FailOpenOnLookupError is set; otherwise the error
// is returned for the caller to surface (fail-closed, the default).
func (m *Memory) lookupOrFailOpen(ctx context.Context, d derived) (lookup.Result, error) {
	res, err := m.selectCandidate(ctx, d)
	if err != nil {
		if m.cfg.FailOpenOnLookupError {
			logging.FromContext(ctx).Warn("semanticmemory: lookup error, failing open to live call", zap.Error(err))
			return lookup.Result{}, nil
		}
		return lookup.Result{}, err
	}
	return res, nil
}
