// Package lookup implements candidate selection over vector-index
// query results: combine the similarity threshold with an exact scope
// match, and pick the first qualifying candidate in returned
// (descending-score) order.
package lookup

import (
	"context"
	"errors"

	"github.com/kestrelmem/semanticmemory/fingerprint"
	"github.com/kestrelmem/semanticmemory/payloadstore"
	"github.com/kestrelmem/semanticmemory/vectorindex"
)

// Result is the outcome of a lookup: either a hit carrying the fetched
// payload, or a miss.
type Result struct {
	Hit     bool
	ID      string
	Payload []byte
	Score   float64
}

// Select scans candidates already sorted by descending score and
// resolves the payload for the first one clearing the threshold with
// a matching scope. It always resolves that payload even in refresh
// mode; whether to discard the hit and go live anyway is the caller's
// decision, not this function's.
func Select(ctx context.Context, store payloadstore.Store, candidates []vectorindex.Candidate, scope fingerprint.Scope, threshold float64) (Result, error) {
	for _, c := range candidates {
		if c.Score < threshold {
			continue
		}
		if !scopeMatches(c.Metadata, scope) {
			continue
		}
		payload, err := store.Get(ctx, c.ID)
		if errors.Is(err, payloadstore.ErrNotFound) {
			// Dangling vector entry: treated as a miss, do not
			// continue to other candidates.
			return Result{}, nil
		}
		if err != nil {
			return Result{}, err
		}
		return Result{Hit: true, ID: c.ID, Payload: payload, Score: c.Score}, nil
	}
	return Result{}, nil
}

func scopeMatches(metadata map[string]any, s fingerprint.Scope) bool {
	if metadata == nil {
		return false
	}
	llmModel, _ := metadata["llmModel"].(string)
	systemHash, _ := metadata["systemHash"].(string)
	paramsHash, _ := metadata["paramsHash"].(string)
	toolsHash, _ := metadata["toolsHash"].(string)
	return fingerprint.Scope{
		LLMModel:   llmModel,
		SystemHash: systemHash,
		ParamsHash: paramsHash,
		ToolsHash:  toolsHash,
	}.Equal(s)
}
