package memory

import (
	"fmt"

	"github.com/kestrelmem/semanticmemory/config"
	"github.com/kestrelmem/semanticmemory/fingerprint"
	"github.com/kestrelmem/semanticmemory/intent"
	"github.com/kestrelmem/semanticmemory/payloadstore"
	redisstore "github.com/kestrelmem/semanticmemory/payloadstore/redis"
	"github.com/kestrelmem/semanticmemory/vectorindex"
	qdrantindex "github.com/kestrelmem/semanticmemory/vectorindex/qdrant"
)

// CreateSemanticMemory builds the prompt-similarity variant: cache
// input text is the raw user prompt.
func CreateSemanticMemory(cfg config.Config) (*Memory, error) {
	loaded, err := config.Load(cfg)
	if err != nil {
		return nil, err
	}
	if loaded.Model == nil {
		return nil, &config.ValidationError{Causes: []error{fmt.Errorf("model: an embedding.Service implementation is required (modelName alone cannot be resolved)")}}
	}

	index, store, err := dial(loaded)
	if err != nil {
		return nil, err
	}
	return newMemory(loaded, index, store, nil, fingerprint.PrefixPrompt)
}

// CreateIntentMemory builds the intent-similarity variant: a small
// LLM extracts structured intent from a sliding window before
// fingerprinting.
func CreateIntentMemory(cfg config.Config) (*Memory, error) {
	loaded, err := config.Load(cfg)
	if err != nil {
		return nil, err
	}
	if loaded.Model == nil {
		return nil, &config.ValidationError{Causes: []error{fmt.Errorf("model: an embedding.Service implementation is required (modelName alone cannot be resolved)")}}
	}
	if err := config.ValidateIntent(loaded); err != nil {
		return nil, err
	}

	index, store, err := dial(loaded)
	if err != nil {
		return nil, err
	}
	extractor := intent.New(loaded.IntentExtractor.Model, loaded.IntentExtractor.WindowSize, loaded.IntentExtractor.Prompt, loaded.OnStepFinish)
	return newMemory(loaded, index, store, extractor, fingerprint.PrefixIntent)
}

func dial(cfg config.Config) (vectorindex.Index, payloadstore.Store, error) {
	index, err := qdrantindex.New(cfg.Vector.URL, cfg.Vector.Token, cfg.CollectionName)
	if err != nil {
		return nil, nil, fmt.Errorf("semanticmemory: %w", err)
	}
	store := redisstore.New(cfg.Redis.URL, cfg.Redis.Token)
	return index, store, nil
}
