// Package config parses, defaults and validates semantic-memory
// configuration, and fails fast with an aggregated list of missing
// secrets rather than one error at a time.
package config

import (
	"context"
	"time"

	"github.com/kestrelmem/semanticmemory/embedding"
	"github.com/kestrelmem/semanticmemory/observability"
)

// CacheMode selects how a lookup interacts with existing entries.
type CacheMode string

const (
	// ModeDefault reads the cache normally.
	ModeDefault CacheMode = "default"
	// ModeRefresh always bypasses the read but still writes back.
	ModeRefresh CacheMode = "refresh"
)

// VectorConfig holds similarity-index endpoint credentials.
type VectorConfig struct {
	URL   string
	Token string
}

// RedisConfig holds payload-store endpoint credentials.
type RedisConfig struct {
	URL   string
	Token string
}

// SimulateStreamConfig controls replay pacing.
type SimulateStreamConfig struct {
	Enabled           bool
	InitialDelayMs    int
	ChunkDelayMs      int
}

// IntentExtractorConfig configures the intent-similarity variant's
// extractor LLM.
type IntentExtractorConfig struct {
	// Model is the extractor's chat-completion caller. Required when the
	// intent variant is used.
	Model      ChatCaller
	WindowSize int
	Prompt     string
}

// ChatCaller performs a single non-streaming chat completion, used by the
// intent extractor. It is a narrow slice of provider.DoGenerate so tests
// can stub it without an HTTP dependency.
type ChatCaller interface {
	Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// Config is the user-facing configuration for CreateSemanticMemory and
// CreateIntentMemory.
type Config struct {
	// Model is the embedding model used to fingerprint cache text.
	// Validate accepts either Model or ModelName, but
	// CreateSemanticMemory and CreateIntentMemory require Model: a
	// ModelName alone is not resolved to an embedding service.
	Model     embedding.Service
	ModelName string

	Vector VectorConfig
	Redis  RedisConfig

	Threshold float64
	TTL       time.Duration
	Debug     bool
	CacheMode CacheMode

	SimulateStream SimulateStreamConfig

	UseFullMessages bool

	IntentExtractor IntentExtractorConfig

	OnStepFinish observability.Hook

	// FailOpenOnLookupError controls what happens when the vector query
	// or the payload get fails: when true, the failure downgrades to a
	// live call instead of being surfaced to the caller. Default false:
	// fail closed and return the error. An embedding error is always
	// returned to the caller, whatever this is set to.
	FailOpenOnLookupError bool

	// CollectionName names the vector-index collection/namespace used to
	// store entries. Defaults to "semantic-memory".
	CollectionName string

	// EmbeddingDimensions is the fixed dimension of Model's output
	// vectors, required to bootstrap the vector index collection.
	EmbeddingDimensions int
}

// Defaults returns the built-in zero-configuration defaults.
func Defaults() Config {
	return Config{
		Threshold: 0.92,
		TTL:       14 * 24 * time.Hour,
		Debug:     false,
		CacheMode: ModeDefault,
		SimulateStream: SimulateStreamConfig{
			Enabled:        true,
			InitialDelayMs: 0,
			ChunkDelayMs:   10,
		},
		UseFullMessages: false,
		IntentExtractor: IntentExtractorConfig{
			WindowSize: 5,
		},
		CollectionName:      "semantic-memory",
		EmbeddingDimensions: 1536,
	}
}
