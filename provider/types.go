// Package provider defines the transparent middleware contract this
// module wraps: a chunk-type union, call parameters, and the two
// function-shaped collaborators (doStream, doGenerate) that a
// language-model provider already knows how to dispatch.
package provider

import (
	"context"
	"time"
)

// Message is one turn of a conversation. Content is either a plain
// string or an arbitrary structured value, JSON-serialized when
// fingerprinting non-string content.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// CallParams is the provider-native call options the middleware wraps.
// Prompt and Messages are mutually exclusive: a call carries either
// Messages or a single Prompt string.
type CallParams struct {
	Model       string
	System      string
	Temperature float64
	TopP        float64
	Tools       any

	Messages []Message
	Prompt   string
}

// ChunkType enumerates the tagged-union chunk types consumed by the
// cache. Unknown types are forwarded unchanged, never interpreted.
type ChunkType string

const (
	ChunkTextStart        ChunkType = "text-start"
	ChunkTextDelta        ChunkType = "text-delta"
	ChunkResponseMetadata ChunkType = "response-metadata"
	ChunkFinish           ChunkType = "finish"
)

// Usage mirrors the provider's token accounting, carried unchanged
// through capture and replay.
type Usage struct {
	PromptTokens     int `json:"promptTokens,omitempty"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens,omitempty"`
}

// Chunk is one element of a streamed response. Only the fields
// relevant to its Type are populated; unrecognized types pass through
// with Extra holding whatever the provider sent.
type Chunk struct {
	Type ChunkType `json:"type"`

	ID    string `json:"id,omitempty"`
	Delta string `json:"delta,omitempty"`

	// Timestamp is populated on response-metadata chunks. It is
	// rehydrated from a JSON string to a time.Time on replay.
	Timestamp *time.Time `json:"timestamp,omitempty"`

	FinishReason string `json:"finishReason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`

	// Extra preserves any additional fields on a chunk type the cache
	// does not interpret, so they are forwarded unchanged.
	Extra map[string]any `json:"-"`
}

// StreamResult is what DoStream returns: a channel of chunks and any
// additional provider metadata the middleware passes through
// untouched.
type StreamResult struct {
	Stream <-chan StreamEvent
	Rest   map[string]any
}

// StreamEvent carries either a chunk or a terminal error from a
// provider stream.
type StreamEvent struct {
	Chunk Chunk
	Err   error
}

// GenerateResult is the provider's non-stream result object, or the
// legacy {text, id, usage} shape recorded by older cache entries.
type GenerateResult struct {
	Text      string         `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Usage     *Usage         `json:"usage,omitempty"`
	Response  *ResponseMeta  `json:"response,omitempty"`
	Extra     map[string]any `json:"-"`
}

// ResponseMeta carries provider response metadata such as a
// generation timestamp, rehydrated the same way a stream chunk's is.
type ResponseMeta struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// DoStream invokes the wrapped provider's streaming call.
type DoStream func(ctx context.Context, params CallParams) (StreamResult, error)

// DoGenerate invokes the wrapped provider's non-stream call.
type DoGenerate func(ctx context.Context, params CallParams) (GenerateResult, error)
