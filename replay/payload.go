// Package replay implements the capture/replay stream adapter:
// building a chunk sequence from a stored payload, pacing its
// emission, and capturing a live stream into a payload on the way
// through.
package replay

import (
	"encoding/json"
	"time"

	"github.com/kestrelmem/semanticmemory/provider"
)

// Payload is the JSON shape stored under a cache id: either a
// recorded stream, or a non-stream generate result. A legacy
// {text, id, usage} shape is also accepted.
type Payload struct {
	StreamParts []provider.Chunk       `json:"streamParts,omitempty"`
	Generate    *provider.GenerateResult `json:"generate,omitempty"`

	// Legacy fields, read-only: some older entries stored just the
	// final text instead of a full result or chunk sequence.
	Text  string         `json:"text,omitempty"`
	ID    string         `json:"id,omitempty"`
	Usage *provider.Usage `json:"usage,omitempty"`
}

// DecodePayload parses a stored JSON payload.
func DecodePayload(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// EncodeStreamPayload serializes a captured chunk sequence for
// storage.
func EncodeStreamPayload(parts []provider.Chunk) ([]byte, error) {
	return json.Marshal(Payload{StreamParts: parts})
}

// EncodeGeneratePayload serializes a non-stream result for storage.
func EncodeGeneratePayload(result provider.GenerateResult) ([]byte, error) {
	return json.Marshal(Payload{Generate: &result})
}

// BuildReplaySequence builds the chunk sequence to replay for a hit.
// id is the cache entry's own id, used to synthesize a deterministic
// replay id for the legacy {text, id, usage} shape when it left id
// empty, instead of propagating an absent one.
func BuildReplaySequence(p Payload, id string) ([]provider.Chunk, bool) {
	switch {
	case len(p.StreamParts) > 0:
		return rehydrateTimestamps(p.StreamParts), true
	case p.Text != "":
		replayID := p.ID
		if replayID == "" {
			replayID = id
		}
		return []provider.Chunk{
			{Type: provider.ChunkTextStart, ID: replayID},
			{Type: provider.ChunkTextDelta, Delta: p.Text, ID: replayID},
			{Type: provider.ChunkFinish, FinishReason: "stop", Usage: p.Usage},
		}, true
	default:
		return nil, false
	}
}

// rehydrateTimestamps is a no-op: a response-metadata chunk's
// timestamp is already a *time.Time after JSON decoding
// (encoding/json parses RFC3339 into time.Time via the struct tag).
// Kept as a named step so the replay path reads as
// decode-then-rehydrate even though this implementation needs no
// conversion.
func rehydrateTimestamps(chunks []provider.Chunk) []provider.Chunk {
	return chunks
}

// PacingFor returns the initial and inter-chunk delay to use when
// replaying, per the simulateStream config; zero when disabled.
func PacingFor(enabled bool, initialDelayMs, chunkDelayMs int) (initial, between time.Duration) {
	if !enabled {
		return 0, 0
	}
	return time.Duration(initialDelayMs) * time.Millisecond, time.Duration(chunkDelayMs) * time.Millisecond
}
