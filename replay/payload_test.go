package replay

import (
	"testing"

	"github.com/kestrelmem/semanticmemory/provider"
)

func TestEncodeDecodeStreamPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	parts := []provider.Chunk{
		{Type: provider.ChunkTextStart, ID: "chatcmpl-1"},
		{Type: provider.ChunkTextDelta, ID: "chatcmpl-1", Delta: "hello"},
		{Type: provider.ChunkFinish, FinishReason: "stop", Usage: &provider.Usage{TotalTokens: 12}},
	}

	raw, err := EncodeStreamPayload(parts)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodePayload(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.StreamParts) != len(parts) {
		t.Fatalf("got %d parts, want %d", len(decoded.StreamParts), len(parts))
	}
	for i, want := range parts {
		got := decoded.StreamParts[i]
		if got.Type != want.Type || got.Delta != want.Delta || got.ID != want.ID {
			t.Errorf("part %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestBuildReplaySequenceFromStreamParts(t *testing.T) {
	t.Parallel()

	payload := Payload{StreamParts: []provider.Chunk{
		{Type: provider.ChunkTextDelta, Delta: "hi"},
	}}
	chunks, ok := BuildReplaySequence(payload, "fallback-id")
	if !ok {
		t.Fatal("expected ok=true for a stream payload")
	}
	if len(chunks) != 1 || chunks[0].Delta != "hi" {
		t.Errorf("unexpected chunks: %+v", chunks)
	}
}

func TestBuildReplaySequenceFromLegacyText(t *testing.T) {
	t.Parallel()

	payload := Payload{Text: "legacy cached answer"}
	chunks, ok := BuildReplaySequence(payload, "synthesized-id")
	if !ok {
		t.Fatal("expected ok=true for a legacy text payload")
	}
	if len(chunks) != 3 {
		t.Fatalf("expected start/delta/finish, got %d chunks", len(chunks))
	}
	if chunks[0].Type != provider.ChunkTextStart || chunks[0].ID != "synthesized-id" {
		t.Errorf("expected synthesized id on start chunk, got %+v", chunks[0])
	}
	if chunks[1].Delta != "legacy cached answer" {
		t.Errorf("expected delta to carry legacy text, got %+v", chunks[1])
	}
	if chunks[2].Type != provider.ChunkFinish {
		t.Errorf("expected trailing finish chunk, got %+v", chunks[2])
	}
}

func TestBuildReplaySequenceEmptyPayloadIsNotOK(t *testing.T) {
	t.Parallel()

	_, ok := BuildReplaySequence(Payload{}, "id")
	if ok {
		t.Fatal("expected ok=false for an empty payload")
	}
}

func TestPacingForDisabledIsZero(t *testing.T) {
	t.Parallel()

	initial, between := PacingFor(false, 100, 50)
	if initial != 0 || between != 0 {
		t.Errorf("expected zero pacing when disabled, got initial=%v between=%v", initial, between)
	}
}

func TestPacingForEnabledConvertsMillis(t *testing.T) {
	t.Parallel()

	initial, between := PacingFor(true, 100, 50)
	if initial.Milliseconds() != 100 || between.Milliseconds() != 50 {
		t.Errorf("unexpected pacing: initial=%v between=%v", initial, between)
	}
}
