package replay

import (
	"context"
	"testing"
	"time"

	"github.com/kestrelmem/semanticmemory/provider"
)

func TestPacedEmitsAllChunksInOrder(t *testing.T) {
	t.Parallel()

	chunks := []provider.Chunk{
		{Type: provider.ChunkTextStart},
		{Type: provider.ChunkTextDelta, Delta: "a"},
		{Type: provider.ChunkTextDelta, Delta: "b"},
		{Type: provider.ChunkFinish, FinishReason: "stop"},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var got []provider.Chunk
	for ev := range Paced(ctx, chunks, 0, 0) {
		if ev.Err != nil {
			t.Fatalf("unexpected stream error: %v", ev.Err)
		}
		got = append(got, ev.Chunk)
	}

	if len(got) != len(chunks) {
		t.Fatalf("got %d chunks, want %d", len(got), len(chunks))
	}
	for i, want := range chunks {
		if got[i].Type != want.Type || got[i].Delta != want.Delta {
			t.Errorf("chunk %d = %+v, want %+v", i, got[i], want)
		}
	}
}

func TestPacedStopsOnContextCancellation(t *testing.T) {
	t.Parallel()

	chunks := make([]provider.Chunk, 100)
	for i := range chunks {
		chunks[i] = provider.Chunk{Type: provider.ChunkTextDelta, Delta: "x"}
	}

	ctx, cancel := context.WithCancel(context.Background())
	stream := Paced(ctx, chunks, 0, 20*time.Millisecond)

	<-stream
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-stream:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("Paced did not close its channel after context cancellation")
		}
	}
}
