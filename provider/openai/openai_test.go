package openai_test

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kestrelmem/semanticmemory/provider"
	"github.com/kestrelmem/semanticmemory/provider/openai"
)

func TestDoGenerateParsesNonStreamResponse(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"id": "chatcmpl-123",
			"choices": [{"message": {"role": "assistant", "content": "Paris"}}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 1, "total_tokens": 6}
		}`)
	}))
	defer server.Close()

	caller := openai.New(server.URL, "TEST_OPENAI_KEY")
	result, err := caller.DoGenerate(context.Background(), provider.CallParams{
		Model:    "gpt-4o",
		Messages: []provider.Message{{Role: "user", Content: "capital of france?"}},
	})
	if err != nil {
		t.Fatalf("DoGenerate: %v", err)
	}
	if result.Text != "Paris" {
		t.Errorf("Text = %q, want Paris", result.Text)
	}
	if result.Usage == nil || result.Usage.TotalTokens != 6 {
		t.Errorf("Usage = %+v, want TotalTokens=6", result.Usage)
	}
}

func TestDoStreamParsesSSEChunks(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		lines := []string{
			`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
			`data: {"choices":[{"delta":{"content":"lo"}}]}`,
			`data: {"choices":[{"delta":{},"finish_reason":"stop"}],"usage":{"total_tokens":9}}`,
			`data: [DONE]`,
		}
		for _, l := range lines {
			fmt.Fprintf(w, "%s\n", l)
			flusher.Flush()
		}
	}))
	defer server.Close()

	caller := openai.New(server.URL, "TEST_OPENAI_KEY")
	result, err := caller.DoStream(context.Background(), provider.CallParams{
		Model:    "gpt-4o",
		Messages: []provider.Message{{Role: "user", Content: "say hello"}},
	})
	if err != nil {
		t.Fatalf("DoStream: %v", err)
	}

	var deltas []string
	sawFinish := false
	for ev := range result.Stream {
		if ev.Err != nil {
			t.Fatalf("unexpected stream error: %v", ev.Err)
		}
		switch ev.Chunk.Type {
		case provider.ChunkTextDelta:
			deltas = append(deltas, ev.Chunk.Delta)
		case provider.ChunkFinish:
			sawFinish = true
			if ev.Chunk.Usage == nil || ev.Chunk.Usage.TotalTokens != 9 {
				t.Errorf("finish usage = %+v, want TotalTokens=9", ev.Chunk.Usage)
			}
		}
	}
	if len(deltas) != 2 || deltas[0] != "Hel" || deltas[1] != "lo" {
		t.Errorf("deltas = %v, want [Hel lo]", deltas)
	}
	if !sawFinish {
		t.Error("expected a finish chunk")
	}
}

func TestCompleteReturnsPlainText(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"x","choices":[{"message":{"role":"assistant","content":"ok"}}],"usage":{}}`)
	}))
	defer server.Close()

	caller := openai.New(server.URL, "TEST_OPENAI_KEY")
	text, err := caller.Complete(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "ok" {
		t.Errorf("Complete() = %q, want ok", text)
	}
}

// ensure the SSE reader in DoStream tolerates a bufio.Scanner-hostile
// server that writes one byte at a time.
func TestDoStreamHandlesSlowWriter(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		bw := bufio.NewWriter(w)
		line := `data: {"choices":[{"delta":{"content":"x"}}]}` + "\n"
		for _, b := range []byte(line) {
			bw.WriteByte(b)
			bw.Flush()
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n")
		flusher.Flush()
	}))
	defer server.Close()

	caller := openai.New(server.URL, "TEST_OPENAI_KEY")
	result, err := caller.DoStream(context.Background(), provider.CallParams{Model: "gpt-4o", Prompt: "hi"})
	if err != nil {
		t.Fatalf("DoStream: %v", err)
	}
	var got string
	for ev := range result.Stream {
		if ev.Chunk.Type == provider.ChunkTextDelta {
			got += ev.Chunk.Delta
		}
	}
	if got != "x" {
		t.Errorf("got %q, want x", got)
	}
}
