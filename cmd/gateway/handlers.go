package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kestrelmem/semanticmemory/memory"
	"github.com/kestrelmem/semanticmemory/provider"
	providerOpenAI "github.com/kestrelmem/semanticmemory/provider/openai"
)

// handler owns the memory.Memory and upstream caller and forwards gin
// requests into them; there is no package-level cache state.
type handler struct {
	mem      *memory.Memory
	upstream *providerOpenAI.Caller
	log      *zap.Logger
}

// chatMessage is the wire shape of one message in an incoming request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest is the OpenAI-compatible request body this
// demo gateway accepts.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	Stream      bool          `json:"stream"`
}

// chatCompletionResponse is the non-stream OpenAI-compatible response.
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int         `json:"index"`
		Message chatMessage `json:"message"`
		Finish  string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *responseUsage `json:"usage,omitempty"`
}

type responseUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// chatStreamChunk is one SSE data payload of the OpenAI-compatible
// streaming response.
type chatStreamChunk struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Content string `json:"content,omitempty"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *responseUsage `json:"usage,omitempty"`
}

func toCallParams(req chatCompletionRequest) provider.CallParams {
	messages := make([]provider.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, provider.Message{Role: m.Role, Content: m.Content})
	}
	return provider.CallParams{
		Model:       req.Model,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Messages:    messages,
	}
}

// completions is the single OpenAI-compatible endpoint. It branches on
// req.Stream, delegating both paths to memory.Memory so a cache hit, a
// cache miss, and a write-back all flow through the same code whether
// the caller wants a single JSON response or an SSE stream.
func (h *handler) completions(c *gin.Context) {
	var req chatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Model == "" {
		req.Model = "gpt-4o-mini"
	}
	params := toCallParams(req)

	if req.Stream {
		h.streamCompletion(c, params)
		return
	}
	h.generateCompletion(c, params)
}

func (h *handler) generateCompletion(c *gin.Context, params provider.CallParams) {
	result, err := h.mem.GenerateText(c.Request.Context(), params, h.upstream.DoGenerate)
	if err != nil {
		h.log.Warn("generate failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	resp := chatCompletionResponse{
		ID:     result.ID,
		Object: "chat.completion",
		Model:  params.Model,
	}
	resp.Choices = append(resp.Choices, struct {
		Index   int         `json:"index"`
		Message chatMessage `json:"message"`
		Finish  string      `json:"finish_reason"`
	}{
		Index:   0,
		Message: chatMessage{Role: "assistant", Content: result.Text},
		Finish:  "stop",
	})
	if result.Usage != nil {
		resp.Usage = &responseUsage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) streamCompletion(c *gin.Context, params provider.CallParams) {
	result, err := h.mem.StreamText(c.Request.Context(), params, h.upstream.DoStream)
	if err != nil {
		h.log.Warn("stream failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	id := fmt.Sprintf("chatcmpl-%s", params.Model)
	ctx := c.Request.Context()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-result.Stream:
			if !open {
				writeSSE(c.Writer, "[DONE]")
				flusher.Flush()
				return
			}
			if ev.Err != nil {
				h.log.Warn("stream event error", zap.Error(ev.Err))
				return
			}
			chunk := chatChunkFromProvider(id, params.Model, ev.Chunk)
			payload, err := json.Marshal(chunk)
			if err != nil {
				continue
			}
			writeSSE(c.Writer, string(payload))
			flusher.Flush()

			if ev.Chunk.Type == provider.ChunkFinish {
				writeSSE(c.Writer, "[DONE]")
				flusher.Flush()
				return
			}
		}
	}
}

func chatChunkFromProvider(id, model string, chunk provider.Chunk) chatStreamChunk {
	out := chatStreamChunk{ID: id, Object: "chat.completion.chunk", Model: model}
	choice := struct {
		Index int `json:"index"`
		Delta struct {
			Content string `json:"content,omitempty"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	}{Index: 0}

	switch chunk.Type {
	case provider.ChunkTextDelta:
		choice.Delta.Content = chunk.Delta
	case provider.ChunkFinish:
		reason := chunk.FinishReason
		if reason == "" {
			reason = "stop"
		}
		choice.FinishReason = &reason
		if chunk.Usage != nil {
			out.Usage = &responseUsage{
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
				TotalTokens:      chunk.Usage.TotalTokens,
			}
		}
	}
	out.Choices = append(out.Choices, choice)
	return out
}

func writeSSE(w http.ResponseWriter, data string) {
	fmt.Fprintf(w, "data: %s\n\n", data)
}
