// Package openai adapts the OpenAI chat-completions API to the
// provider.DoStream/DoGenerate contract, parsing the streaming
// response as newline-delimited SSE "data: " frames.
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/kestrelmem/semanticmemory/provider"
)

// Caller implements provider.DoStream and provider.DoGenerate against
// the OpenAI chat-completions endpoint, and config.ChatCaller for the
// intent extractor.
type Caller struct {
	client        *http.Client
	endpoint      string
	apiKeyEnvName string
}

// New builds a Caller. endpoint is the full chat-completions URL.
func New(endpoint, apiKeyEnvName string) *Caller {
	return &Caller{
		client:        &http.Client{Timeout: 60 * time.Second},
		endpoint:      endpoint,
		apiKeyEnvName: apiKeyEnvName,
	}
}

// Complete implements config.ChatCaller for the intent extractor: a
// single non-streaming call with a system and a user prompt.
func (c *Caller) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := provider.CallParams{
		System:      systemPrompt,
		Temperature: 0.1,
		Messages:    []provider.Message{{Role: "user", Content: userPrompt}},
	}
	result, err := c.DoGenerate(ctx, params)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// DoGenerate implements provider.DoGenerate with stream=false.
func (c *Caller) DoGenerate(ctx context.Context, params provider.CallParams) (provider.GenerateResult, error) {
	req, err := c.buildRequest(ctx, params, false)
	if err != nil {
		return provider.GenerateResult{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return provider.GenerateResult{}, fmt.Errorf("provider/openai: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.GenerateResult{}, fmt.Errorf("provider/openai: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return provider.GenerateResult{}, fmt.Errorf("provider/openai: status %d: %s", resp.StatusCode, body)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return provider.GenerateResult{}, fmt.Errorf("provider/openai: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return provider.GenerateResult{}, fmt.Errorf("provider/openai: empty choices")
	}
	return provider.GenerateResult{
		Text: parsed.Choices[0].Message.Content,
		ID:   parsed.ID,
		Usage: &provider.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}

// DoStream implements provider.DoStream against OpenAI's SSE format.
func (c *Caller) DoStream(ctx context.Context, params provider.CallParams) (provider.StreamResult, error) {
	req, err := c.buildRequest(ctx, params, true)
	if err != nil {
		return provider.StreamResult{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return provider.StreamResult{}, fmt.Errorf("provider/openai: request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return provider.StreamResult{}, fmt.Errorf("provider/openai: status %d: %s", resp.StatusCode, body)
	}

	out := make(chan provider.StreamEvent)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		id := fmt.Sprintf("chatcmpl-%d", time.Now().UnixNano())
		sentStart := false
		reader := bufio.NewReader(resp.Body)

		for {
			select {
			case <-ctx.Done():
				out <- provider.StreamEvent{Err: ctx.Err()}
				return
			default:
			}

			line, err := reader.ReadBytes('\n')
			if err != nil {
				if err == io.EOF {
					return
				}
				out <- provider.StreamEvent{Err: fmt.Errorf("provider/openai: read: %w", err)}
				return
			}
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			delta, finishReason, usage, done, perr := parseSSELine(line)
			if perr != nil {
				continue
			}
			if !sentStart && delta != "" {
				out <- provider.StreamEvent{Chunk: provider.Chunk{Type: provider.ChunkTextStart, ID: id}}
				sentStart = true
			}
			if delta != "" {
				out <- provider.StreamEvent{Chunk: provider.Chunk{Type: provider.ChunkTextDelta, Delta: delta, ID: id}}
			}
			if done {
				out <- provider.StreamEvent{Chunk: provider.Chunk{Type: provider.ChunkFinish, FinishReason: finishReason, Usage: usage}}
				return
			}
		}
	}()

	return provider.StreamResult{Stream: out}, nil
}

func (c *Caller) buildRequest(ctx context.Context, params provider.CallParams, stream bool) (*http.Request, error) {
	messages := make([]chatMessage, 0, len(params.Messages)+1)
	if params.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: params.System})
	}
	for _, m := range params.Messages {
		content, _ := m.Content.(string)
		messages = append(messages, chatMessage{Role: m.Role, Content: content})
	}
	if len(params.Messages) == 0 && params.Prompt != "" {
		messages = append(messages, chatMessage{Role: "user", Content: params.Prompt})
	}

	body := chatCompletionRequest{
		Model:       params.Model,
		Messages:    messages,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		Stream:      stream,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("provider/openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("provider/openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	if apiKey := os.Getenv(c.apiKeyEnvName); apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	return req, nil
}

func parseSSELine(line []byte) (delta, finishReason string, usage *provider.Usage, done bool, err error) {
	if !bytes.HasPrefix(line, []byte("data: ")) {
		return "", "", nil, false, fmt.Errorf("provider/openai: missing data prefix")
	}
	jsonBytes := bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data: ")))
	if bytes.Equal(jsonBytes, []byte("[DONE]")) {
		return "", "", nil, true, nil
	}

	var chunk chatStreamChunk
	if err := json.Unmarshal(jsonBytes, &chunk); err != nil {
		return "", "", nil, false, err
	}
	if chunk.Usage != nil && chunk.Usage.TotalTokens != 0 {
		usage = &provider.Usage{
			PromptTokens:     chunk.Usage.PromptTokens,
			CompletionTokens: chunk.Usage.CompletionTokens,
			TotalTokens:      chunk.Usage.TotalTokens,
		}
	}
	if len(chunk.Choices) == 0 {
		return "", "", usage, false, nil
	}
	choice := chunk.Choices[0]
	if choice.FinishReason != "" {
		return "", choice.FinishReason, usage, true, nil
	}
	return choice.Delta.Content, "", usage, false, nil
}

var (
	_ provider.DoStream   = (&Caller{}).DoStream
	_ provider.DoGenerate = (&Caller{}).DoGenerate
)
