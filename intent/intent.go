// Package intent implements the sliding-window intent extractor:
// summarize a conversation window into a structured intent, falling
// back to the last message on any failure.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kestrelmem/semanticmemory/config"
	"github.com/kestrelmem/semanticmemory/internal/obsmetrics"
	"github.com/kestrelmem/semanticmemory/observability"
	"github.com/kestrelmem/semanticmemory/provider"
)

// Intent is the structured summary extracted from a conversation
// window.
type Intent struct {
	Intent      string   `json:"intent"`
	Domain      []string `json:"domain"`
	Stack       []string `json:"stack"`
	Goal        string   `json:"goal"`
	Constraints []string `json:"constraints"`
}

const defaultPrompt = `You are a routing classifier. Read the conversation window and return ` +
	`a single JSON object with exactly these fields: "intent" (string), ` +
	`"domain" (string array), "stack" (string array), "goal" (string), ` +
	`"constraints" (string array). Return only the JSON object, no prose.`

// Extractor calls a small LLM on a trailing conversation window and
// parses its response into an Intent.
type Extractor struct {
	caller     config.ChatCaller
	windowSize int
	prompt     string
	onStep     observability.Hook
}

// New builds an Extractor. prompt overrides the built-in instructions
// when non-empty.
func New(caller config.ChatCaller, windowSize int, prompt string, onStep observability.Hook) *Extractor {
	if windowSize <= 0 {
		windowSize = 5
	}
	if prompt == "" {
		prompt = defaultPrompt
	}
	return &Extractor{caller: caller, windowSize: windowSize, prompt: prompt, onStep: onStep}
}

// Extract summarizes the trailing window of messages. It never returns
// an error: any failure downgrades to the last-message fallback so a
// broken extractor never fails the call it's meant to help. It waits
// for the extractor call to return; no timeout is applied beyond ctx.
func (e *Extractor) Extract(ctx context.Context, messages []provider.Message) Intent {
	observability.Dispatch(e.onStep, observability.StepEvent{Step: observability.StepIntentExtractionStart})

	window := trailingWindow(messages, e.windowSize)
	lastContent := lastMessageText(messages)

	if e.caller == nil || len(window) == 0 {
		observability.Dispatch(e.onStep, observability.StepEvent{Step: observability.StepIntentExtractionError})
		obsmetrics.IntentExtractionOutcomesTotal.WithLabelValues("error").Inc()
		return fallback(lastContent)
	}

	userPrompt := formatWindow(window)
	raw, err := e.caller.Complete(ctx, e.prompt, userPrompt)
	if err != nil {
		observability.Dispatch(e.onStep, observability.StepEvent{Step: observability.StepIntentExtractionError, Err: err})
		obsmetrics.IntentExtractionOutcomesTotal.WithLabelValues("error").Inc()
		return fallback(lastContent)
	}

	extracted, err := parseIntent(raw)
	if err != nil {
		observability.Dispatch(e.onStep, observability.StepEvent{Step: observability.StepIntentExtractionError, Err: err})
		obsmetrics.IntentExtractionOutcomesTotal.WithLabelValues("error").Inc()
		return fallback(lastContent)
	}

	observability.Dispatch(e.onStep, observability.StepEvent{Step: observability.StepIntentExtractionComplete, ExtractedIntent: extracted})
	obsmetrics.IntentExtractionOutcomesTotal.WithLabelValues("complete").Inc()
	return extracted
}

func fallback(lastMessage string) Intent {
	return Intent{
		Intent:      lastMessage,
		Domain:      []string{},
		Stack:       []string{},
		Goal:        lastMessage,
		Constraints: []string{},
	}
}

func trailingWindow(messages []provider.Message, windowSize int) []provider.Message {
	if len(messages) <= windowSize {
		return messages
	}
	return messages[len(messages)-windowSize:]
}

func lastMessageText(messages []provider.Message) string {
	if len(messages) == 0 {
		return ""
	}
	last := messages[len(messages)-1]
	if s, ok := last.Content.(string); ok {
		return s
	}
	b, err := json.Marshal(last.Content)
	if err != nil {
		return ""
	}
	return string(b)
}

func formatWindow(messages []provider.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		content := m.Content
		text, ok := content.(string)
		if !ok {
			b, err := json.Marshal(content)
			if err == nil {
				text = string(b)
			}
		}
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, text))
	}
	return strings.Join(lines, "\n")
}

// parseIntent extracts the first brace-delimited substring from raw
// and JSON-decodes it, tolerating a model that wraps its JSON in
// prose despite being asked not to.
func parseIntent(raw string) (Intent, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return Intent{}, fmt.Errorf("intent: no JSON object found in extractor response")
	}
	var out Intent
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return Intent{}, fmt.Errorf("intent: malformed extractor response: %w", err)
	}
	if out.Intent == "" && out.Goal == "" {
		return Intent{}, fmt.Errorf("intent: extractor response missing required fields")
	}
	if out.Domain == nil {
		out.Domain = []string{}
	}
	if out.Stack == nil {
		out.Stack = []string{}
	}
	if out.Constraints == nil {
		out.Constraints = []string{}
	}
	return out, nil
}
