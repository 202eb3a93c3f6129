package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/kestrelmem/semanticmemory/provider"
)

// Prefix distinguishes composite ids of the prompt and intent
// variants so the two never collide in the same index.
type Prefix string

const (
	PrefixPrompt Prefix = "llm:"
	PrefixIntent Prefix = "intent:"
)

// Fingerprint is the (cache input text, scope tuple, composite id)
// triple produced for one call.
type Fingerprint struct {
	Text  string
	Scope Scope
	ID    string
}

// messageJSON mirrors {role, content} with content JSON-serialized
// when it isn't already a plain string.
type messageJSON struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

func toMessageJSON(m provider.Message) messageJSON {
	if s, ok := m.Content.(string); ok {
		return messageJSON{Role: m.Role, Content: s}
	}
	return messageJSON{Role: m.Role, Content: string(CanonicalJSON(m.Content))}
}

// BuildPromptText derives the cache text for the prompt-similarity
// variant: the last message (or the full transcript, when
// useFullMessages is set) canonicalized to JSON, or the raw prompt
// string, normalized.
func BuildPromptText(params provider.CallParams, useFullMessages bool) string {
	var raw string
	switch {
	case len(params.Messages) > 0 && !useFullMessages:
		last := toMessageJSON(params.Messages[len(params.Messages)-1])
		raw = string(CanonicalJSON(last))
	case len(params.Messages) > 0 && useFullMessages:
		all := make([]messageJSON, len(params.Messages))
		for i, m := range params.Messages {
			all[i] = toMessageJSON(m)
		}
		raw = string(CanonicalJSON(all))
	case params.Prompt != "":
		raw = params.Prompt
	default:
		raw = ""
	}
	return Normalize(raw)
}

// BuildIntentText derives the cache text for the intent-similarity
// variant from an already-extracted intent, concatenating
// [goal, domain..., stack..., constraints...] with spaces and
// dropping empties.
func BuildIntentText(goal string, domain, stack, constraints []string) string {
	parts := make([]string, 0, 1+len(domain)+len(stack)+len(constraints))
	if goal != "" {
		parts = append(parts, goal)
	}
	for _, group := range [][]string{domain, stack, constraints} {
		for _, v := range group {
			if v != "" {
				parts = append(parts, v)
			}
		}
	}
	return Normalize(strings.Join(parts, " "))
}

// ComputeID derives the composite id from a scope and cache text:
// prefix + hex(SHA256(join('|', scope fields) + '|' + text)).
func ComputeID(prefix Prefix, s Scope, text string) string {
	joined := strings.Join([]string{s.LLMModel, s.SystemHash, s.ParamsHash, s.ToolsHash}, "|") + "|" + text
	sum := sha256.Sum256([]byte(joined))
	return string(prefix) + hex.EncodeToString(sum[:])
}
