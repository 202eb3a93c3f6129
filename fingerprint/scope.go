// Package fingerprint turns a provider call into the (cache input
// text, scope tuple, composite id) triple that identifies a cache
// entry: the text feeds the embedding model, the scope gates hits to
// calls with matching model/system/params/tools, and the composite id
// is the stored entry's key.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/kestrelmem/semanticmemory/provider"
)

// Scope is the four-field tuple whose byte-equality gates a cache
// hit. Two calls share a scope iff all four fields are byte-equal.
type Scope struct {
	LLMModel   string `json:"llmModel"`
	SystemHash string `json:"systemHash"`
	ParamsHash string `json:"paramsHash"`
	ToolsHash  string `json:"toolsHash"`
}

// Equal reports whether s and other are byte-equal in all four fields.
func (s Scope) Equal(other Scope) bool {
	return s == other
}

// Params is the subset of call options hashed into ParamsHash.
type Params struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP"`
}

// BuildScope derives the scope tuple identically for both fingerprint
// variants from the call's model, system prompt, sampling params and
// tools descriptor.
func BuildScope(model, system string, params Params, tools any) Scope {
	toolsPayload := tools
	if toolsPayload == nil {
		toolsPayload = map[string]any{}
	}
	return Scope{
		LLMModel:   model,
		SystemHash: hashHex(system),
		ParamsHash: hashHex(string(CanonicalJSON(params))),
		ToolsHash:  hashHex(string(CanonicalJSON(toolsPayload))),
	}
}

// ScopeFromParams builds the scope tuple directly from a provider call.
func ScopeFromParams(p provider.CallParams) Scope {
	return BuildScope(p.Model, p.System, Params{Temperature: p.Temperature, TopP: p.TopP}, p.Tools)
}

func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
