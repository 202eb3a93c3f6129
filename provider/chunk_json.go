package provider

import "encoding/json"

// MarshalJSON flattens Extra alongside the known fields so an unknown
// chunk type keeps all its fields through capture and replay. Keys are
// written in sorted order, so the original key order and spacing are
// not kept.
func (c Chunk) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": c.Type}
	for k, v := range c.Extra {
		out[k] = v
	}
	if c.ID != "" {
		out["id"] = c.ID
	}
	if c.Delta != "" {
		out["delta"] = c.Delta
	}
	if c.Timestamp != nil {
		out["timestamp"] = c.Timestamp
	}
	if c.FinishReason != "" {
		out["finishReason"] = c.FinishReason
	}
	if c.Usage != nil {
		out["usage"] = c.Usage
	}
	return json.Marshal(out)
}

// UnmarshalJSON preserves any field not recognized by Chunk in Extra,
// so a capture/replay round trip forwards unknown chunk shapes intact.
func (c *Chunk) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	known := map[string]bool{
		"type": true, "id": true, "delta": true, "timestamp": true,
		"finishReason": true, "usage": true,
	}
	type alias Chunk
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Chunk(a)
	c.Extra = map[string]any{}
	for k, v := range raw {
		if known[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		c.Extra[k] = val
	}
	return nil
}
