package fingerprint

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Normalize trims, lowercases, and collapses runs of whitespace to a
// single space. Casing is simple case-fold, not locale-aware.
// Idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// CanonicalJSON marshals v with map keys in sorted order, so the same
// logical value always produces the same bytes regardless of how it
// was built. encoding/json already sorts map[string]T keys; this
// exists so callers have one obvious entry point and so the guarantee
// is documented rather than implicit.
func CanonicalJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// Values reaching this function are always JSON-marshalable
		// (structs, maps, slices of those); a marshal failure means a
		// caller passed something like a channel or a NaN float, which
		// is a programming error, not a runtime condition to recover
		// from.
		return []byte("null")
	}
	return b
}
