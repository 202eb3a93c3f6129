package config

import "strings"

// ValidationError aggregates every configuration problem found by
// Validate, so a caller sees the full list of missing secrets in one
// error instead of fixing them one at a time.
type ValidationError struct {
	Causes []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, c.Error())
	}
	return "semanticmemory: invalid configuration: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual causes to errors.Is/errors.As.
func (e *ValidationError) Unwrap() []error {
	return e.Causes
}
