package memory

import (
	"context"

	"github.com/kestrelmem/semanticmemory/provider"
)

// The four public operation shapes callers dispatch through. The
// middleware core is agnostic to text vs. structured-object results:
// the distinction lives entirely in the caller's CallParams/result
// shapes, so all four delegate to the same wrap functions.

// StreamText wraps a streaming text completion call.
func (m *Memory) StreamText(ctx context.Context, params provider.CallParams, doStream provider.DoStream) (provider.StreamResult, error) {
	return m.WrapStream(ctx, params, doStream)
}

// GenerateText wraps a non-stream text completion call.
func (m *Memory) GenerateText(ctx context.Context, params provider.CallParams, doGenerate provider.DoGenerate) (provider.GenerateResult, error) {
	return m.WrapGenerate(ctx, params, doGenerate)
}

// StreamObject wraps a streaming structured-object generation call.
func (m *Memory) StreamObject(ctx context.Context, params provider.CallParams, doStream provider.DoStream) (provider.StreamResult, error) {
	return m.WrapStream(ctx, params, doStream)
}

// GenerateObject wraps a non-stream structured-object generation call.
func (m *Memory) GenerateObject(ctx context.Context, params provider.CallParams, doGenerate provider.DoGenerate) (provider.GenerateResult, error) {
	return m.WrapGenerate(ctx, params, doGenerate)
}
