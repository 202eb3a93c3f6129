package logging_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kestrelmem/semanticmemory/internal/logging"
)

func TestFromContextReturnsDefaultWhenUnset(t *testing.T) {
	t.Parallel()

	got := logging.FromContext(context.Background())
	if got == nil {
		t.Fatal("expected a non-nil default logger")
	}
}

func TestWithLoggerRoundTripsThroughFromContext(t *testing.T) {
	t.Parallel()

	custom := zap.NewNop()
	ctx := logging.WithLogger(context.Background(), custom)

	if got := logging.FromContext(ctx); got != custom {
		t.Errorf("FromContext did not return the attached logger")
	}
}

func TestFromContextHandlesNilContext(t *testing.T) {
	t.Parallel()

	if got := logging.FromContext(nil); got == nil {
		t.Error("expected a non-nil fallback logger for a nil context")
	}
}
