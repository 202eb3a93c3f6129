package intent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kestrelmem/semanticmemory/intent"
	"github.com/kestrelmem/semanticmemory/provider"
)

type stubCaller struct {
	response string
	err      error
}

func (s stubCaller) Complete(context.Context, string, string) (string, error) {
	return s.response, s.err
}

func TestExtractParsesWellFormedResponse(t *testing.T) {
	t.Parallel()

	caller := stubCaller{response: `Sure, here you go: {"intent":"debug crash","domain":["backend"],"stack":["go"],"goal":"fix the crash","constraints":["no downtime"]}`}
	e := intent.New(caller, 5, "", nil)

	got := e.Extract(context.Background(), []provider.Message{{Role: "user", Content: "why does it crash"}})

	if got.Goal != "fix the crash" {
		t.Errorf("Goal = %q, want %q", got.Goal, "fix the crash")
	}
	if len(got.Domain) != 1 || got.Domain[0] != "backend" {
		t.Errorf("Domain = %+v", got.Domain)
	}
}

func TestExtractFallsBackOnCallerError(t *testing.T) {
	t.Parallel()

	caller := stubCaller{err: errors.New("upstream unavailable")}
	e := intent.New(caller, 5, "", nil)

	got := e.Extract(context.Background(), []provider.Message{{Role: "user", Content: "last message text"}})

	if got.Goal != "last message text" {
		t.Errorf("expected fallback goal to be the last message, got %q", got.Goal)
	}
	if got.Domain == nil || got.Stack == nil || got.Constraints == nil {
		t.Errorf("fallback must return non-nil slices, got %+v", got)
	}
}

func TestExtractFallsBackOnMalformedJSON(t *testing.T) {
	t.Parallel()

	caller := stubCaller{response: "not json at all"}
	e := intent.New(caller, 5, "", nil)

	got := e.Extract(context.Background(), []provider.Message{{Role: "user", Content: "last message"}})

	if got.Goal != "last message" {
		t.Errorf("expected fallback on malformed JSON, got %+v", got)
	}
}

func TestExtractNeverErrorsWithNilCaller(t *testing.T) {
	t.Parallel()

	e := intent.New(nil, 5, "", nil)
	got := e.Extract(context.Background(), []provider.Message{{Role: "user", Content: "hello"}})

	if got.Goal != "hello" {
		t.Errorf("expected fallback with nil caller, got %+v", got)
	}
}
