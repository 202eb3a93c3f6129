package fingerprint

import (
	"strings"
	"testing"

	"github.com/kestrelmem/semanticmemory/provider"
)

func TestComputeIDDeterministic(t *testing.T) {
	t.Parallel()

	scope := BuildScope("gpt-4o", "be terse", Params{Temperature: 0.2}, nil)
	id1 := ComputeID(PrefixPrompt, scope, "what is the capital of france")
	id2 := ComputeID(PrefixPrompt, scope, "what is the capital of france")

	if id1 != id2 {
		t.Fatalf("ComputeID not deterministic: %q vs %q", id1, id2)
	}
	if !strings.HasPrefix(id1, string(PrefixPrompt)) {
		t.Errorf("id %q missing prefix %q", id1, PrefixPrompt)
	}
}

func TestComputeIDDiffersByPrefix(t *testing.T) {
	t.Parallel()

	scope := BuildScope("gpt-4o", "", Params{}, nil)
	promptID := ComputeID(PrefixPrompt, scope, "same text")
	intentID := ComputeID(PrefixIntent, scope, "same text")

	if promptID == intentID {
		t.Errorf("prompt and intent variants must not collide: %q", promptID)
	}
}

func TestBuildPromptTextLastMessageOnly(t *testing.T) {
	t.Parallel()

	params := provider.CallParams{
		Messages: []provider.Message{
			{Role: "user", Content: "first turn"},
			{Role: "assistant", Content: "reply"},
			{Role: "user", Content: "  Second Turn  "},
		},
	}

	got := BuildPromptText(params, false)
	if !strings.Contains(got, "second turn") {
		t.Errorf("expected normalized last message content, got %q", got)
	}
	if strings.Contains(got, "first turn") {
		t.Errorf("useFullMessages=false must not include earlier turns, got %q", got)
	}
}

func TestBuildPromptTextFullMessagesIncludesAllTurns(t *testing.T) {
	t.Parallel()

	params := provider.CallParams{
		Messages: []provider.Message{
			{Role: "user", Content: "first turn"},
			{Role: "user", Content: "second turn"},
		},
	}

	got := BuildPromptText(params, true)
	if !strings.Contains(got, "first turn") || !strings.Contains(got, "second turn") {
		t.Errorf("useFullMessages=true must include every turn, got %q", got)
	}
}

func TestBuildPromptTextFallsBackToPrompt(t *testing.T) {
	t.Parallel()

	params := provider.CallParams{Prompt: "  Plain Prompt  "}
	got := BuildPromptText(params, false)
	if got != "plain prompt" {
		t.Errorf("BuildPromptText(prompt) = %q, want %q", got, "plain prompt")
	}
}

func TestBuildIntentTextDropsEmptiesAndJoinsWithSpaces(t *testing.T) {
	t.Parallel()

	got := BuildIntentText("fix the bug", []string{"backend", ""}, []string{"go"}, nil)
	want := "fix the bug backend go"
	if got != want {
		t.Errorf("BuildIntentText = %q, want %q", got, want)
	}
}
