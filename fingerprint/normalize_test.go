package fingerprint

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trims and lowercases", "  Hello World  ", "hello world"},
		{"collapses internal whitespace", "hello\t\n  world", "hello world"},
		{"empty stays empty", "", ""},
		{"already normalized is unchanged", "already normalized", "already normalized"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Normalize(tc.in)
			if got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"  Mixed   CASE\ttext\n", "already normalized", ""}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestCanonicalJSONStableAcrossMapOrder(t *testing.T) {
	t.Parallel()

	a := map[string]any{"b": 1, "a": 2, "c": 3}
	b := map[string]any{"c": 3, "a": 2, "b": 1}

	if string(CanonicalJSON(a)) != string(CanonicalJSON(b)) {
		t.Errorf("CanonicalJSON not stable across map construction order: %s vs %s", CanonicalJSON(a), CanonicalJSON(b))
	}
}
