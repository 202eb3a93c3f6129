package qdrant

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestParseEndpointDefaultsPortByScheme(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		raw      string
		wantHost string
		wantPort int
		wantTLS  bool
	}{
		{"https url gets 6334", "https://vector.example.com", "vector.example.com", 6334, true},
		{"http url gets 6333", "http://localhost", "localhost", 6333, false},
		{"scheme-less input defaults to https", "vector.example.com", "vector.example.com", 6334, true},
		{"explicit port is preserved", "https://vector.example.com:9000", "vector.example.com", 9000, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			host, port, tls, err := parseEndpoint(tc.raw)
			if err != nil {
				t.Fatalf("parseEndpoint(%q): %v", tc.raw, err)
			}
			if host != tc.wantHost || port != tc.wantPort || tls != tc.wantTLS {
				t.Errorf("parseEndpoint(%q) = (%q, %d, %v), want (%q, %d, %v)",
					tc.raw, host, port, tls, tc.wantHost, tc.wantPort, tc.wantTLS)
			}
		})
	}
}

func TestParseEndpointRejectsMissingHost(t *testing.T) {
	t.Parallel()

	if _, _, _, err := parseEndpoint("https://"); err == nil {
		t.Fatal("expected an error for an endpoint with no host")
	}
}

func TestPointUUIDIsDeterministic(t *testing.T) {
	t.Parallel()

	a := pointUUID("llm:abc123")
	b := pointUUID("llm:abc123")
	if a != b {
		t.Fatalf("pointUUID not deterministic: %v vs %v", a, b)
	}
}

func TestPointUUIDDiffersByID(t *testing.T) {
	t.Parallel()

	a := pointUUID("llm:one")
	b := pointUUID("llm:two")
	if a == b {
		t.Fatalf("expected different UUIDs for different ids, got %v for both", a)
	}
}

func TestValueToAnyDiscriminatesZeroValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		v    *qdrant.Value
		want any
	}{
		{"empty string", &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: ""}}, ""},
		{"zero int", &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: 0}}, int64(0)},
		{"zero double", &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: 0}}, float64(0)},
		{"false bool", &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: false}}, false},
		{"nil value", nil, nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := valueToAny(tc.v)
			if got != tc.want {
				t.Errorf("valueToAny(%+v) = %#v (%T), want %#v (%T)", tc.v, got, got, tc.want, tc.want)
			}
		})
	}
}

func TestPayloadToMapDropsInternalIDField(t *testing.T) {
	t.Parallel()

	payload := map[string]*qdrant.Value{
		"_id":      {Kind: &qdrant.Value_StringValue{StringValue: "llm:abc"}},
		"llmModel": {Kind: &qdrant.Value_StringValue{StringValue: "gpt-4o"}},
	}

	got := payloadToMap(payload)
	if _, ok := got["_id"]; ok {
		t.Error("payloadToMap must not expose the internal _id field")
	}
	if got["llmModel"] != "gpt-4o" {
		t.Errorf("llmModel = %v, want gpt-4o", got["llmModel"])
	}
}
