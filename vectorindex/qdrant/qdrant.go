// Package qdrant adapts the Qdrant vector database as a
// vectorindex.Index: cosine similarity search over a single collection,
// with arbitrary caller-supplied metadata stored alongside each vector.
package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/kestrelmem/semanticmemory/vectorindex"
)

// pointNamespace is a fixed UUID namespace used to derive deterministic
// point ids from the cache's own string ids, which are not themselves
// UUIDs but Qdrant point ids must be.
var pointNamespace = uuid.MustParse("6f6a6f7e-2d63-4b1c-9c2c-6f6f6f6f6f6f")

// Client implements vectorindex.Index against a Qdrant collection.
type Client struct {
	qc             *qdrant.Client
	collectionName string
}

// New dials Qdrant using an "https://host:port" style URL and an
// optional API key/token over Qdrant's native gRPC protocol.
func New(rawURL, token, collectionName string) (*Client, error) {
	host, port, useTLS, err := parseEndpoint(rawURL)
	if err != nil {
		return nil, fmt.Errorf("vectorindex/qdrant: %w", err)
	}
	cfg := &qdrant.Config{
		Host:   host,
		Port:   port,
		UseTLS: useTLS,
	}
	if token != "" {
		cfg.APIKey = token
	}
	qc, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vectorindex/qdrant: fail to create client: %w", err)
	}
	return &Client{qc: qc, collectionName: collectionName}, nil
}

func parseEndpoint(raw string) (host string, port int, useTLS bool, err error) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid vector endpoint %q: %w", raw, err)
	}
	useTLS = u.Scheme != "http"
	host = u.Hostname()
	if host == "" {
		return "", 0, false, fmt.Errorf("invalid vector endpoint %q: no host", raw)
	}
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid vector endpoint port %q: %w", p, err)
		}
	} else if useTLS {
		port = 6334
	} else {
		port = 6333
	}
	return host, port, useTLS, nil
}

// EnsureCollection implements vectorindex.Index.
func (c *Client) EnsureCollection(ctx context.Context, dimensions int) error {
	exists, err := c.qc.CollectionExists(ctx, c.collectionName)
	if err != nil {
		return fmt.Errorf("vectorindex/qdrant: check collection %s: %w", c.collectionName, err)
	}
	if exists {
		return nil
	}
	err = c.qc.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("vectorindex/qdrant: create collection %s: %w", c.collectionName, err)
	}
	return nil
}

// Query implements vectorindex.Index.
func (c *Client) Query(ctx context.Context, vector []float32, topK int) ([]vectorindex.Candidate, error) {
	results, err := c.qc.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.collectionName,
		Query:          qdrant.NewQueryDense(vector),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vectorindex/qdrant: query: %w", err)
	}
	candidates := make([]vectorindex.Candidate, 0, len(results))
	for _, r := range results {
		id, ok := stringID(r.Payload)
		if !ok {
			continue
		}
		candidates = append(candidates, vectorindex.Candidate{
			ID:       id,
			Score:    float64(r.Score),
			Metadata: payloadToMap(r.Payload),
		})
	}
	return candidates, nil
}

// Upsert implements vectorindex.Index.
func (c *Client) Upsert(ctx context.Context, entry vectorindex.Entry) error {
	payload := map[string]any{}
	for k, v := range entry.Metadata {
		payload[k] = v
	}
	payload["_id"] = entry.ID

	_, err := c.qc.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.collectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(pointUUID(entry.ID).String()),
				Vectors: qdrant.NewVectorsDense(entry.Vector),
				Payload: qdrant.NewValueMap(payload),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("vectorindex/qdrant: upsert %s: %w", entry.ID, err)
	}
	return nil
}

// Close implements vectorindex.Index.
func (c *Client) Close() error {
	return c.qc.Close()
}

// pointUUID derives a deterministic UUID from the cache's own string
// id, so re-upserting the same id replaces the same Qdrant point
// instead of creating a duplicate.
func pointUUID(id string) uuid.UUID {
	return uuid.NewSHA1(pointNamespace, []byte(id))
}

func stringID(payload map[string]*qdrant.Value) (string, bool) {
	v, ok := payload["_id"]
	if !ok {
		return "", false
	}
	return v.GetStringValue(), true
}

func payloadToMap(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if k == "_id" {
			continue
		}
		out[k] = valueToAny(v)
	}
	return out
}

func valueToAny(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch kind := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_StructValue:
		nested := map[string]any{}
		for k, nv := range kind.StructValue.GetFields() {
			nested[k] = valueToAny(nv)
		}
		return nested
	case *qdrant.Value_ListValue:
		list := make([]any, 0, len(kind.ListValue.GetValues()))
		for _, lv := range kind.ListValue.GetValues() {
			list = append(list, valueToAny(lv))
		}
		return list
	default:
		return nil
	}
}

var _ vectorindex.Index = (*Client)(nil)
