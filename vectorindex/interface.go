// Package vectorindex defines the similarity-index collaborator
// contract: embedding text is the caller's job (see package
// embedding); this package only queries and upserts vectors with
// metadata.
package vectorindex

import "context"

// Candidate is one result of a similarity query, sorted by the index
// in descending score order.
type Candidate struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// Entry is a vector plus its point metadata, as stored by Upsert.
type Entry struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
}

// Index is the similarity-index client contract: query top-K
// candidates and upsert new entries.
type Index interface {
	// EnsureCollection bootstraps the backing collection/namespace for
	// the given fixed vector dimension, idempotently.
	EnsureCollection(ctx context.Context, dimensions int) error

	// Query returns up to topK candidates for vector, sorted by
	// descending score, with metadata attached.
	Query(ctx context.Context, vector []float32, topK int) ([]Candidate, error)

	// Upsert writes or replaces the entry with the given id.
	Upsert(ctx context.Context, entry Entry) error

	Close() error
}
