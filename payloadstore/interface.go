// Package payloadstore defines the key-value collaborator contract: a
// JSON payload store with per-key expiry and NX-locking for the
// write-back path.
package payloadstore

import (
	"context"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist. Callers
// treat this as a cache miss, never as a fatal error.
var ErrNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "payloadstore: key not found" }

// Store is the payload-store client contract.
type Store interface {
	// Get returns the raw JSON payload stored at id, or ErrNotFound.
	Get(ctx context.Context, id string) ([]byte, error)
	// Set stores payload at id with the given expiry.
	Set(ctx context.Context, id string, payload []byte, ttl time.Duration) error
	// SetNX acquires the named lock, returning true iff this call won
	// it. The lock self-expires after ttl to heal after a writer crash.
	SetNX(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	// Del releases a lock (or deletes any other key).
	Del(ctx context.Context, key string) error

	Close() error
}
