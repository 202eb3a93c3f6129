// Package embedding defines the collaborator contract for turning
// cache input text into a fixed-dimension vector.
package embedding

import "context"

// Service embeds text into a fixed-dimension vector.
type Service interface {
	Get(ctx context.Context, text string) ([]float32, error)
	// Dimensions reports the fixed vector size this service produces,
	// used to bootstrap the vector-index collection.
	Dimensions() int
}
