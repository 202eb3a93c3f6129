package replay

import (
	"context"
	"time"

	"github.com/kestrelmem/semanticmemory/provider"
)

// Paced emits chunks onto a channel with the given pacing, honoring
// ctx cancellation at every delay boundary. The channel is closed
// when the sequence is exhausted or ctx is done.
func Paced(ctx context.Context, chunks []provider.Chunk, initialDelay, betweenDelay time.Duration) <-chan provider.StreamEvent {
	out := make(chan provider.StreamEvent)
	go func() {
		defer close(out)
		if !sleep(ctx, initialDelay) {
			return
		}
		for i, c := range chunks {
			if i > 0 {
				if !sleep(ctx, betweenDelay) {
					return
				}
			}
			select {
			case out <- provider.StreamEvent{Chunk: c}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
