package replay

import (
	"github.com/kestrelmem/semanticmemory/provider"
)

// Capture interposes on a live provider stream: it forwards every
// chunk unchanged to out while appending it to an internal buffer,
// and invokes onComplete exactly once with the buffered chunks when
// the source closes without error. onComplete must not be invoked if
// the source stream errors.
func Capture(source <-chan provider.StreamEvent, onComplete func(captured []provider.Chunk)) <-chan provider.StreamEvent {
	out := make(chan provider.StreamEvent)
	go func() {
		defer close(out)
		var captured []provider.Chunk
		errored := false
		for ev := range source {
			out <- ev
			if ev.Err != nil {
				errored = true
				continue
			}
			captured = append(captured, ev.Chunk)
		}
		if !errored {
			onComplete(captured)
		}
	}()
	return out
}
