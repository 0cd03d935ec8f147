package status

import (
	"context"
	"time"
)

// minInterval bounds how often Stream emits: the indexer and queue
// change far more often than a human (or a dashboard repaint) cares
// about.
const minInterval = time.Second

// Stream sends Snapshots on the returned channel no faster than once
// per second. A queue event triggers an immediate snapshot when at
// least a second has passed since the previous one, so a completed job
// is reflected promptly rather than waiting for the next tick. The
// channel is closed when ctx is done.
func (r *Reporter) Stream(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot, 1)
	sub := r.queue.Subscribe()

	go func() {
		defer close(out)
		defer r.queue.Unsubscribe(sub)

		var last time.Time
		send := func() {
			if !last.IsZero() && time.Since(last) < minInterval {
				return
			}
			last = time.Now()
			select {
			case out <- r.Snapshot():
			default:
			}
		}
		send()

		ticker := time.NewTicker(minInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				send()
			case _, ok := <-sub:
				if !ok {
					return
				}
				send()
			}
		}
	}()

	return out
}
