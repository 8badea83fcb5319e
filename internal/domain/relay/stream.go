package relay

import (
	"context"
	"time"

	"github.com/okian/crossing/internal/domain/model"
)

// Stream starts a goroutine that checks the slot every tick and emits each
// pending command exactly once. No lock is held while waiting for the tick or
// for the consumer; the check-and-clear is the whole critical section.
func (r *InMemoryRelay) Stream(ctx context.Context) <-chan model.Command {
	out := make(chan model.Command)
	go r.streamLoop(ctx, r.interval, out)
	return out
}

func (r *InMemoryRelay) streamLoop(ctx context.Context, interval time.Duration, out chan<- model.Command) {
	defer close(out)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		cmd, ok := r.consume(ModeStream)
		if !ok {
			continue
		}

		select {
		case out <- cmd:
		case <-ctx.Done():
			// The command was already consumed; at-most-once allows dropping it.
			return
		}
	}
}
