// Package relay implements the single-slot controller command mailbox.
//
// The relay is a last-value-wins mailbox, not a queue: a write replaces any
// unread command and every consuming read resets the slot to "none". A command
// is delivered to at most one consumer.
package relay

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/okian/crossing/internal/domain/model"
	"github.com/okian/crossing/pkg/metrics"
)

// DefaultStreamInterval is the stream tick, roughly 60 Hz.
const DefaultStreamInterval = 16 * time.Millisecond

// Read modes used for delivery metrics.
const (
	ModePoll   = "poll"
	ModeStream = "stream"
)

// Relay holds the most recent controller command.
type Relay interface {
	// Set overwrites the pending command and returns the accepted direction.
	Set(ctx context.Context, direction string) string

	// PollAndClear returns the pending direction and resets the slot.
	// Returns "none" when nothing is pending.
	PollAndClear(ctx context.Context) string

	// Stream emits each pending command once, checking on a fixed tick.
	// The channel is closed when ctx is done.
	Stream(ctx context.Context) <-chan model.Command

	// Peek returns the pending command without consuming it.
	Peek(ctx context.Context) model.Command
}

// InMemoryRelay implements Relay with a mutex-guarded slot.
type InMemoryRelay struct {
	mu      sync.Mutex
	pending model.Command

	interval time.Duration
	now      func() time.Time
	metrics  *metrics.Manager
}

// NewInMemoryRelay creates a relay with nothing pending.
func NewInMemoryRelay(opts ...Option) *InMemoryRelay {
	r := &InMemoryRelay{
		interval: DefaultStreamInterval,
		now:      time.Now,
		metrics:  metrics.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.pending = model.Command{Direction: model.DirectionNone, ReceivedAt: r.now()}
	r.metrics.SetCommandPending(false)
	return r
}

// Normalize maps an absent or blank direction to the "none" sentinel.
func Normalize(direction string) string {
	if strings.TrimSpace(direction) == "" {
		return model.DirectionNone
	}
	return direction
}

// Set overwrites the pending command unconditionally.
func (r *InMemoryRelay) Set(_ context.Context, direction string) string {
	direction = Normalize(direction)

	r.mu.Lock()
	overwrote := r.pending.Pending()
	r.pending = model.Command{Direction: direction, ReceivedAt: r.now()}
	// Gauge updates stay inside the lock so they follow slot order.
	r.metrics.SetCommandPending(r.pending.Pending())
	r.mu.Unlock()

	r.metrics.RecordCommandReceived(direction, overwrote)
	return direction
}

// PollAndClear atomically reads and resets the pending command.
func (r *InMemoryRelay) PollAndClear(_ context.Context) string {
	cmd, ok := r.consume(ModePoll)
	if !ok {
		return model.DirectionNone
	}
	return cmd.Direction
}

// Peek returns the pending command without consuming it.
func (r *InMemoryRelay) Peek(_ context.Context) model.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// consume is the only read-then-reset critical section. It reports false and
// leaves the slot untouched when nothing is pending.
func (r *InMemoryRelay) consume(mode string) (model.Command, bool) {
	r.mu.Lock()
	cmd := r.pending
	if !cmd.Pending() {
		r.mu.Unlock()
		return model.Command{}, false
	}
	r.pending = model.Command{Direction: model.DirectionNone, ReceivedAt: cmd.ReceivedAt}
	r.metrics.SetCommandPending(false)
	r.mu.Unlock()

	r.metrics.RecordCommandDelivered(mode)
	return cmd, true
}
