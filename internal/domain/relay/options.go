// Package relay implements the single-slot controller command mailbox.
package relay

import (
	"time"

	"github.com/okian/crossing/pkg/metrics"
)

// Option applies a configuration option to the InMemoryRelay.
type Option func(*InMemoryRelay)

// WithStreamInterval sets the tick between stream checks.
func WithStreamInterval(interval time.Duration) Option {
	return func(r *InMemoryRelay) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

// WithClock overrides the time source used to stamp writes.
func WithClock(now func() time.Time) Option {
	return func(r *InMemoryRelay) {
		if now != nil {
			r.now = now
		}
	}
}

// WithMetrics records relay activity on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(r *InMemoryRelay) {
		if m != nil {
			r.metrics = m
		}
	}
}
