// Package model contains domain models passed between layers.
package model

import "time"

// DirectionNone is the sentinel meaning no command is pending.
const DirectionNone = "none"

// Command is the relay's pending direction and the time it was written.
type Command struct {
	Direction  string    // "up", "down", "left", "right", ... or DirectionNone
	ReceivedAt time.Time // informational; never used for expiry
}

// Pending reports whether the command carries a real direction.
func (c Command) Pending() bool {
	return c.Direction != "" && c.Direction != DirectionNone
}
