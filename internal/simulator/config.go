// Package simulator drives a running crossing service the way the game does: a
// controller device posting directions, a game client consuming them through
// the stream and by polling, and a difficulty client posting gameplay stats.
package simulator

import (
	"fmt"
	"strings"
	"time"
)

// Config holds configuration for one simulation run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Directions  int           // Number of directions the controller posts
	Interval    time.Duration // Pause between controller posts
	Predictions int           // Number of /predict rounds
	PollEvery   time.Duration // Poll cadence of the game client; 0 disables polling
	UseStream   bool          // Consume /controller-stream
	Drain       time.Duration // How long consumers keep reading after the last post
	Timeout     time.Duration // HTTP request timeout
	Verbose     bool          // Log every delivery
}

// Validate reports the first unusable field.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.BaseURL) == "":
		return fmt.Errorf("%w: base url must not be empty", ErrConfig)
	case c.Directions < 0 || c.Predictions < 0:
		return fmt.Errorf("%w: counts must not be negative", ErrConfig)
	case c.Directions > 0 && c.Interval <= 0:
		return fmt.Errorf("%w: interval must be positive", ErrConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrConfig)
	}
	return nil
}

// Report summarizes a run.
type Report struct {
	SessionID string

	DirectionsSent   int
	DirectionsFailed int
	StreamFrames     int
	PolledCommands   int
	// Undelivered counts commands overwritten before any consumer read them.
	Undelivered int
	// Unknown counts delivered directions that were never sent.
	Unknown int

	PredictionsOK     int
	PredictionsFailed int
	MinDifficulty     float64
	MaxDifficulty     float64
	// Levels counts the client-side 1..10 difficulty levels seen.
	Levels map[int]int

	StartTime time.Time
	Duration  time.Duration
}

// Delivered is the number of commands a consumer received.
func (r *Report) Delivered() int {
	return r.StreamFrames + r.PolledCommands
}
