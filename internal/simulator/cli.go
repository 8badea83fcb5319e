package simulator

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/crossing/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// SetupLogging initializes the global logger writing to stdout and, when
// logFile is set, to that file too.
func SetupLogging(format, logFile string, verbose bool) (func() error, error) {
	var out io.Writer = os.Stdout
	closeFn := func() error { return nil }

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closeFn = file.Close
	}

	if err := logger.Init(logger.WithFormat(format), logger.WithOutput(out)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closeFn, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Crossing Controller Simulator
=============================

Plays the three roles around a crossing service: a controller device posting
directions, a game client reading them from /controller-stream and by polling
/controller, and a difficulty client posting gameplay stats to /predict.

Usage:
  go run ./cmd/controller-sim [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:5000")
  -directions int
        Number of directions the controller posts (default 40)
  -interval duration
        Pause between controller posts (default 50ms)
  -predictions int
        Number of /predict rounds (default 10)
  -poll duration
        Poll cadence of the game client, 0 disables polling (default 0)
  -stream
        Consume /controller-stream (default true)
  -drain duration
        How long consumers keep reading after the last post (default 250ms)
  -timeout duration
        HTTP request timeout (default 5s)
  -log-format string
        Log format: text or json (default "text")
  -log string
        Also write logs to this file
  -verbose
        Log every delivery
  -help
        Show this help message

Examples:
  # Stream only, like the game
  go run ./cmd/controller-sim

  # Stream and poller racing for the same commands
  go run ./cmd/controller-sim -poll 10ms -directions 200 -interval 5ms
`)
}
