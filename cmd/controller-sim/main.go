package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/crossing/internal/simulator"
	"github.com/okian/crossing/pkg/logger"
)

// Default configuration constants.
const (
	defaultDirections  = 40
	defaultInterval    = 50 * time.Millisecond
	defaultPredictions = 10
	defaultDrain       = 250 * time.Millisecond
	defaultTimeout     = 5 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:5000", "Base URL of the service")
		numDirs     = flag.Int("directions", defaultDirections, "Number of directions the controller posts")
		interval    = flag.Duration("interval", defaultInterval, "Pause between controller posts")
		predictions = flag.Int("predictions", defaultPredictions, "Number of /predict rounds")
		pollEvery   = flag.Duration("poll", 0, "Poll cadence of the game client; 0 disables polling")
		useStream   = flag.Bool("stream", true, "Consume /controller-stream")
		drain       = flag.Duration("drain", defaultDrain, "How long consumers keep reading after the last post")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFormat   = flag.String("log-format", "text", "Log format: text or json")
		logFile     = flag.String("log", "", "Also write logs to this file")
		verbose     = flag.Bool("verbose", false, "Log every delivery")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulator.ShowHelp()
		return
	}

	closeLog, err := simulator.SetupLogging(*logFormat, *logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	runner, err := simulator.NewRunner(simulator.Config{
		BaseURL:     *baseURL,
		Directions:  *numDirs,
		Interval:    *interval,
		Predictions: *predictions,
		PollEvery:   *pollEvery,
		UseStream:   *useStream,
		Drain:       *drain,
		Timeout:     *timeout,
		Verbose:     *verbose,
	}, logger.Get())
	if err != nil {
		os.Stderr.WriteString("Invalid options: " + err.Error() + "\n")
		os.Exit(1)
	}

	if _, err := runner.Run(ctx); err != nil {
		logger.Get().Error(ctx, "simulation failed", logger.Error(err))
		os.Exit(1)
	}
}
