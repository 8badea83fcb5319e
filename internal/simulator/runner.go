package simulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/crossing/pkg/logger"
)

// Runner executes simulation runs against one service.
type Runner struct {
	cfg Config
	log logger.Logger
}

// NewRunner validates cfg and returns a runner.
func NewRunner(cfg Config, log logger.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{cfg: cfg, log: log}, nil
}

// tally collects deliveries from the concurrent consumers.
type tally struct {
	mu      sync.Mutex
	sent    map[string]int
	report  *Report
	verbose bool
	log     logger.Logger
}

func (t *tally) recordSent(direction string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent[direction]++
	t.report.DirectionsSent++
}

func (t *tally) recordDelivery(ctx context.Context, via, direction string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if via == "stream" {
		t.report.StreamFrames++
	} else {
		t.report.PolledCommands++
	}
	if t.sent[direction] == 0 {
		t.report.Unknown++
	}
	if t.verbose {
		t.log.Info(ctx, "command delivered", logger.String("via", via), logger.String("direction", direction))
	}
}

// Run checks health, then runs the controller, the consumers and the
// difficulty client concurrently and returns the report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		SessionID: uuid.NewString(),
		Levels:    make(map[int]int),
		StartTime: time.Now(),
	}
	client := newHTTPClient(r.cfg.BaseURL, report.SessionID, r.cfg.Timeout)
	log := r.log.Named("simulator")

	log.Info(ctx, "starting crossing simulation",
		logger.String("session", report.SessionID),
		logger.String("baseURL", r.cfg.BaseURL),
		logger.Int("directions", r.cfg.Directions),
		logger.Int("predictions", r.cfg.Predictions),
		logger.Bool("stream", r.cfg.UseStream),
		logger.Duration("pollEvery", r.cfg.PollEvery))

	if err := client.Health(ctx); err != nil {
		return nil, err
	}

	t := &tally{sent: make(map[string]int), report: report, verbose: r.cfg.Verbose, log: log}

	consumers, consumersCtx := errgroup.WithContext(ctx)
	consumersCtx, stopConsumers := context.WithCancel(consumersCtx)
	defer stopConsumers()

	if r.cfg.UseStream {
		ready := make(chan struct{})
		streamDone := make(chan error, 1)
		consumers.Go(func() error {
			err := client.Stream(consumersCtx, ready, func(d string) {
				t.recordDelivery(consumersCtx, "stream", d)
			})
			streamDone <- err
			return err
		})
		select {
		case <-ready:
		case err := <-streamDone:
			if err == nil {
				err = fmt.Errorf("%w: stream closed before it opened", ErrUnhealthy)
			}
			return nil, err
		case <-ctx.Done():
			stopConsumers()
			_ = consumers.Wait()
			return nil, fmt.Errorf("open stream: %w", ctx.Err())
		}
	}
	if r.cfg.PollEvery > 0 {
		consumers.Go(func() error {
			return r.poll(consumersCtx, client, t)
		})
	}

	producers, producersCtx := errgroup.WithContext(ctx)
	producers.Go(func() error {
		return r.control(producersCtx, client, t)
	})
	producers.Go(func() error {
		return r.predict(producersCtx, client, report, log)
	})

	producerErr := producers.Wait()

	// Let consumers pick up the last command before stopping them.
	select {
	case <-time.After(r.cfg.Drain):
	case <-ctx.Done():
	}
	stopConsumers()
	consumerErr := consumers.Wait()

	report.Duration = time.Since(report.StartTime)
	report.Undelivered = max(0, report.DirectionsSent-report.Delivered())

	if producerErr != nil {
		return report, producerErr
	}
	if consumerErr != nil {
		return report, consumerErr
	}
	if err := Verify(report); err != nil {
		return report, err
	}

	displayReport(ctx, log, report)
	return report, nil
}

// control posts directions on a fixed cadence, cycling through the four moves.
func (r *Runner) control(ctx context.Context, client *HTTPClient, t *tally) error {
	if r.cfg.Directions == 0 {
		return nil
	}
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for i := 0; i < r.cfg.Directions; i++ {
		direction := directions[i%len(directions)]
		// Count before posting so a consumer never sees a direction not yet tallied.
		t.recordSent(direction)
		if _, err := client.SetDirection(ctx, direction); err != nil {
			t.mu.Lock()
			t.report.DirectionsSent--
			t.report.DirectionsFailed++
			t.mu.Unlock()
			r.log.Warn(ctx, "controller post failed", logger.Error(err))
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("controller stopped: %w", ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}

// poll consumes the slot on a fixed cadence like a game without a stream.
func (r *Runner) poll(ctx context.Context, client *HTTPClient, t *tally) error {
	ticker := time.NewTicker(r.cfg.PollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		direction, err := client.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("poll: %w", err)
		}
		if direction != "none" {
			t.recordDelivery(ctx, "poll", direction)
		}
	}
}

// predict plays a game: each round scores a crossing, every third round loses
// an attempt, and the stats at that point are sent for a difficulty.
func (r *Runner) predict(ctx context.Context, client *HTTPClient, report *Report, log logger.Logger) error {
	stats := InitialStats()
	score := 0

	for round := 1; round <= r.cfg.Predictions; round++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("difficulty client stopped: %w", err)
		}
		score += pointsPerCrossing
		if round%3 == 0 {
			stats = stats.Collide()
		}
		stats = stats.Advance(score)

		prediction, err := client.Predict(ctx, stats)
		if err != nil {
			report.PredictionsFailed++
			log.Warn(ctx, "prediction failed, using score level",
				logger.Int("round", round),
				logger.Int("level", ScoreLevel(score)),
				logger.Error(err))
			continue
		}
		if report.PredictionsOK == 0 || prediction < report.MinDifficulty {
			report.MinDifficulty = prediction
		}
		if report.PredictionsOK == 0 || prediction > report.MaxDifficulty {
			report.MaxDifficulty = prediction
		}
		report.PredictionsOK++
		report.Levels[Level(prediction)]++
	}
	return nil
}

// Verify checks the at-most-once delivery contract against the report.
func Verify(report *Report) error {
	if report.Delivered() > report.DirectionsSent {
		return fmt.Errorf("%w: %d delivered but only %d sent", ErrDelivery, report.Delivered(), report.DirectionsSent)
	}
	if report.Unknown > 0 {
		return fmt.Errorf("%w: %d deliveries carried directions never sent", ErrDelivery, report.Unknown)
	}
	return nil
}

func displayReport(ctx context.Context, log logger.Logger, report *Report) {
	log.Info(ctx, "simulation finished",
		logger.String("session", report.SessionID),
		logger.Int("directionsSent", report.DirectionsSent),
		logger.Int("directionsFailed", report.DirectionsFailed),
		logger.Int("streamFrames", report.StreamFrames),
		logger.Int("polledCommands", report.PolledCommands),
		logger.Int("undelivered", report.Undelivered),
		logger.Int("predictionsOK", report.PredictionsOK),
		logger.Int("predictionsFailed", report.PredictionsFailed),
		logger.Float64("minDifficulty", report.MinDifficulty),
		logger.Float64("maxDifficulty", report.MaxDifficulty),
		logger.Any("levels", report.Levels),
		logger.Duration("duration", report.Duration))
}
