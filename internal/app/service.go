// Package service provides the core service that implements the dependencies
// required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/crossing/internal/adapters/artifact"
	"github.com/okian/crossing/internal/domain/difficulty"
	"github.com/okian/crossing/internal/domain/model"
	"github.com/okian/crossing/internal/domain/relay"
	"github.com/okian/crossing/pkg/logger"
	"github.com/okian/crossing/pkg/metrics"
)

// Service owns the command relay and the difficulty scorer.
type Service struct {
	mu sync.RWMutex

	// Core components
	relay  *relay.InMemoryRelay
	scorer *difficulty.PipelineScorer

	// Configuration
	streamInterval time.Duration
	scalerPath     string
	modelPath      string
	artifacts      *artifact.Set
	metrics        *metrics.Manager

	// State
	started     bool
	startedAt   time.Time
	predictions atomic.Int64
	failures    atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStreamInterval sets the tick of each controller stream.
func WithStreamInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.streamInterval = d
		}
	}
}

// WithArtifactPaths sets the scaler and model files loaded by Start.
func WithArtifactPaths(scalerPath, modelPath string) Option {
	return func(s *Service) {
		s.scalerPath = scalerPath
		s.modelPath = modelPath
	}
}

// WithArtifacts provides already loaded artifacts; Start skips the files.
func WithArtifacts(set artifact.Set) Option {
	return func(s *Service) {
		s.artifacts = &set
	}
}

// WithMetrics records relay and scorer activity on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New constructs a new Service. The relay is usable immediately; scoring
// needs Start.
func New(opts ...Option) *Service {
	s := &Service{
		streamInterval: relay.DefaultStreamInterval,
		scalerPath:     "artifacts/scaler.yaml",
		modelPath:      "artifacts/model.yaml",
		metrics:        metrics.Default(),
		logger:         logger.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.relay = relay.NewInMemoryRelay(
		relay.WithStreamInterval(s.streamInterval),
		relay.WithMetrics(s.metrics),
	)
	return s
}

// Start loads the artifacts and builds the scorer.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting crossing service...")

	set, err := s.loadArtifacts(ctx)
	if err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	s.scorer = difficulty.NewPipelineScorer(set.Scaler, set.Predictor, difficulty.WithMetrics(s.metrics))

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "crossing service started",
		logger.Duration("streamInterval", s.streamInterval),
		logger.String("scaler", s.scalerPath),
		logger.String("model", s.modelPath),
	)
	return nil
}

func (s *Service) loadArtifacts(ctx context.Context) (artifact.Set, error) {
	if s.artifacts != nil {
		return *s.artifacts, nil
	}
	return artifact.Load(ctx, s.scalerPath, s.modelPath)
}

// Stop marks the service stopped. Scoring calls fail until the next Start.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.scorer = nil
	s.logger.Info(context.Background(), "crossing service stopped")
}

// Set stores the latest controller direction.
func (s *Service) Set(ctx context.Context, direction string) string {
	return s.relay.Set(ctx, direction)
}

// PollAndClear consumes the pending direction.
func (s *Service) PollAndClear(ctx context.Context) string {
	return s.relay.PollAndClear(ctx)
}

// Stream emits each pending command once until ctx is done.
func (s *Service) Stream(ctx context.Context) <-chan model.Command {
	return s.relay.Stream(ctx)
}

// Peek returns the pending command without consuming it.
func (s *Service) Peek(ctx context.Context) model.Command {
	return s.relay.Peek(ctx)
}

// Score computes the difficulty for one request.
func (s *Service) Score(ctx context.Context, p difficulty.Payload) (float64, error) {
	s.mu.RLock()
	scorer := s.scorer
	s.mu.RUnlock()

	if scorer == nil {
		s.failures.Add(1)
		return 0, fmt.Errorf("%w: %w", difficulty.ErrArtifact, ErrNotStarted)
	}

	score, err := scorer.Score(ctx, p)
	if err != nil {
		s.failures.Add(1)
		return 0, err
	}
	s.predictions.Add(1)
	return score, nil
}

// RecordRejectedPrediction counts a predict request that failed before
// scoring, such as an undecodable body.
func (s *Service) RecordRejectedPrediction(ctx context.Context, err error) {
	s.failures.Add(1)
	s.logger.Debug(ctx, "prediction rejected", logger.Error(err))
}

// GetStats returns service statistics for monitoring. It never consumes the
// pending command.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := s.relay.Peek(context.Background())
	stats := map[string]interface{}{
		"started":            s.started,
		"streamIntervalMs":   s.streamInterval.Milliseconds(),
		"pendingDirection":   pending.Direction,
		"pending":            pending.Pending(),
		"predictions":        s.predictions.Load(),
		"predictionFailures": s.failures.Load(),
	}
	if pending.Pending() {
		stats["pendingSince"] = pending.ReceivedAt.UTC().Format(time.RFC3339Nano)
	}
	if s.started {
		stats["uptimeSeconds"] = time.Since(s.startedAt).Seconds()
	}
	return stats
}
