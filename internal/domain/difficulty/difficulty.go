// Package difficulty turns gameplay features into a difficulty score through a
// pre-fit scaling transform and a pre-trained predictor.
package difficulty

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/okian/crossing/internal/domain/model"
	"github.com/okian/crossing/pkg/metrics"
)

// Transformer is a deterministic feature scaling transform.
type Transformer interface {
	Transform(features []float64) ([]float64, error)
}

// Predictor maps a scaled feature tuple to a scalar.
type Predictor interface {
	Predict(features []float64) (float64, error)
}

// Scorer computes a difficulty score for one request.
type Scorer interface {
	Score(ctx context.Context, p Payload) (float64, error)
}

// Option applies a configuration option to the PipelineScorer.
type Option func(*PipelineScorer)

// WithMetrics records scoring activity on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *PipelineScorer) {
		if m != nil {
			s.metrics = m
		}
	}
}

// PipelineScorer applies scaler then predictor. It keeps no per-request state
// and never writes to its collaborators, so it is safe for concurrent use.
type PipelineScorer struct {
	scaler    Transformer
	predictor Predictor
	metrics   *metrics.Manager
}

// NewPipelineScorer creates a scorer over the given artifacts.
func NewPipelineScorer(scaler Transformer, predictor Predictor, opts ...Option) *PipelineScorer {
	s := &PipelineScorer{
		scaler:    scaler,
		predictor: predictor,
		metrics:   metrics.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score validates the payload and scores it.
func (s *PipelineScorer) Score(ctx context.Context, p Payload) (float64, error) {
	features, err := p.Features()
	if err != nil {
		s.metrics.RecordPredictionError(KindInput)
		return 0, err
	}
	return s.ScoreFeatures(ctx, features)
}

// ScoreFeatures runs the scaling and inference steps on a complete tuple.
func (s *PipelineScorer) ScoreFeatures(ctx context.Context, f model.GameplayFeatures) (score float64, err error) {
	start := time.Now()
	defer func() {
		// Artifacts are opaque; a panic inside one is reported like any other failure.
		if rec := recover(); rec != nil {
			score, err = 0, fmt.Errorf("%w: %v", ErrArtifact, rec)
		}
		if err != nil {
			s.metrics.RecordPredictionError(ErrorKind(err))
			return
		}
		s.metrics.RecordPrediction(score, float64(time.Since(start).Microseconds())/1000)
	}()

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("score cancelled: %w", err)
	}
	if s.scaler == nil || s.predictor == nil {
		return 0, fmt.Errorf("%w: scaler or predictor not loaded", ErrArtifact)
	}

	scaled, err := s.scaler.Transform(f.Vector())
	if err != nil {
		return 0, asArtifactError("scale", err)
	}
	if len(scaled) != model.FeatureCount {
		return 0, fmt.Errorf("%w: scaler returned %d features, expected %d", ErrArtifact, len(scaled), model.FeatureCount)
	}

	raw, err := s.predictor.Predict(scaled)
	if err != nil {
		return 0, asArtifactError("predict", err)
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, fmt.Errorf("%w: predictor returned non-finite value %v", ErrArtifact, raw)
	}
	return raw, nil
}

func asArtifactError(step string, err error) error {
	if errors.Is(err, ErrArtifact) || errors.Is(err, ErrInput) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrArtifact, step, err)
}
