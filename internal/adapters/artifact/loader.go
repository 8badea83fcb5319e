package artifact

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/crossing/internal/domain/difficulty"
	"github.com/okian/crossing/internal/domain/model"
)

// Artifact kinds.
const (
	KindMinMax   = "minmax"
	KindStandard = "standard"
	KindLinear   = "linear"
	KindForest   = "forest"
)

type scalerDoc struct {
	Kind         string    `koanf:"kind"`
	Features     []string  `koanf:"features"`
	DataMin      []float64 `koanf:"data_min"`
	DataMax      []float64 `koanf:"data_max"`
	FeatureRange []float64 `koanf:"feature_range"`
	Mean         []float64 `koanf:"mean"`
	Scale        []float64 `koanf:"scale"`
}

type treeDoc struct {
	ChildrenLeft  []int     `koanf:"children_left"`
	ChildrenRight []int     `koanf:"children_right"`
	Feature       []int     `koanf:"feature"`
	Threshold     []float64 `koanf:"threshold"`
	Value         []float64 `koanf:"value"`
}

type modelDoc struct {
	Kind         string    `koanf:"kind"`
	Features     []string  `koanf:"features"`
	Coefficients []float64 `koanf:"coefficients"`
	Intercept    float64   `koanf:"intercept"`
	Trees        []treeDoc `koanf:"trees"`
}

// Set bundles the two artifacts the scorer needs.
type Set struct {
	Scaler    difficulty.Transformer
	Predictor difficulty.Predictor
}

// Load reads both artifacts. Either failing aborts the load.
func Load(ctx context.Context, scalerPath, modelPath string) (Set, error) {
	scaler, err := LoadScaler(ctx, scalerPath)
	if err != nil {
		return Set{}, err
	}
	predictor, err := LoadPredictor(ctx, modelPath)
	if err != nil {
		return Set{}, err
	}
	return Set{Scaler: scaler, Predictor: predictor}, nil
}

// LoadScaler reads a scaler artifact from a YAML file.
func LoadScaler(_ context.Context, path string) (difficulty.Transformer, error) {
	var doc scalerDoc
	if err := decodeFile(path, &doc); err != nil {
		return nil, err
	}
	if err := checkColumns(path, doc.Features); err != nil {
		return nil, err
	}

	switch strings.ToLower(doc.Kind) {
	case KindMinMax:
		if err := checkCount(path, "data_min", len(doc.DataMin)); err != nil {
			return nil, err
		}
		lo, hi := 0.0, 1.0
		if len(doc.FeatureRange) > 0 {
			if len(doc.FeatureRange) != 2 {
				return nil, fmt.Errorf("%w: %s: feature_range needs two values", ErrLoad, path)
			}
			lo, hi = doc.FeatureRange[0], doc.FeatureRange[1]
		}
		s, err := NewMinMaxScaler(doc.DataMin, doc.DataMax, lo, hi)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return s, nil
	case KindStandard:
		if err := checkCount(path, "mean", len(doc.Mean)); err != nil {
			return nil, err
		}
		s, err := NewStandardScaler(doc.Mean, doc.Scale)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %s: unknown scaler kind %q", ErrLoad, path, doc.Kind)
	}
}

// LoadPredictor reads a predictor artifact from a YAML file.
func LoadPredictor(_ context.Context, path string) (difficulty.Predictor, error) {
	var doc modelDoc
	if err := decodeFile(path, &doc); err != nil {
		return nil, err
	}
	if err := checkColumns(path, doc.Features); err != nil {
		return nil, err
	}

	switch strings.ToLower(doc.Kind) {
	case KindLinear:
		if err := checkCount(path, "coefficients", len(doc.Coefficients)); err != nil {
			return nil, err
		}
		m, err := NewLinearModel(doc.Coefficients, doc.Intercept)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return m, nil
	case KindForest:
		trees := make([]*Tree, 0, len(doc.Trees))
		for i, td := range doc.Trees {
			t, err := NewTree(td.ChildrenLeft, td.ChildrenRight, td.Feature, td.Threshold, td.Value, model.FeatureCount)
			if err != nil {
				return nil, fmt.Errorf("%s: tree %d: %w", path, i, err)
			}
			trees = append(trees, t)
		}
		f, err := NewForest(trees, model.FeatureCount)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: %s: unknown model kind %q", ErrLoad, path, doc.Kind)
	}
}

func decodeFile(path string, out any) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", ErrLoad)
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	if err := k.UnmarshalWithConf("", out, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	return nil
}

// checkColumns rejects artifacts fit on a different column order. Artifacts
// without a features list are trusted to use the standard order.
func checkColumns(path string, features []string) error {
	if len(features) == 0 {
		return nil
	}
	if !slices.Equal(features, model.FeatureNames()) {
		return fmt.Errorf("%w: %s: fit on columns %v, expected %v", ErrLoad, path, features, model.FeatureNames())
	}
	return nil
}

func checkCount(path, field string, n int) error {
	if n != model.FeatureCount {
		return fmt.Errorf("%w: %s: %s has %d values, expected %d", ErrLoad, path, field, n, model.FeatureCount)
	}
	return nil
}
