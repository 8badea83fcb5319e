// Package artifact loads the pre-fit scaling transform and the pre-trained
// predictor consumed by the difficulty scorer.
package artifact

import (
	"fmt"
)

// MinMaxScaler maps each column from [DataMin, DataMax] onto [lo, hi].
type MinMaxScaler struct {
	scale []float64
	min   []float64
}

// NewMinMaxScaler precomputes the per-column affine transform.
// Zero-width ranges scale by 1 so constant columns pass through shifted.
func NewMinMaxScaler(dataMin, dataMax []float64, lo, hi float64) (*MinMaxScaler, error) {
	if len(dataMin) == 0 || len(dataMin) != len(dataMax) {
		return nil, fmt.Errorf("%w: data_min has %d values, data_max has %d", ErrLoad, len(dataMin), len(dataMax))
	}
	if hi <= lo {
		return nil, fmt.Errorf("%w: feature_range [%v, %v] is empty", ErrLoad, lo, hi)
	}

	s := &MinMaxScaler{
		scale: make([]float64, len(dataMin)),
		min:   make([]float64, len(dataMin)),
	}
	for i := range dataMin {
		span := dataMax[i] - dataMin[i]
		if span == 0 {
			span = 1
		}
		s.scale[i] = (hi - lo) / span
		s.min[i] = lo - dataMin[i]*s.scale[i]
	}
	return s, nil
}

// Transform returns x*scale + min per column.
func (s *MinMaxScaler) Transform(features []float64) ([]float64, error) {
	if err := checkArity("MinMaxScaler", len(features), len(s.scale)); err != nil {
		return nil, err
	}
	out := make([]float64, len(features))
	for i, x := range features {
		out[i] = x*s.scale[i] + s.min[i]
	}
	return out, nil
}

// StandardScaler centers by Mean and divides by Scale.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// NewStandardScaler validates the column statistics. Zero scales are treated as 1.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 || len(mean) != len(scale) {
		return nil, fmt.Errorf("%w: mean has %d values, scale has %d", ErrLoad, len(mean), len(scale))
	}
	s := &StandardScaler{
		mean:  append([]float64(nil), mean...),
		scale: make([]float64, len(scale)),
	}
	for i, v := range scale {
		if v == 0 {
			v = 1
		}
		s.scale[i] = v
	}
	return s, nil
}

// Transform returns (x - mean) / scale per column.
func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if err := checkArity("StandardScaler", len(features), len(s.mean)); err != nil {
		return nil, err
	}
	out := make([]float64, len(features))
	for i, x := range features {
		out[i] = (x - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

func checkArity(name string, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: X has %d features, but %s is expecting %d features as input", ErrShape, got, name, want)
	}
	return nil
}
