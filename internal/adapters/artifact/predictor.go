package artifact

import (
	"fmt"
)

// LinearModel predicts intercept + coefficients . x.
type LinearModel struct {
	coefficients []float64
	intercept    float64
}

// NewLinearModel copies the fitted parameters.
func NewLinearModel(coefficients []float64, intercept float64) (*LinearModel, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("%w: linear model has no coefficients", ErrLoad)
	}
	return &LinearModel{
		coefficients: append([]float64(nil), coefficients...),
		intercept:    intercept,
	}, nil
}

// Predict returns the linear response.
func (m *LinearModel) Predict(features []float64) (float64, error) {
	if err := checkArity("LinearModel", len(features), len(m.coefficients)); err != nil {
		return 0, err
	}
	y := m.intercept
	for i, x := range features {
		y += m.coefficients[i] * x
	}
	return y, nil
}

// Tree is one regression tree in flat array form: node i is a leaf when
// childrenLeft[i] is -1, otherwise x[feature[i]] <= threshold[i] goes left.
type Tree struct {
	childrenLeft  []int
	childrenRight []int
	feature       []int
	threshold     []float64
	value         []float64
}

const leafNode = -1

// NewTree validates a flat tree. Children must come after their parent, which
// rules out cycles.
func NewTree(left, right, feature []int, threshold, value []float64, nFeatures int) (*Tree, error) {
	n := len(left)
	if n == 0 || len(right) != n || len(feature) != n || len(threshold) != n || len(value) != n {
		return nil, fmt.Errorf("%w: tree arrays must be non-empty and equally long", ErrLoad)
	}
	for i := 0; i < n; i++ {
		if left[i] == leafNode {
			if right[i] != leafNode {
				return nil, fmt.Errorf("%w: node %d has only one child", ErrLoad, i)
			}
			continue
		}
		if left[i] <= i || right[i] <= i || left[i] >= n || right[i] >= n {
			return nil, fmt.Errorf("%w: node %d has invalid children", ErrLoad, i)
		}
		if feature[i] < 0 || feature[i] >= nFeatures {
			return nil, fmt.Errorf("%w: node %d splits on feature %d of %d", ErrLoad, i, feature[i], nFeatures)
		}
	}
	return &Tree{
		childrenLeft:  left,
		childrenRight: right,
		feature:       feature,
		threshold:     threshold,
		value:         value,
	}, nil
}

func (t *Tree) predict(features []float64) float64 {
	node := 0
	for t.childrenLeft[node] != leafNode {
		if features[t.feature[node]] <= t.threshold[node] {
			node = t.childrenLeft[node]
		} else {
			node = t.childrenRight[node]
		}
	}
	return t.value[node]
}

// Forest averages the predictions of its trees.
type Forest struct {
	trees     []*Tree
	nFeatures int
}

// NewForest builds a forest over trees fit on nFeatures columns.
func NewForest(trees []*Tree, nFeatures int) (*Forest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", ErrLoad)
	}
	return &Forest{trees: trees, nFeatures: nFeatures}, nil
}

// Predict returns the mean tree output.
func (f *Forest) Predict(features []float64) (float64, error) {
	if err := checkArity("Forest", len(features), f.nFeatures); err != nil {
		return 0, err
	}
	sum := 0.0
	for _, t := range f.trees {
		sum += t.predict(features)
	}
	return sum / float64(len(f.trees)), nil
}
