package artifact

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/metarisk/internal/domain/risk"
	"github.com/okian/metarisk/internal/domain/transform"
)

// schema is the column contract shared by every artifact kind.
type schema struct {
	name     string
	features []string
	classes  [2]int
}

// check rejects vectors whose columns differ from the trained schema in name
// or order.
func (s schema) check(v transform.Vector) error {
	if len(v.Columns) != len(v.Values) {
		return fmt.Errorf("%w: %s: %d columns but %d values", risk.ErrArtifactError, s.name, len(v.Columns), len(v.Values))
	}
	if len(v.Columns) != len(s.features) {
		return fmt.Errorf("%w: %s: expected %d features, got %d", risk.ErrArtifactError, s.name, len(s.features), len(v.Columns))
	}
	for i, c := range v.Columns {
		if c != s.features[i] {
			return fmt.Errorf("%w: %s: feature names must match those seen at fit time, in the same order: got [%s], want [%s]",
				risk.ErrArtifactError, s.name, strings.Join(v.Columns, ", "), strings.Join(s.features, ", "))
		}
	}
	return nil
}

func (s schema) class(positive bool) int {
	if positive {
		return s.classes[1]
	}
	return s.classes[0]
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

type linear struct {
	schema
	intercept float64
	coef      []float64
}

func (l *linear) decision(v transform.Vector) (float64, error) {
	if err := l.check(v); err != nil {
		return 0, err
	}
	d := l.intercept
	for i, x := range v.Values {
		d += l.coef[i] * x
	}
	return d, nil
}

// logistic is a (possibly L1-regularized) logistic regression.
type logistic struct {
	*linear
}

func (m *logistic) Predict(v transform.Vector) (int, error) {
	d, err := m.decision(v)
	if err != nil {
		return 0, err
	}
	return m.class(d > 0), nil
}

func (m *logistic) PredictProba(v transform.Vector) ([]float64, error) {
	d, err := m.decision(v)
	if err != nil {
		return nil, err
	}
	p := sigmoid(d)
	return []float64{1 - p, p}, nil
}

// svm is a linear support vector classifier with Platt-scaled probabilities.
// As with libsvm, Predict follows the decision value and can disagree with
// PredictProba near the boundary.
type svm struct {
	*linear
	a, b float64
}

func (m *svm) Predict(v transform.Vector) (int, error) {
	d, err := m.decision(v)
	if err != nil {
		return 0, err
	}
	return m.class(d > 0), nil
}

func (m *svm) PredictProba(v transform.Vector) ([]float64, error) {
	d, err := m.decision(v)
	if err != nil {
		return nil, err
	}
	p := 1 / (1 + math.Exp(m.a*d+m.b))
	return []float64{1 - p, p}, nil
}

type compiledNode struct {
	leaf        bool
	value       float64
	column      int
	threshold   float64
	left, right int
}

// ensemble is a gradient boosted tree ensemble with a logistic link.
type ensemble struct {
	schema
	baseMargin float64
	trees      [][]compiledNode
}

func (m *ensemble) margin(v transform.Vector) (float64, error) {
	if err := m.check(v); err != nil {
		return 0, err
	}
	sum := m.baseMargin
	for _, nodes := range m.trees {
		i := 0
		for !nodes[i].leaf {
			n := nodes[i]
			if v.Values[n.column] < n.threshold {
				i = n.left
			} else {
				i = n.right
			}
		}
		sum += nodes[i].value
	}
	return sum, nil
}

func (m *ensemble) Predict(v transform.Vector) (int, error) {
	s, err := m.margin(v)
	if err != nil {
		return 0, err
	}
	return m.class(s > 0), nil
}

func (m *ensemble) PredictProba(v transform.Vector) ([]float64, error) {
	s, err := m.margin(v)
	if err != nil {
		return nil, err
	}
	p := sigmoid(s)
	return []float64{1 - p, p}, nil
}
