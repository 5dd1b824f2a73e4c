package artifact

import (
	"fmt"
	"math"

	"github.com/okian/metarisk/internal/domain/risk"
)

// Artifact kinds.
const (
	KindLogistic         = "logistic"
	KindLinearSVM        = "linear_svm"
	KindGradientBoosting = "gradient_boosting"
)

// document is the on-disk form of a scoring artifact.
type document struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
	// Features is the training-time column order.
	Features []string `yaml:"features"`
	// Classes labels the negative and positive class. Defaults to [0, 1].
	Classes []int `yaml:"classes"`

	// logistic and linear_svm
	Intercept    float64   `yaml:"intercept"`
	Coefficients []float64 `yaml:"coefficients"`
	// Platt holds the sigmoid calibration of a linear_svm decision value:
	// P(1) = 1 / (1 + exp(a*f + b)).
	Platt *platt `yaml:"platt"`

	// gradient_boosting
	BaseMargin float64 `yaml:"base_margin"`
	Trees      []tree  `yaml:"trees"`
}

type platt struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
}

type tree struct {
	Nodes []node `yaml:"nodes"`
}

// node is a split when Leaf is nil: rows with Feature < Threshold go to Left,
// the rest to Right. Left and Right index into the tree's Nodes.
type node struct {
	Feature   string   `yaml:"feature"`
	Threshold float64  `yaml:"threshold"`
	Left      int      `yaml:"left"`
	Right     int      `yaml:"right"`
	Leaf      *float64 `yaml:"leaf"`
}

// build validates d and returns the classifier it describes.
func (d *document) build(ref string) (risk.Classifier, error) {
	if len(d.Features) == 0 {
		return nil, invalid(ref, "no features declared")
	}
	index := make(map[string]int, len(d.Features))
	for i, f := range d.Features {
		if _, dup := index[f]; dup {
			return nil, invalid(ref, fmt.Sprintf("feature %q declared twice", f))
		}
		index[f] = i
	}
	classes := d.Classes
	if len(classes) == 0 {
		classes = []int{0, 1}
	}
	if len(classes) != 2 {
		return nil, invalid(ref, fmt.Sprintf("%d classes declared, want 2", len(classes)))
	}
	sch := schema{name: ref, features: append([]string(nil), d.Features...), classes: [2]int{classes[0], classes[1]}}

	switch d.Kind {
	case KindLogistic, KindLinearSVM:
		if len(d.Coefficients) != len(d.Features) {
			return nil, invalid(ref, fmt.Sprintf("%d coefficients for %d features", len(d.Coefficients), len(d.Features)))
		}
		if !finite(d.Intercept) || !allFinite(d.Coefficients) {
			return nil, invalid(ref, "non-finite weights")
		}
		lin := &linear{schema: sch, intercept: d.Intercept, coef: append([]float64(nil), d.Coefficients...)}
		if d.Kind == KindLogistic {
			return &logistic{linear: lin}, nil
		}
		if d.Platt == nil {
			return nil, invalid(ref, "linear_svm requires platt calibration")
		}
		if !finite(d.Platt.A) || !finite(d.Platt.B) {
			return nil, invalid(ref, "non-finite platt calibration")
		}
		return &svm{linear: lin, a: d.Platt.A, b: d.Platt.B}, nil

	case KindGradientBoosting:
		if len(d.Trees) == 0 {
			return nil, invalid(ref, "no trees")
		}
		if !finite(d.BaseMargin) {
			return nil, invalid(ref, "non-finite base_margin")
		}
		trees := make([][]compiledNode, len(d.Trees))
		for i, t := range d.Trees {
			compiled, err := compileTree(t, index)
			if err != nil {
				return nil, invalid(ref, fmt.Sprintf("tree %d: %v", i, err))
			}
			trees[i] = compiled
		}
		return &ensemble{schema: sch, baseMargin: d.BaseMargin, trees: trees}, nil

	default:
		return nil, invalid(ref, fmt.Sprintf("unknown kind %q", d.Kind))
	}
}

func compileTree(t tree, index map[string]int) ([]compiledNode, error) {
	if len(t.Nodes) == 0 {
		return nil, fmt.Errorf("empty tree")
	}
	out := make([]compiledNode, len(t.Nodes))
	for i, n := range t.Nodes {
		if n.Leaf != nil {
			if !finite(*n.Leaf) {
				return nil, fmt.Errorf("node %d has a non-finite leaf", i)
			}
			out[i] = compiledNode{leaf: true, value: *n.Leaf}
			continue
		}
		col, ok := index[n.Feature]
		if !ok {
			return nil, fmt.Errorf("node %d splits on undeclared feature %q", i, n.Feature)
		}
		if !finite(n.Threshold) {
			return nil, fmt.Errorf("node %d has a non-finite threshold", i)
		}
		// Children must point forward so evaluation always terminates.
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return nil, fmt.Errorf("node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
		out[i] = compiledNode{column: col, threshold: n.Threshold, left: n.Left, right: n.Right}
	}
	return out, nil
}

func invalid(ref, reason string) error {
	return fmt.Errorf("%w: %s: %s", risk.ErrArtifactError, ref, reason)
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func allFinite(fs []float64) bool {
	for _, f := range fs {
		if !finite(f) {
			return false
		}
	}
	return true
}
