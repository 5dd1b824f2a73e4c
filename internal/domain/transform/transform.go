// Package transform aligns a collected input vector with the schema a scoring
// artifact was trained on.
package transform

import (
	"fmt"

	"github.com/okian/metarisk/internal/domain/catalog"
	"github.com/okian/metarisk/internal/domain/collect"
	"github.com/okian/metarisk/internal/domain/registry"
)

// Rescale multiplies named features before inference. Only the listed
// features are touched; similarly named ratios are left as entered.
var Rescale = map[string]float64{ //nolint:gochecknoglobals // fixed artifact contract
	catalog.TBWFFMRatio: 100,
}

// Rename maps form-facing feature names to the column names the artifacts
// were trained with.
var Rename = map[string]string{ //nolint:gochecknoglobals // fixed artifact contract
	catalog.TrunkFatRatio:     "trunk_fat_percentage",
	catalog.LowerLimbFatRatio: "lower_limb_fat_percentage",
}

// Vector is an input vector in artifact column order. Values[i] is the value
// of Columns[i].
type Vector struct {
	Columns []string  `json:"columns"`
	Values  []float64 `json:"values"`
}

// Len returns the number of columns.
func (v Vector) Len() int { return len(v.Columns) }

// Get returns the value of a column.
func (v Vector) Get(column string) (float64, bool) {
	for i, c := range v.Columns {
		if c == column {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Transformer turns one submission's inputs into an artifact vector.
type Transformer interface {
	Transform(in collect.InputVector, spec registry.ModelSpec) (Vector, error)
}

// Func adapts a function to Transformer.
type Func func(in collect.InputVector, spec registry.ModelSpec) (Vector, error)

// Transform calls f.
func (f Func) Transform(in collect.InputVector, spec registry.ModelSpec) (Vector, error) {
	return f(in, spec)
}

// Default is the Transformer backed by Transform.
var Default Transformer = Func(Transform) //nolint:gochecknoglobals // stateless

// ColumnName returns the artifact column for a feature.
func ColumnName(feature string) string {
	if renamed, ok := Rename[feature]; ok {
		return renamed
	}
	return feature
}

// ExpectedColumns returns the column order the artifact of spec expects.
func ExpectedColumns(spec registry.ModelSpec) []string {
	cols := make([]string, len(spec.Features))
	for i, f := range spec.Features {
		cols[i] = ColumnName(f)
	}
	return cols
}

// Transform copies in, applies Rescale and Rename, and reindexes the result to
// ExpectedColumns(spec). A feature of spec absent from in fails with
// ErrMissingFeature; no default is substituted. It must run once per
// submission: applying it to its own output rescales twice.
func Transform(in collect.InputVector, spec registry.ModelSpec) (Vector, error) {
	work := make(map[string]float64, len(in))
	for k, v := range in {
		work[k] = v
	}

	for name, factor := range Rescale {
		if v, ok := work[name]; ok {
			work[name] = v * factor
		}
	}

	renamed := make(map[string]float64, len(work))
	for k, v := range work {
		renamed[ColumnName(k)] = v
	}

	cols := ExpectedColumns(spec)
	out := Vector{Columns: cols, Values: make([]float64, len(cols))}
	for i, col := range cols {
		v, ok := renamed[col]
		if !ok {
			return Vector{}, fmt.Errorf("%w: %q (model %q)", ErrMissingFeature, spec.Features[i], spec.ID)
		}
		out.Values[i] = v
	}
	return out, nil
}
