// Package catalog defines the registry of clinical features a model can ask for.
package catalog

import (
	"fmt"
	"sort"
)

// Category groups features for display only.
type Category string

// Known display categories.
const (
	CategoryDemographics    Category = "demographics_lifestyle"
	CategoryPhysicalExam    Category = "physical_exam"
	CategoryBodyComposition Category = "body_composition"
	CategoryLaboratory      Category = "laboratory"
)

// CategoryOrder fixes the traversal order of categories. Categories not listed
// here sort after every listed one.
var CategoryOrder = []Category{ //nolint:gochecknoglobals // static display policy
	CategoryDemographics,
	CategoryPhysicalExam,
	CategoryBodyComposition,
	CategoryLaboratory,
}

var categoryTitles = map[Category]string{ //nolint:gochecknoglobals // static display copy
	CategoryDemographics:    "Demographics and lifestyle",
	CategoryPhysicalExam:    "Physical examination",
	CategoryBodyComposition: "Body composition",
	CategoryLaboratory:      "Laboratory tests",
}

// Title returns the human readable heading of a category.
func (c Category) Title() string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return string(c)
}

// priority returns the position of c in CategoryOrder, or len(CategoryOrder)
// when c is not listed.
func (c Category) priority() int {
	for i, known := range CategoryOrder {
		if known == c {
			return i
		}
	}
	return len(CategoryOrder)
}

// FeatureSpec describes one clinical input.
type FeatureSpec struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
	Unit     string   `json:"unit,omitempty"`
	// Default is the value shown when a form is first rendered. Nil for
	// categorical features.
	Default *float64 `json:"default,omitempty"`
}

// DisplayLabel renders the label with its unit, e.g. "Age (years)".
func (f FeatureSpec) DisplayLabel() string {
	if f.Unit == "" {
		return f.Label
	}
	return fmt.Sprintf("%s (%s)", f.Label, f.Unit)
}

// Option maps a human readable choice to the code the models were trained on.
type Option struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Options is an ordered set of choices for one categorical feature.
type Options []Option

// Decode returns the encoded value for label.
func (o Options) Decode(label string) (float64, bool) {
	for _, opt := range o {
		if opt.Label == label {
			return opt.Value, true
		}
	}
	return 0, false
}

// Labels returns the option labels in display order.
func (o Options) Labels() []string {
	out := make([]string, len(o))
	for i, opt := range o {
		out[i] = opt.Label
	}
	return out
}

// Group is a run of features sharing a category.
type Group struct {
	Category Category      `json:"category"`
	Title    string        `json:"title"`
	Features []FeatureSpec `json:"features"`
}

// Catalog is an immutable lookup of features and their categorical options.
type Catalog struct {
	order    []string
	features map[string]FeatureSpec
	options  map[string]Options
}

// New builds a Catalog. Feature names must be unique and every option table
// must belong to a known feature.
func New(features []FeatureSpec, options map[string]Options) (*Catalog, error) {
	c := &Catalog{
		order:    make([]string, 0, len(features)),
		features: make(map[string]FeatureSpec, len(features)),
		options:  make(map[string]Options, len(options)),
	}
	for _, f := range features {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: feature with empty name", ErrInvalidCatalog)
		}
		if _, dup := c.features[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate feature %q", ErrInvalidCatalog, f.Name)
		}
		c.order = append(c.order, f.Name)
		c.features[f.Name] = f
	}
	for name, opts := range options {
		if _, ok := c.features[name]; !ok {
			return nil, fmt.Errorf("%w: options for unknown feature %q", ErrInvalidCatalog, name)
		}
		if err := checkOptions(name, opts); err != nil {
			return nil, err
		}
		c.options[name] = append(Options(nil), opts...)
	}
	return c, nil
}

// checkOptions enforces one label per code and one code per label.
func checkOptions(name string, opts Options) error {
	if len(opts) == 0 {
		return fmt.Errorf("%w: feature %q has an empty option set", ErrInvalidCatalog, name)
	}
	labels := make(map[string]struct{}, len(opts))
	values := make(map[float64]struct{}, len(opts))
	for _, o := range opts {
		if _, dup := labels[o.Label]; dup {
			return fmt.Errorf("%w: feature %q repeats option label %q", ErrInvalidCatalog, name, o.Label)
		}
		if _, dup := values[o.Value]; dup {
			return fmt.Errorf("%w: feature %q repeats option value %v", ErrInvalidCatalog, name, o.Value)
		}
		labels[o.Label] = struct{}{}
		values[o.Value] = struct{}{}
	}
	return nil
}

// Lookup returns the spec of a feature.
func (c *Catalog) Lookup(name string) (FeatureSpec, error) {
	f, ok := c.features[name]
	if !ok {
		return FeatureSpec{}, fmt.Errorf("%w: %q", ErrFeatureNotFound, name)
	}
	return f, nil
}

// Has reports whether name is a known feature.
func (c *Catalog) Has(name string) bool {
	_, ok := c.features[name]
	return ok
}

// Options returns the categorical choices of a feature, if it has any.
func (c *Catalog) Options(name string) (Options, bool) {
	o, ok := c.options[name]
	return o, ok
}

// Names returns every feature name in definition order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Group arranges names by category. Categories follow CategoryOrder, with
// unlisted ones last and ordered by name; features keep the order of names.
// Unknown names are skipped.
func (c *Catalog) Group(names []string) []Group {
	index := make(map[Category]int)
	var groups []Group
	for _, name := range names {
		f, ok := c.features[name]
		if !ok {
			continue
		}
		i, seen := index[f.Category]
		if !seen {
			i = len(groups)
			index[f.Category] = i
			groups = append(groups, Group{Category: f.Category, Title: f.Category.Title()})
		}
		groups[i].Features = append(groups[i].Features, f)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		pa, pb := groups[a].Category.priority(), groups[b].Category.priority()
		if pa != pb {
			return pa < pb
		}
		return groups[a].Category < groups[b].Category
	})
	return groups
}
