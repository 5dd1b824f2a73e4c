// Package registry maps model identifiers to the features and scoring
// artifacts each model needs.
package registry

import (
	"fmt"
	"strings"

	"github.com/okian/metarisk/internal/domain/catalog"
)

// ModelSpec describes one pre-trained model.
type ModelSpec struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Features lists the inputs in the column order the artifact was trained
	// with, before any renaming.
	Features []string `json:"features"`
	// ArtifactRef names the scoring artifact, resolved by the artifact store.
	ArtifactRef string `json:"artifact_ref"`
}

// Registry is an ordered, immutable set of models.
type Registry struct {
	order  []string
	models map[string]ModelSpec
}

// New builds a Registry preserving the order of specs.
func New(specs ...ModelSpec) (*Registry, error) {
	r := &Registry{models: make(map[string]ModelSpec, len(specs))}
	for _, s := range specs {
		switch {
		case s.ID == "":
			return nil, fmt.Errorf("%w: model with empty id", ErrConfiguration)
		case s.ArtifactRef == "":
			return nil, fmt.Errorf("%w: model %q has no artifact", ErrConfiguration, s.ID)
		case len(s.Features) == 0:
			return nil, fmt.Errorf("%w: model %q has no features", ErrConfiguration, s.ID)
		}
		if _, dup := r.models[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate model %q", ErrConfiguration, s.ID)
		}
		seen := make(map[string]struct{}, len(s.Features))
		for _, f := range s.Features {
			if _, dup := seen[f]; dup {
				return nil, fmt.Errorf("%w: model %q lists feature %q twice", ErrConfiguration, s.ID, f)
			}
			seen[f] = struct{}{}
		}
		s.Features = append([]string(nil), s.Features...)
		r.order = append(r.order, s.ID)
		r.models[s.ID] = s
	}
	return r, nil
}

// List returns model identifiers in presentation order.
func (r *Registry) List() []string {
	return append([]string(nil), r.order...)
}

// Specs returns every model in presentation order.
func (r *Registry) Specs() []ModelSpec {
	out := make([]ModelSpec, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.models[id].clone())
	}
	return out
}

// Resolve returns the spec of a model.
func (r *Registry) Resolve(id string) (ModelSpec, error) {
	s, ok := r.models[id]
	if !ok {
		return ModelSpec{}, fmt.Errorf("%w: %q", ErrModelNotFound, id)
	}
	return s.clone(), nil
}

// Validate checks that every feature of every model exists in c. All
// unresolved names are reported together.
func (r *Registry) Validate(c *catalog.Catalog) error {
	var missing []string
	for _, id := range r.order {
		for _, f := range r.models[id].Features {
			if !c.Has(f) {
				missing = append(missing, id+"."+f)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: features not in catalog: %s", ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

func (s ModelSpec) clone() ModelSpec {
	s.Features = append([]string(nil), s.Features...)
	return s
}
