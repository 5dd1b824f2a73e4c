// Package collect turns raw form values into a numeric input vector for one model.
package collect

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/metarisk/internal/domain/catalog"
	"github.com/okian/metarisk/internal/domain/registry"
)

// InputVector maps feature names to their numeric values for one submission.
type InputVector map[string]float64

// FieldError reports one rejected form value. Kind is ErrInvalidSelection or
// ErrInvalidNumber.
type FieldError struct {
	Feature string
	Value   string
	Kind    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s %q", e.Feature, e.Kind, e.Value)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// Collect resolves a value for every feature of spec from raw. Categorical
// features take an option label; numeric features take any finite number.
// Every rejected field is reported in the returned error, which can be
// unpacked with FieldErrors. Values for features outside spec are ignored.
func Collect(c *catalog.Catalog, spec registry.ModelSpec, raw map[string]string) (InputVector, error) {
	vec := make(InputVector, len(spec.Features))
	var errs []error
	for _, name := range spec.Features {
		if !c.Has(name) {
			return nil, fmt.Errorf("%w: model %q feature %q", registry.ErrConfiguration, spec.ID, name)
		}
		value, present := raw[name]
		if opts, ok := c.Options(name); ok {
			code, ok := opts.Decode(value)
			if !present || !ok {
				errs = append(errs, &FieldError{Feature: name, Value: value, Kind: ErrInvalidSelection})
				continue
			}
			vec[name] = code
			continue
		}
		n, err := parseNumber(value)
		if err != nil {
			errs = append(errs, &FieldError{Feature: name, Value: value, Kind: ErrInvalidNumber})
			continue
		}
		vec[name] = n
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return vec, nil
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidNumber
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, ErrInvalidNumber
	}
	return n, nil
}

// FieldErrors extracts the per-field errors carried by err.
func FieldErrors(err error) []*FieldError {
	var out []*FieldError
	var fe *FieldError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, FieldErrors(e)...)
		}
		return out
	}
	if errors.As(err, &fe) {
		out = append(out, fe)
	}
	return out
}

// Defaults returns the values a fresh form shows for spec: the catalog default
// for numeric features and the first option label for categorical ones.
// These are display values only.
func Defaults(c *catalog.Catalog, spec registry.ModelSpec) map[string]string {
	out := make(map[string]string, len(spec.Features))
	for _, name := range spec.Features {
		if opts, ok := c.Options(name); ok {
			out[name] = opts[0].Label
			continue
		}
		f, err := c.Lookup(name)
		if err != nil || f.Default == nil {
			out[name] = ""
			continue
		}
		out[name] = strconv.FormatFloat(*f.Default, 'f', -1, 64)
	}
	return out
}
