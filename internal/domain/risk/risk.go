// Package risk runs a scoring artifact on an aligned vector and maps its
// probability to a risk tier.
package risk

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/okian/metarisk/internal/domain/registry"
	"github.com/okian/metarisk/internal/domain/transform"
)

// Classifier is a pre-trained binary classifier. The adapter never depends on
// how it was produced or stored.
type Classifier interface {
	// Predict returns the predicted class label.
	Predict(v transform.Vector) (int, error)
	// PredictProba returns [P(class=0), P(class=1)].
	PredictProba(v transform.Vector) ([]float64, error)
}

// Loader resolves an artifact reference to a Classifier. A reference that
// does not resolve must fail with ErrArtifactNotFound.
type Loader interface {
	Load(ctx context.Context, ref string) (Classifier, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, ref string) (Classifier, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, ref string) (Classifier, error) {
	return f(ctx, ref)
}

// Result is the raw output of one classification.
type Result struct {
	PredictedClass int     `json:"predicted_class"`
	Probability    float64 `json:"probability"`
}

// Tier returns the tier of the result's probability.
func (r Result) Tier() Tier { return TierFor(r.Probability) }

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithCache enables or disables reuse of loaded artifacts across calls.
func WithCache(enabled bool) Option {
	return func(a *Adapter) {
		a.cacheEnabled = enabled
	}
}

// Adapter invokes scoring artifacts. With caching on, each model's artifact is
// loaded once and kept for the life of the process.
type Adapter struct {
	loader       Loader
	cacheEnabled bool

	mu    sync.Mutex
	cache map[string]Classifier
}

// NewAdapter creates an Adapter loading artifacts through loader. Caching is
// on by default.
func NewAdapter(loader Loader, opts ...Option) *Adapter {
	a := &Adapter{
		loader:       loader,
		cacheEnabled: true,
		cache:        make(map[string]Classifier),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Classify scores v with the artifact of spec.
func (a *Adapter) Classify(ctx context.Context, v transform.Vector, spec registry.ModelSpec) (Result, error) {
	clf, err := a.classifier(ctx, spec)
	if err != nil {
		return Result{}, err
	}
	return invoke(clf, v, spec.ID)
}

// Cached returns the number of artifacts held in the cache.
func (a *Adapter) Cached() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.cache)
}

func (a *Adapter) classifier(ctx context.Context, spec registry.ModelSpec) (Classifier, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if clf, ok := a.cache[spec.ID]; ok {
		return clf, nil
	}
	clf, err := a.loader.Load(ctx, spec.ArtifactRef)
	if err != nil {
		if errors.Is(err, ErrArtifactNotFound) || errors.Is(err, ErrArtifactError) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: load %q: %w", ErrArtifactError, spec.ArtifactRef, err)
	}
	if clf == nil {
		return nil, fmt.Errorf("%w: loader returned no classifier for %q", ErrArtifactError, spec.ArtifactRef)
	}
	if a.cacheEnabled {
		a.cache[spec.ID] = clf
	}
	return clf, nil
}

// invoke runs clf and checks its output. Panics raised by the artifact are
// reported as ErrArtifactError.
func invoke(clf Classifier, v transform.Vector, model string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, fmt.Errorf("%w: model %q panicked: %v", ErrArtifactError, model, r)
		}
	}()

	class, err := clf.Predict(v)
	if err != nil {
		return Result{}, artifactErr(model, "predict", err)
	}
	proba, err := clf.PredictProba(v)
	if err != nil {
		return Result{}, artifactErr(model, "predict_proba", err)
	}
	if len(proba) != 2 {
		return Result{}, fmt.Errorf("%w: model %q returned %d probabilities, want 2", ErrArtifactError, model, len(proba))
	}
	p := proba[1]
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Result{}, fmt.Errorf("%w: model %q returned probability %v", ErrArtifactError, model, p)
	}
	return Result{PredictedClass: class, Probability: p}, nil
}

func artifactErr(model, op string, err error) error {
	if errors.Is(err, ErrArtifactError) {
		return err
	}
	return fmt.Errorf("%w: model %q %s: %w", ErrArtifactError, model, op, err)
}
