package risk_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/metarisk/internal/domain/registry"
	"github.com/okian/metarisk/internal/domain/risk"
	"github.com/okian/metarisk/internal/domain/transform"
	. "github.com/smartystreets/goconvey/convey"
)

type stubClassifier struct {
	class   int
	proba   []float64
	err     error
	panics  bool
	predict int
}

func (s *stubClassifier) Predict(transform.Vector) (int, error) {
	s.predict++
	if s.panics {
		panic("shape mismatch")
	}
	return s.class, s.err
}

func (s *stubClassifier) PredictProba(transform.Vector) ([]float64, error) {
	return s.proba, s.err
}

func TestTierFor(t *testing.T) {
	Convey("Given the tier thresholds", t, func() {
		cases := []struct {
			p    float64
			want risk.Tier
		}{
			{0, risk.TierLow},
			{0.2999, risk.TierLow},
			{0.30, risk.TierModerate},
			{0.45, risk.TierModerate},
			{0.5999, risk.TierModerate},
			{0.60, risk.TierHigh},
			{0.999, risk.TierHigh},
			{1, risk.TierHigh},
		}

		Convey("Then each probability should land in its half-open interval", func() {
			for _, tc := range cases {
				So(risk.TierFor(tc.p), ShouldEqual, tc.want)
			}
		})

		Convey("And every tier should carry advice", func() {
			for _, tier := range []risk.Tier{risk.TierLow, risk.TierModerate, risk.TierHigh} {
				So(tier.Advice(), ShouldNotBeEmpty)
			}
			So(risk.Tier("UNKNOWN").Advice(), ShouldBeEmpty)
		})
	})
}

func TestAdapter_Classify(t *testing.T) {
	Convey("Given an adapter with a counting loader", t, func() {
		ctx := context.Background()
		spec, _ := registry.Default().Resolve(registry.ModelBaseline)
		vec := transform.Vector{Columns: []string{"a"}, Values: []float64{1}}
		clf := &stubClassifier{class: 0, proba: []float64{0.55, 0.45}}
		loads := 0
		loader := risk.LoaderFunc(func(_ context.Context, ref string) (risk.Classifier, error) {
			loads++
			if ref != spec.ArtifactRef {
				return nil, risk.ErrArtifactNotFound
			}
			return clf, nil
		})

		Convey("When classifying with the cache enabled", func() {
			adapter := risk.NewAdapter(loader)
			first, err := adapter.Classify(ctx, vec, spec)
			So(err, ShouldBeNil)
			_, err = adapter.Classify(ctx, vec, spec)
			So(err, ShouldBeNil)

			Convey("Then the positive-class probability and tier should be returned", func() {
				So(first.Probability, ShouldEqual, 0.45)
				So(first.PredictedClass, ShouldEqual, 0)
				So(first.Tier(), ShouldEqual, risk.TierModerate)
			})

			Convey("And the artifact should be loaded once", func() {
				So(loads, ShouldEqual, 1)
				So(adapter.Cached(), ShouldEqual, 1)
			})
		})

		Convey("When classifying with the cache disabled", func() {
			adapter := risk.NewAdapter(loader, risk.WithCache(false))
			_, _ = adapter.Classify(ctx, vec, spec)
			_, _ = adapter.Classify(ctx, vec, spec)

			Convey("Then the artifact should be loaded on every call", func() {
				So(loads, ShouldEqual, 2)
				So(adapter.Cached(), ShouldEqual, 0)
			})
		})

		Convey("When the artifact reference does not resolve", func() {
			adapter := risk.NewAdapter(loader)
			other := spec
			other.ArtifactRef = "missing.yaml"
			_, err := adapter.Classify(ctx, vec, other)

			Convey("Then it should fail with ErrArtifactNotFound", func() {
				So(errors.Is(err, risk.ErrArtifactNotFound), ShouldBeTrue)
			})

			Convey("And the adapter should still serve other models", func() {
				res, err := adapter.Classify(ctx, vec, spec)
				So(err, ShouldBeNil)
				So(res.Probability, ShouldEqual, 0.45)
			})
		})

		Convey("When the loader fails for another reason", func() {
			adapter := risk.NewAdapter(risk.LoaderFunc(func(context.Context, string) (risk.Classifier, error) {
				return nil, errors.New("permission denied")
			}))
			_, err := adapter.Classify(ctx, vec, spec)

			Convey("Then it should be reported as ErrArtifactError", func() {
				So(errors.Is(err, risk.ErrArtifactError), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "permission denied")
			})
		})

		Convey("When the artifact panics", func() {
			clf.panics = true
			_, err := risk.NewAdapter(loader).Classify(ctx, vec, spec)

			Convey("Then the panic should become ErrArtifactError", func() {
				So(errors.Is(err, risk.ErrArtifactError), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "shape mismatch")
			})
		})

		Convey("When the artifact returns an error", func() {
			clf.err = errors.New("feature names mismatch")
			_, err := risk.NewAdapter(loader).Classify(ctx, vec, spec)

			Convey("Then it should be wrapped as ErrArtifactError", func() {
				So(errors.Is(err, risk.ErrArtifactError), ShouldBeTrue)
			})
		})

		Convey("When the artifact returns a malformed probability pair", func() {
			clf.proba = []float64{0.2, 0.3, 0.5}
			_, errLen := risk.NewAdapter(loader).Classify(ctx, vec, spec)
			clf.proba = []float64{-0.5, 1.5}
			_, errRange := risk.NewAdapter(loader).Classify(ctx, vec, spec)

			Convey("Then both should be ErrArtifactError", func() {
				So(errors.Is(errLen, risk.ErrArtifactError), ShouldBeTrue)
				So(errors.Is(errRange, risk.ErrArtifactError), ShouldBeTrue)
			})
		})
	})
}
