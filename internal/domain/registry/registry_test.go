package registry_test

import (
	"errors"
	"testing"

	"github.com/okian/metarisk/internal/domain/catalog"
	"github.com/okian/metarisk/internal/domain/registry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultRegistry(t *testing.T) {
	Convey("Given the default registry", t, func() {
		r := registry.Default()

		Convey("Then models should be listed in presentation order", func() {
			So(r.List(), ShouldResemble, []string{
				registry.ModelFull,
				registry.ModelBodyComposition,
				registry.ModelClinical,
				registry.ModelBaseline,
			})
		})

		Convey("Then every feature of every model should resolve in the catalog", func() {
			So(r.Validate(catalog.Default()), ShouldBeNil)
			for _, spec := range r.Specs() {
				for _, name := range spec.Features {
					_, err := catalog.Default().Lookup(name)
					So(err, ShouldBeNil)
				}
			}
		})

		Convey("When resolving the baseline model", func() {
			spec, err := r.Resolve(registry.ModelBaseline)

			Convey("Then it should return its ordered features and artifact", func() {
				So(err, ShouldBeNil)
				So(spec.ArtifactRef, ShouldEqual, "lr_model.yaml")
				So(spec.Features, ShouldResemble, []string{
					"sex", "age", "exercise_frequency", "smoking_history",
					"drinking_history", "bmi", "waist_hip_ratio",
				})
			})

			Convey("And mutating the returned spec should not leak into the registry", func() {
				spec.Features[0] = "tampered"
				again, _ := r.Resolve(registry.ModelBaseline)
				So(again.Features[0], ShouldEqual, "sex")
			})
		})

		Convey("When resolving an unknown model", func() {
			_, err := r.Resolve("model_z")

			Convey("Then it should report ErrModelNotFound", func() {
				So(errors.Is(err, registry.ErrModelNotFound), ShouldBeTrue)
			})
		})

		Convey("Then feature counts should match the trained models", func() {
			counts := map[string]int{}
			for _, spec := range r.Specs() {
				counts[spec.ID] = len(spec.Features)
			}
			So(counts, ShouldResemble, map[string]int{
				registry.ModelFull:            16,
				registry.ModelBodyComposition: 14,
				registry.ModelClinical:        22,
				registry.ModelBaseline:        7,
			})
		})
	})
}

func TestRegistry_Validate(t *testing.T) {
	Convey("Given a registry referencing a feature the catalog lacks", t, func() {
		r, err := registry.New(registry.ModelSpec{
			ID:          "m",
			Features:    []string{catalog.Age, "heart_rate"},
			ArtifactRef: "m.yaml",
		})
		So(err, ShouldBeNil)

		Convey("When validating against the default catalog", func() {
			err := r.Validate(catalog.Default())

			Convey("Then it should fail with a configuration error naming the feature", func() {
				So(errors.Is(err, registry.ErrConfiguration), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "m.heart_rate")
			})
		})
	})
}

func TestRegistry_New(t *testing.T) {
	Convey("Given malformed model specs", t, func() {
		cases := []struct {
			name  string
			specs []registry.ModelSpec
		}{
			{"empty id", []registry.ModelSpec{{Features: []string{"a"}, ArtifactRef: "a"}}},
			{"missing artifact", []registry.ModelSpec{{ID: "a", Features: []string{"a"}}}},
			{"no features", []registry.ModelSpec{{ID: "a", ArtifactRef: "a"}}},
			{"duplicate id", []registry.ModelSpec{
				{ID: "a", Features: []string{"a"}, ArtifactRef: "a"},
				{ID: "a", Features: []string{"a"}, ArtifactRef: "a"},
			}},
			{"duplicate feature", []registry.ModelSpec{{ID: "a", Features: []string{"a", "a"}, ArtifactRef: "a"}}},
		}

		for _, tc := range cases {
			_, err := registry.New(tc.specs...)
			Convey("Then "+tc.name+" should be a configuration error", func() {
				So(errors.Is(err, registry.ErrConfiguration), ShouldBeTrue)
			})
		}
	})
}
