package catalog_test

import (
	"errors"
	"testing"

	"github.com/okian/metarisk/internal/domain/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultCatalog(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		c := catalog.Default()

		Convey("Then it should hold every clinical feature", func() {
			So(len(c.Names()), ShouldEqual, 36)
		})

		Convey("When looking up a numeric feature", func() {
			f, err := c.Lookup(catalog.BMI)

			Convey("Then it should return its unit and default", func() {
				So(err, ShouldBeNil)
				So(f.Category, ShouldEqual, catalog.CategoryPhysicalExam)
				So(f.Unit, ShouldEqual, "kg/m²")
				So(f.Default, ShouldNotBeNil)
				So(*f.Default, ShouldEqual, 24.0)
				So(f.DisplayLabel(), ShouldEqual, "Body mass index (kg/m²)")
			})
		})

		Convey("When looking up a categorical feature", func() {
			f, err := c.Lookup(catalog.Sex)
			opts, ok := c.Options(catalog.Sex)

			Convey("Then it should have no default and a decodable option set", func() {
				So(err, ShouldBeNil)
				So(f.Default, ShouldBeNil)
				So(f.DisplayLabel(), ShouldEqual, "Sex")
				So(ok, ShouldBeTrue)
				So(opts.Labels(), ShouldResemble, []string{"1 (male)", "0 (female)"})
			})
		})

		Convey("When decoding the label of the first sex option", func() {
			opts, _ := c.Options(catalog.Sex)
			v, ok := opts.Decode("1 (male)")

			Convey("Then it should return the training code, not the display index", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 1.0)
			})
		})

		Convey("When decoding the smoking history label", func() {
			opts, _ := c.Options(catalog.SmokingHistory)
			v, ok := opts.Decode("1 (has smoking history)")
			_, unknown := opts.Decode("yes")

			Convey("Then it should encode to 1", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 1.0)
				So(unknown, ShouldBeFalse)
			})
		})

		Convey("When looking up an unknown feature", func() {
			_, err := c.Lookup("heart_rate")

			Convey("Then it should report ErrFeatureNotFound", func() {
				So(errors.Is(err, catalog.ErrFeatureNotFound), ShouldBeTrue)
				So(c.Has("heart_rate"), ShouldBeFalse)
			})
		})
	})
}

func TestCatalog_New(t *testing.T) {
	Convey("Given feature definitions", t, func() {
		features := []catalog.FeatureSpec{
			{Name: "a", Label: "A", Category: catalog.CategoryLaboratory},
			{Name: "b", Label: "B", Category: catalog.CategoryDemographics},
		}

		Convey("When a name is duplicated", func() {
			_, err := catalog.New(append(features, catalog.FeatureSpec{Name: "a"}), nil)

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, catalog.ErrInvalidCatalog), ShouldBeTrue)
			})
		})

		Convey("When options reference an unknown feature", func() {
			_, err := catalog.New(features, map[string]catalog.Options{"z": {{Label: "x", Value: 1}}})

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, catalog.ErrInvalidCatalog), ShouldBeTrue)
			})
		})

		Convey("When two labels share a code", func() {
			_, err := catalog.New(features, map[string]catalog.Options{
				"b": {{Label: "x", Value: 1}, {Label: "y", Value: 1}},
			})

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, catalog.ErrInvalidCatalog), ShouldBeTrue)
			})
		})

		Convey("When an option set is empty", func() {
			_, err := catalog.New(features, map[string]catalog.Options{"b": {}})

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, catalog.ErrInvalidCatalog), ShouldBeTrue)
			})
		})
	})
}

func TestCatalog_Group(t *testing.T) {
	Convey("Given a catalog with an unlisted category", t, func() {
		c, err := catalog.New([]catalog.FeatureSpec{
			{Name: "lab1", Category: catalog.CategoryLaboratory},
			{Name: "misc2", Category: "zz_misc"},
			{Name: "demo1", Category: catalog.CategoryDemographics},
			{Name: "misc1", Category: "aa_misc"},
			{Name: "lab2", Category: catalog.CategoryLaboratory},
			{Name: "body1", Category: catalog.CategoryBodyComposition},
		}, nil)
		So(err, ShouldBeNil)

		Convey("When grouping features given in mixed order", func() {
			groups := c.Group([]string{"misc2", "lab2", "body1", "misc1", "lab1", "demo1", "unknown"})

			Convey("Then listed categories come first by priority and unlisted ones last by name", func() {
				cats := make([]catalog.Category, len(groups))
				for i, g := range groups {
					cats[i] = g.Category
				}
				So(cats, ShouldResemble, []catalog.Category{
					catalog.CategoryDemographics,
					catalog.CategoryBodyComposition,
					catalog.CategoryLaboratory,
					"aa_misc",
					"zz_misc",
				})
			})

			Convey("And features keep the order they were given in", func() {
				lab := groups[2]
				So(lab.Title, ShouldEqual, "Laboratory tests")
				So(len(lab.Features), ShouldEqual, 2)
				So(lab.Features[0].Name, ShouldEqual, "lab2")
				So(lab.Features[1].Name, ShouldEqual, "lab1")
			})

			Convey("And repeated calls give the same order", func() {
				again := c.Group([]string{"misc2", "lab2", "body1", "misc1", "lab1", "demo1"})
				So(again, ShouldResemble, groups)
			})
		})
	})
}
