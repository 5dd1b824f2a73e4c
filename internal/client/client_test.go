package client_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/okian/metarisk/internal/adapters/http/api"
	service "github.com/okian/metarisk/internal/app"
	"github.com/okian/metarisk/internal/client"
	"github.com/okian/metarisk/internal/domain/catalog"
	"github.com/okian/metarisk/internal/domain/collect"
	"github.com/okian/metarisk/internal/domain/registry"
	"github.com/okian/metarisk/internal/domain/risk"
	"github.com/okian/metarisk/internal/domain/transform"
	"github.com/okian/metarisk/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type fixedClassifier struct{ p float64 }

func (c fixedClassifier) Predict(transform.Vector) (int, error) { return 0, nil }

func (c fixedClassifier) PredictProba(transform.Vector) ([]float64, error) {
	return []float64{1 - c.p, c.p}, nil
}

func TestClient(t *testing.T) {
	Convey("Given a client against a running API", t, func() {
		ctx := context.Background()
		loader := risk.LoaderFunc(func(_ context.Context, ref string) (risk.Classifier, error) {
			if ref == "xgb_model.yaml" {
				return nil, risk.ErrArtifactNotFound
			}
			return fixedClassifier{p: 0.2}, nil
		})
		svc := service.New(service.WithLogger(logger.Discard()), service.WithLoader(loader))
		So(svc.Start(ctx), ShouldBeNil)
		ts := httptest.NewServer(api.NewServer(svc).Router())
		defer ts.Close()
		c := client.New(ts.URL + "/")

		Convey("When listing models", func() {
			models, err := c.Models(ctx)

			Convey("Then all models should be returned in order", func() {
				So(err, ShouldBeNil)
				So(len(models), ShouldEqual, 4)
				So(models[3].ID, ShouldEqual, registry.ModelBaseline)
			})
		})

		Convey("When submitting the baseline defaults", func() {
			form, err := c.Form(ctx, registry.ModelBaseline)
			So(err, ShouldBeNil)
			a, err := c.Assess(ctx, registry.ModelBaseline, form.Defaults)

			Convey("Then the assessment should be decoded", func() {
				So(err, ShouldBeNil)
				So(a.Tier, ShouldEqual, risk.TierLow)
				So(a.Probability, ShouldAlmostEqual, 0.2, 1e-12)
				So(form.Defaults[catalog.Sex], ShouldEqual, "1 (male)")
			})
		})

		Convey("When the server rejects the submission", func() {
			_, err := c.Assess(ctx, registry.ModelBaseline, map[string]string{catalog.Age: "abc"})

			Convey("Then the API error should carry the field list", func() {
				var apiErr *client.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.Status, ShouldEqual, 422)
				So(apiErr.Code, ShouldEqual, service.KindInvalidInput)
				So(len(apiErr.Fields), ShouldEqual, 7)
				So(errors.Is(err, collect.ErrInvalidNumber), ShouldBeTrue)
				So(errors.Is(err, collect.ErrInvalidSelection), ShouldBeTrue)
			})
		})

		Convey("When only an option label is wrong", func() {
			form, err := c.Form(ctx, registry.ModelBaseline)
			So(err, ShouldBeNil)
			values := form.Defaults
			values[catalog.Sex] = "bogus"
			_, err = c.Assess(ctx, registry.ModelBaseline, values)

			Convey("Then the error should match the selection sentinel only", func() {
				var apiErr *client.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(len(apiErr.Fields), ShouldEqual, 1)
				So(apiErr.Fields[0].Feature, ShouldEqual, catalog.Sex)
				So(errors.Is(err, collect.ErrInvalidSelection), ShouldBeTrue)
				So(errors.Is(err, collect.ErrInvalidNumber), ShouldBeFalse)
			})
		})

		Convey("When only a number is malformed", func() {
			form, err := c.Form(ctx, registry.ModelBaseline)
			So(err, ShouldBeNil)
			values := form.Defaults
			values[catalog.BMI] = "heavy"
			_, err = c.Assess(ctx, registry.ModelBaseline, values)

			Convey("Then the error should match the number sentinel only", func() {
				So(errors.Is(err, collect.ErrInvalidNumber), ShouldBeTrue)
				So(errors.Is(err, collect.ErrInvalidSelection), ShouldBeFalse)
			})
		})

		Convey("When the model or artifact is missing", func() {
			_, errModel := c.Form(ctx, "nope")
			form, _ := c.Form(ctx, registry.ModelClinical)
			_, errArtifact := c.Assess(ctx, registry.ModelClinical, form.Defaults)

			Convey("Then the errors should match the domain sentinels", func() {
				So(errors.Is(errModel, registry.ErrModelNotFound), ShouldBeTrue)
				So(errors.Is(errArtifact, risk.ErrArtifactNotFound), ShouldBeTrue)
			})
		})

		Convey("When the server is unreachable", func() {
			_, err := client.New("http://127.0.0.1:1").Models(ctx)

			Convey("Then a transport error should be returned", func() {
				So(errors.Is(err, client.ErrTransport), ShouldBeTrue)
			})
		})
	})
}
