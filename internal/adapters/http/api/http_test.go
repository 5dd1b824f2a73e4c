package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/metarisk/internal/adapters/http/api"
	service "github.com/okian/metarisk/internal/app"
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

// newTestServer serves every artifact except the clinical one, and fails the
// body composition artifact as incompatible.
func newTestServer(opts ...api.Option) (*httptest.Server, *service.Service) {
	loader := risk.LoaderFunc(func(_ context.Context, ref string) (risk.Classifier, error) {
		switch ref {
		case "xgb_model.yaml":
			return nil, risk.ErrArtifactNotFound
		case "svm_model.yaml":
			return nil, risk.ErrArtifactError
		}
		return fixedClassifier{p: 0.45}, nil
	})
	svc := service.New(service.WithLogger(logger.Discard()), service.WithLoader(loader))
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	srv := api.NewServer(svc, opts...)
	return httptest.NewServer(srv.Router()), svc
}

func post(url, body string) (*http.Response, map[string]any) {
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func get(url string) (*http.Response, []byte) {
	resp, err := http.Get(url)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

const baselineBody = `{"values": {
	"sex": "1 (male)", "age": 50, "exercise_frequency": "0: rarely (<1 per week)",
	"smoking_history": "0 (no smoking history)", "drinking_history": "0 (no drinking history)",
	"bmi": 24.0, "waist_hip_ratio": "0.85"}}`

func TestServer_Assessments(t *testing.T) {
	Convey("Given an API server", t, func() {
		ts, _ := newTestServer(api.WithMaxBodyBytes(2048))
		defer ts.Close()
		url := func(id string) string { return ts.URL + "/v1/models/" + id + "/assessments" }

		Convey("When posting a valid baseline submission", func() {
			resp, body := post(url(registry.ModelBaseline), baselineBody)

			Convey("Then it should return the assessment", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["model_id"], ShouldEqual, registry.ModelBaseline)
				So(body["tier"], ShouldEqual, "MODERATE")
				So(body["probability"], ShouldAlmostEqual, 0.45, 1e-12)
				So(body["id"], ShouldNotBeEmpty)
				So(resp.Header.Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
			})
		})

		Convey("When the model is unknown", func() {
			resp, body := post(url("model_z"), baselineBody)

			Convey("Then it should return 404", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				So(body["code"], ShouldEqual, "model_not_found")
			})
		})

		Convey("When fields are invalid", func() {
			resp, body := post(url(registry.ModelBaseline), `{"values": {"sex": "male", "age": "abc"}}`)

			Convey("Then it should return 422 listing every bad field", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusUnprocessableEntity)
				So(body["code"], ShouldEqual, "invalid_input")
				fields := body["fields"].([]any)
				So(len(fields), ShouldEqual, 7)
				first := fields[0].(map[string]any)
				So(first["feature"], ShouldEqual, "sex")
				So(first["value"], ShouldEqual, "male")
			})
		})

		Convey("When the artifact is missing", func() {
			resp, body := post(url(registry.ModelClinical), `{"values": {}}`)

			Convey("Then validation should still come first", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusUnprocessableEntity)
				So(body["code"], ShouldEqual, "invalid_input")
			})
		})

		Convey("When the body is not JSON", func() {
			resp, body := post(url(registry.ModelBaseline), `{"values":`)

			Convey("Then it should return 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the JSON body is followed by more data", func() {
			respGarbage, bodyGarbage := post(url(registry.ModelBaseline), baselineBody+` garbage`)
			respSecond, _ := post(url(registry.ModelBaseline), baselineBody+` {"values": {}}`)
			respSpace, _ := post(url(registry.ModelBaseline), baselineBody+"\n\t ")

			Convey("Then trailing values should be rejected with 400", func() {
				So(respGarbage.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(bodyGarbage["code"], ShouldEqual, "bad_request")
				So(respSecond.StatusCode, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then trailing whitespace should still be accepted", func() {
				So(respSpace.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When a value is neither a string nor a number", func() {
			resp, body := post(url(registry.ModelBaseline), `{"values": {"age": true}}`)

			Convey("Then it should return 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(body["message"], ShouldContainSubstring, "age")
			})
		})

		Convey("When the body exceeds the limit", func() {
			resp, body := post(url(registry.ModelBaseline), `{"values": {"age": "`+strings.Repeat("9", 4096)+`"}}`)

			Convey("Then it should return 413", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(body["code"], ShouldEqual, "payload_too_large")
			})
		})
	})
}

func TestServer_ArtifactFailures(t *testing.T) {
	Convey("Given an API server whose artifacts are partly unavailable", t, func() {
		ts, svc := newTestServer()
		defer ts.Close()

		submit := func(id string) (*http.Response, map[string]any) {
			form, err := svc.Form(id)
			So(err, ShouldBeNil)
			values, _ := json.Marshal(map[string]any{"values": form.Defaults})
			return post(ts.URL+"/v1/models/"+id+"/assessments", string(values))
		}

		Convey("When the artifact does not exist", func() {
			resp, body := submit(registry.ModelClinical)

			Convey("Then it should return 503", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
				So(body["code"], ShouldEqual, "artifact_not_found")
			})
		})

		Convey("When the artifact cannot be used", func() {
			resp, body := submit(registry.ModelBodyComposition)

			Convey("Then it should return 502", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadGateway)
				So(body["code"], ShouldEqual, "artifact_error")
			})
		})

		Convey("When another model is submitted afterwards", func() {
			_, _ = submit(registry.ModelClinical)
			resp, _ := submit(registry.ModelFull)

			Convey("Then it should still succeed", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestServer_Models(t *testing.T) {
	Convey("Given an API server", t, func() {
		ts, _ := newTestServer()
		defer ts.Close()

		Convey("When listing models", func() {
			resp, b := get(ts.URL + "/v1/models")
			var body struct {
				Models []struct {
					ID       string   `json:"id"`
					Features []string `json:"features"`
				} `json:"models"`
			}
			So(json.Unmarshal(b, &body), ShouldBeNil)

			Convey("Then all four should be listed in order", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(len(body.Models), ShouldEqual, 4)
				So(body.Models[0].ID, ShouldEqual, registry.ModelFull)
				So(body.Models[3].ID, ShouldEqual, registry.ModelBaseline)
				So(len(body.Models[3].Features), ShouldEqual, 7)
			})
		})

		Convey("When fetching one model", func() {
			resp, b := get(ts.URL + "/v1/models/" + registry.ModelBaseline)
			var form service.Form
			So(json.Unmarshal(b, &form), ShouldBeNil)

			Convey("Then its grouped form should be returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(form.Model.ID, ShouldEqual, registry.ModelBaseline)
				So(len(form.Groups), ShouldEqual, 2)
				So(form.Defaults["age"], ShouldEqual, "50")
			})
		})

		Convey("When fetching an unknown model", func() {
			resp, _ := get(ts.URL + "/v1/models/nope")

			Convey("Then it should return 404", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestServer_Operational(t *testing.T) {
	Convey("Given an API server", t, func() {
		ts, _ := newTestServer()
		defer ts.Close()

		Convey("Then /healthz should report ok", func() {
			resp, b := get(ts.URL + "/healthz")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(b), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Then /metrics should expose request metrics", func() {
			_, _ = get(ts.URL + "/healthz")
			resp, b := get(ts.URL + "/metrics")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(b), ShouldContainSubstring, "metarisk_assessment_http_requests_total")
			So(string(b), ShouldContainSubstring, `endpoint="/healthz"`)
		})

		Convey("Then /stats should report service counters", func() {
			resp, b := get(ts.URL + "/stats")
			var stats map[string]any
			So(json.Unmarshal(b, &stats), ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(stats["started"], ShouldEqual, true)
			So(stats["models"], ShouldEqual, 4.0)
		})

		Convey("Then /about should describe the tiers", func() {
			resp, b := get(ts.URL + "/about")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(b), ShouldContainSubstring, "MODERATE")
			So(string(b), ShouldContainSubstring, "36 months")
		})

		Convey("Then CORS preflight should be answered", func() {
			req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/v1/models", http.NoBody)
			req.Header.Set("Origin", "https://clinic.example")
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			_ = resp.Body.Close()
			So(resp.Header.Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given API error helpers", t, func() {
		cause := errors.New("eof")

		Convey("Then kinds and causes should both match errors.Is", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: eof")
		})

		Convey("Then NewKind and Wrap should render the operation", func() {
			So(api.NewKind("api.op", api.ErrInternal).Error(), ShouldEqual, "api.op: internal error")
			So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: eof")
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}
