package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/metarisk/internal/app"
	"github.com/okian/metarisk/internal/domain/collect"
	"github.com/okian/metarisk/pkg/logger"
)

// AssessmentsHandler runs submissions.
type AssessmentsHandler struct {
	deps    Dependencies
	maxBody int64
	logger  logger.Logger
}

// NewAssessmentsHandler creates a new assessments handler.
func NewAssessmentsHandler(deps Dependencies) *AssessmentsHandler {
	return &AssessmentsHandler{deps: deps, maxBody: defaultMaxBodyBytes, logger: logger.Discard()}
}

// assessmentRequest mirrors the OpenAPI schema for a submission. Values may
// be JSON strings or numbers; categorical features take their option label.
type assessmentRequest struct {
	Values map[string]json.RawMessage `json:"values"`
}

// raw renders every value as the text a form field would carry.
func (req assessmentRequest) raw() (map[string]string, error) {
	out := make(map[string]string, len(req.Values))
	for name, v := range req.Values {
		v = bytes.TrimSpace(v)
		switch {
		case len(v) == 0 || bytes.Equal(v, []byte("null")):
			continue
		case v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, fmt.Errorf("value of %q: %w", name, err)
			}
			out[name] = s
		case v[0] == '-' || (v[0] >= '0' && v[0] <= '9'):
			var n json.Number
			if err := json.Unmarshal(v, &n); err != nil {
				return nil, fmt.Errorf("value of %q: %w", name, err)
			}
			out[name] = n.String()
		default:
			return nil, fmt.Errorf("value of %q must be a string or a number", name)
		}
	}
	return out, nil
}

// decodeBody decodes exactly one JSON value from body into v.
func decodeBody(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return ErrTrailingData
	}
	return nil
}

// HandlePost handles POST /v1/models/{id}/assessments requests.
func (h *AssessmentsHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_assessment"
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req assessmentRequest
	if err := decodeBody(r.Body, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	raw, err := req.raw()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	a, err := h.deps.Submit(r.Context(), chi.URLParam(r, "id"), raw)
	if err != nil {
		h.writeSubmitError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// writeSubmitError maps pipeline failures onto HTTP responses.
func (h *AssessmentsHandler) writeSubmitError(w http.ResponseWriter, r *http.Request, op string, err error) {
	kind := service.ErrorKind(err)
	switch kind {
	case service.KindModelNotFound:
		writeError(w, http.StatusNotFound, kind, Wrap(op, err))
	case service.KindInvalidInput:
		resp := errorResponse{Code: kind, Message: "one or more fields are invalid"}
		for _, fe := range collect.FieldErrors(err) {
			resp.Fields = append(resp.Fields, fieldError{Feature: fe.Feature, Value: fe.Value, Error: fe.Kind.Error()})
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case service.KindArtifactNotFound:
		writeError(w, http.StatusServiceUnavailable, kind, Wrap(op, err))
	case service.KindArtifactError:
		writeError(w, http.StatusBadGateway, kind, Wrap(op, err))
	case service.KindNotStarted:
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		h.logger.Error(r.Context(), "assessment failed",
			logger.String("op", op),
			logger.String("kind", kind),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", NewKind(op, ErrInternal))
	}
}
