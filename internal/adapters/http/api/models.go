package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/metarisk/internal/domain/registry"
)

// ModelsHandler serves the model registry.
type ModelsHandler struct {
	models ModelsProvider
}

// NewModelsHandler creates a new models handler.
func NewModelsHandler(models ModelsProvider) *ModelsHandler {
	return &ModelsHandler{models: models}
}

type modelSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

func summaries(p ModelsProvider) []modelSummary {
	specs := p.Models()
	out := make([]modelSummary, len(specs))
	for i, m := range specs {
		out[i] = modelSummary{ID: m.ID, Name: m.Name, Description: m.Description, Features: m.Features}
	}
	return out
}

// HandleList handles GET /v1/models requests.
func (h *ModelsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"models": summaries(h.models)})
}

// HandleGet handles GET /v1/models/{id} requests with the grouped form.
func (h *ModelsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_model"
	form, err := h.models.Form(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, registry.ErrModelNotFound) {
			writeError(w, http.StatusNotFound, "model_not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, form)
}
