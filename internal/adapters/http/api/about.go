package api

import (
	"net/http"

	"github.com/okian/metarisk/internal/domain/risk"
)

// AboutHandler describes the prediction end point and tier policy.
type AboutHandler struct {
	models ModelsProvider
}

// NewAboutHandler creates a new about handler.
func NewAboutHandler(models ModelsProvider) *AboutHandler {
	return &AboutHandler{models: models}
}

type tierInfo struct {
	Tier   risk.Tier `json:"tier"`
	From   float64   `json:"from"`
	To     float64   `json:"to"`
	Advice string    `json:"advice"`
}

type aboutResponse struct {
	Endpoint string         `json:"endpoint"`
	Tiers    []tierInfo     `json:"tiers"`
	Models   []modelSummary `json:"models"`
}

// HandleAbout handles GET /about requests.
func (h *AboutHandler) HandleAbout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, aboutResponse{
		Endpoint: risk.EndpointDefinition,
		Tiers: []tierInfo{
			{Tier: risk.TierLow, From: 0, To: risk.ModerateThreshold, Advice: risk.TierLow.Advice()},
			{Tier: risk.TierModerate, From: risk.ModerateThreshold, To: risk.HighThreshold, Advice: risk.TierModerate.Advice()},
			{Tier: risk.TierHigh, From: risk.HighThreshold, To: 1, Advice: risk.TierHigh.Advice()},
		},
		Models: summaries(h.models),
	})
}
