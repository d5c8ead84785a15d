package handler

import (
	"net/http"

	"github.com/perspectra/portal/internal/api/response"
	"github.com/perspectra/portal/internal/catalog"
)

// CatalogHandler serves the static scenario catalog
type CatalogHandler struct{}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// List handles GET /api/v1/scenarios
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	scenarios := catalog.Scenarios()
	out := make([]response.Scenario, len(scenarios))
	for i, s := range scenarios {
		out[i] = response.ScenarioFromModel(s)
	}
	response.JSON(w, http.StatusOK, response.ScenarioList{Scenarios: out})
}
