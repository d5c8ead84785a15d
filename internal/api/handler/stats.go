package handler

import (
	"net/http"

	"github.com/perspectra/portal/internal/api/apierr"
	"github.com/perspectra/portal/internal/api/middleware"
	"github.com/perspectra/portal/internal/api/response"
	"github.com/perspectra/portal/internal/catalog"
	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/services/stats"
)

// StatsHandler handles dashboard aggregates
type StatsHandler struct {
	stats *stats.Service
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *stats.Service) *StatsHandler {
	return &StatsHandler{
		stats: statsService,
	}
}

// Org handles GET /api/v1/stats/org
func (h *StatsHandler) Org(w http.ResponseWriter, r *http.Request) {
	orgStats, err := h.stats.ComputeOrgStats(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OrgStatsFromModel(orgStats))
}

// Team handles GET /api/v1/stats/team. The team is resolved from the
// calling manager's roster entry.
func (h *StatsHandler) Team(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	entry, ok := catalog.RosterByEmail(account.Email)
	if !ok {
		apierr.WriteError(w, model.ErrUnknownRosterMember)
		return
	}

	rows, err := h.stats.ComputeTeamStats(r.Context(), entry.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamStatsFromModel(rows))
}
