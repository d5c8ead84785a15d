package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/perspectra/portal/internal/api/apierr"
	"github.com/perspectra/portal/internal/api/middleware"
	"github.com/perspectra/portal/internal/api/request"
	"github.com/perspectra/portal/internal/api/response"
	"github.com/perspectra/portal/internal/catalog"
	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/services/ledger"
	"github.com/perspectra/portal/internal/services/scenario"
)

// ProgressHandler handles an account's own progress ledger
type ProgressHandler struct {
	ledgers *ledger.Service
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(ledgers *ledger.Service) *ProgressHandler {
	return &ProgressHandler{
		ledgers: ledgers,
	}
}

// Get handles GET /api/v1/progress
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	l, err := h.ledgers.GetProgress(r.Context(), account.Email)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LedgerFromModel(l))
}

// Start handles POST /api/v1/progress/{scenario_id}/start
func (h *ProgressHandler) Start(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	scenarioID := model.ScenarioID(mux.Vars(r)["scenario_id"])

	var req request.StartScenarioRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
			return
		}
	}
	pct := req.Pct
	if pct == 0 {
		pct = ledger.DefaultStartPct
	}

	entry, err := h.ledgers.MarkInProgress(r.Context(), account.Email, scenarioID, pct)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProgressEntryFromModel(scenarioID, entry))
}

// Complete handles POST /api/v1/progress/{scenario_id}/complete
func (h *ProgressHandler) Complete(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	scenarioID := model.ScenarioID(mux.Vars(r)["scenario_id"])

	entry, err := h.ledgers.MarkComplete(r.Context(), account.Email, scenarioID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProgressEntryFromModel(scenarioID, entry))
}

// Choice handles PUT /api/v1/progress/{scenario_id}/choice.
// The choice control is single-selection: picking an option replaces any
// previous pick, and an option outside the scenario's set is rejected.
func (h *ProgressHandler) Choice(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	scenarioID := model.ScenarioID(mux.Vars(r)["scenario_id"])

	sc, ok := catalog.ScenarioByID(scenarioID)
	if !ok {
		apierr.WriteError(w, model.ErrUnknownScenario)
		return
	}

	var req request.ChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	l, err := h.ledgers.GetProgress(r.Context(), account.Email)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	saved := ""
	if entry := l.Entry(scenarioID); entry != nil {
		saved = entry.SelectedChoice
	}

	sel := scenario.NewSelection(scenarioID, sc.Choices, saved)
	if err := sel.Select(req.Choice); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	entry, err := sel.Confirm(r.Context(), h.ledgers, account.Email)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProgressEntryFromModel(scenarioID, entry))
}
