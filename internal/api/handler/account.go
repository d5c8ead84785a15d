package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/perspectra/portal/internal/api/apierr"
	"github.com/perspectra/portal/internal/api/middleware"
	"github.com/perspectra/portal/internal/api/request"
	"github.com/perspectra/portal/internal/api/response"
	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/storage"
)

// AccountHandler handles per-account notes and accessibility preferences
type AccountHandler struct {
	storage storage.Storage
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(storage storage.Storage) *AccountHandler {
	return &AccountHandler{
		storage: storage,
	}
}

// GetNotes handles GET /api/v1/notes.
// An account with no saved notes gets an empty document, not an error.
func (h *AccountHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	notes, err := h.storage.GetNotes(r.Context(), account.Email)
	if err != nil && !errors.Is(err, model.ErrNotesNotFound) {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Notes{Notes: notes})
}

// PutNotes handles PUT /api/v1/notes
func (h *AccountHandler) PutNotes(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	var req request.NotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.storage.SaveNotes(r.Context(), account.Email, req.Notes); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Notes{Notes: req.Notes})
}

// GetPreferences handles GET /api/v1/preferences
func (h *AccountHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	prefs, err := h.storage.GetPreferences(r.Context(), account.Email)
	if err != nil {
		if !errors.Is(err, model.ErrPrefsNotFound) {
			apierr.WriteError(w, err)
			return
		}
		prefs = map[string]bool{}
	}

	response.JSON(w, http.StatusOK, response.Preferences{Preferences: prefs})
}

// PutPreferences handles PUT /api/v1/preferences
func (h *AccountHandler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	var req request.PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Preferences == nil {
		req.Preferences = map[string]bool{}
	}

	if err := h.storage.SavePreferences(r.Context(), account.Email, req.Preferences); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Preferences{Preferences: req.Preferences})
}
