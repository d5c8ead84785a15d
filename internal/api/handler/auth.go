package handler

import (
	"encoding/json"
	"net/http"

	"github.com/perspectra/portal/internal/api/apierr"
	"github.com/perspectra/portal/internal/api/middleware"
	"github.com/perspectra/portal/internal/api/request"
	"github.com/perspectra/portal/internal/api/response"
	"github.com/perspectra/portal/internal/authclient"
	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/services/session"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	auth     *authclient.Client
	sessions *session.Manager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *authclient.Client, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
	}
}

// Register handles POST /api/v1/auth/register.
// A successful registration is followed by an automatic login so the
// caller lands with an active session.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("email and password are required"))
		return
	}

	role := model.Role(req.Role)
	if req.Role != "" && !role.Valid() {
		apierr.WriteError(w, apierr.NewInvalidRequestError("unknown role"))
		return
	}
	if role == "" {
		role = model.RoleIndividual
	}

	if err := h.auth.Register(r.Context(), authclient.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     role,
	}); err != nil {
		apierr.WriteError(w, err)
		return
	}

	account, err := h.auth.Login(r.Context(), authclient.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	sess, err := h.sessions.Set(r.Context(), *account)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(sess))
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("email and password are required"))
		return
	}

	account, err := h.auth.Login(r.Context(), authclient.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	sess, err := h.sessions.Set(r.Context(), *account)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(sess))
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(r.Context(), middleware.SessionToken(r)); err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Me handles GET /api/v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	response.JSON(w, http.StatusOK, response.AccountFromModel(*account))
}
