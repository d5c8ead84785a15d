package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/perspectra/portal/internal/authclient"
	"github.com/perspectra/portal/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeUnknownScenario    = "UNKNOWN_SCENARIO"
	CodeNotRosterMember    = "NOT_ROSTER_MEMBER"
	CodeConflict           = "CONFLICT"
	CodeRequestInFlight    = "REQUEST_IN_FLIGHT"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Model errors
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthenticated, "Not logged in"}}
	case errors.Is(err, model.ErrUnknownScenario):
		return &httpError{http.StatusNotFound, APIError{CodeUnknownScenario, "Unknown scenario"}}
	case errors.Is(err, model.ErrUnknownRosterMember):
		return &httpError{http.StatusForbidden, APIError{CodeNotRosterMember, "Account is not on the org roster"}}
	case errors.Is(err, model.ErrVersionConflict):
		return &httpError{http.StatusConflict, APIError{CodeConflict, "Concurrent update, retry"}}

	// Auth client errors. Bad credentials and role mismatch share one
	// shape so nothing leaks about which check failed.
	case errors.Is(err, authclient.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid credentials"}}
	case errors.Is(err, authclient.ErrEmailTaken):
		return &httpError{http.StatusConflict, APIError{CodeEmailExists, "Email already exists"}}
	case errors.Is(err, authclient.ErrMissingFields):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "email and password required"}}
	case errors.Is(err, authclient.ErrRequestInFlight):
		return &httpError{http.StatusTooManyRequests, APIError{CodeRequestInFlight, "Authentication request already in flight"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthenticatedError creates an error for requests with no valid session
func NewUnauthenticatedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthenticated, "Authentication required"}}
}

// NewUnauthorizedError creates an error for sessions whose role is not allowed
func NewUnauthorizedError() error {
	return &httpError{http.StatusForbidden, APIError{CodeUnauthorized, "Role not permitted"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
