package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/perspectra/portal/internal/api/apierr"
	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/services/gate"
)

type contextKey string

const (
	accountContextKey contextKey = "account"
	sessionContextKey contextKey = "session"
)

// RequireRole creates middleware that gates a route on the given roles.
//
// The gate is a guard, not a predicate: a failed check ends the request
// with a reason-coded redirect to the login entry point (for clients that
// accept HTML) or the equivalent JSON error, and the wrapped handler
// never runs. Eligible roles get their ledger lazily initialized as a
// side effect of passing.
func RequireRole(g *gate.Gate, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := g.Check(r.Context(), extractToken(r), roles...)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			if !decision.Allowed {
				if acceptsHTML(r) {
					http.Redirect(w, r, decision.RedirectURL, http.StatusSeeOther)
					return
				}
				switch decision.Reason {
				case gate.ReasonUnauthorized:
					apierr.WriteError(w, apierr.NewUnauthorizedError())
				default:
					apierr.WriteError(w, apierr.NewUnauthenticatedError())
				}
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, sessionContextKey, decision.Session)
			ctx = context.WithValue(ctx, accountContextKey, &decision.Session.Account)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Fall back to cookie
	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// acceptsHTML reports whether the client negotiated an HTML response,
// which selects redirect-style gate failures over JSON ones
func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// GetAccount returns the authenticated account from the request context
func GetAccount(ctx context.Context) *model.Account {
	account, _ := ctx.Value(accountContextKey).(*model.Account)
	return account
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *model.Session {
	session, _ := ctx.Value(sessionContextKey).(*model.Session)
	return session
}

// MustGetAccount returns the authenticated account or panics
func MustGetAccount(ctx context.Context) *model.Account {
	account := GetAccount(ctx)
	if account == nil {
		panic("no account in context - auth middleware not applied?")
	}
	return account
}

// SessionToken returns the token the request presented, if any
func SessionToken(r *http.Request) string {
	return extractToken(r)
}
