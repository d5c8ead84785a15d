package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/services/ledger"
	"github.com/perspectra/portal/internal/services/session"
)

// Redirect reasons carried on the login entry point URL
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonUnauthorized    = "unauthorized"
)

// LoginPath is the entry point unauthenticated and unauthorized callers
// are sent to
const LoginPath = "/login"

// Decision is the outcome of a gate check. A disallowed decision carries
// the redirect target; callers must treat it as terminal for the current
// request rather than a recoverable error.
type Decision struct {
	Allowed     bool
	Session     *model.Session
	Reason      string
	RedirectURL string
}

// Gate validates the current session against a required role set and
// lazily initializes the progress ledger for roles that track progress
type Gate struct {
	sessions *session.Manager
	ledgers  *ledger.Service
	logger   *slog.Logger
}

// New creates a new Gate
func New(sessions *session.Manager, ledgers *ledger.Service, logger *slog.Logger) *Gate {
	return &Gate{
		sessions: sessions,
		ledgers:  ledgers,
		logger:   logger,
	}
}

// Check validates the session token against the allowed roles.
//
// No session yields an unauthenticated redirect; a session whose role is
// not allowed yields an unauthorized redirect. An allowed employee or
// individual gets their ledger initialized on first visit. An absent
// session is never treated as an implicit default role.
func (g *Gate) Check(ctx context.Context, token string, allowedRoles ...model.Role) (Decision, error) {
	sess, err := g.sessions.Get(ctx, token)
	if errors.Is(err, model.ErrSessionNotFound) {
		return redirect(ReasonUnauthenticated), nil
	}
	if err != nil {
		return Decision{}, err
	}

	if !roleAllowed(sess.Account.Role, allowedRoles) {
		g.logger.Info("role not permitted",
			slog.String("email", sess.Account.Email),
			slog.String("role", string(sess.Account.Role)),
		)
		return redirect(ReasonUnauthorized), nil
	}

	if sess.Account.Role.TracksProgress() {
		if _, err := g.ledgers.EnsureAccountLedger(ctx, sess.Account.Email); err != nil {
			return Decision{}, err
		}
	}

	return Decision{Allowed: true, Session: sess}, nil
}

func redirect(reason string) Decision {
	return Decision{
		Allowed:     false,
		Reason:      reason,
		RedirectURL: fmt.Sprintf("%s?reason=%s", LoginPath, reason),
	}
}

func roleAllowed(role model.Role, allowed []model.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
