package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/perspectra/portal/internal/dependencies/clock"
	"github.com/perspectra/portal/internal/dependencies/random"
	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/storage"
)

const (
	// TokenLength is the length of generated session tokens (before prefix)
	TokenLength = 32
	// TokenAlphabet is the character set used for session tokens
	TokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Config holds configuration for the session manager
type Config struct {
	// SessionDuration bounds how long a session stays valid without logout
	SessionDuration time.Duration
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// Manager owns the current-session records. There is at most one account
// per token; setting a session overwrites without validation, and a stored
// record that is absent, expired, or unreadable is treated identically to
// no session at all.
type Manager struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	sessionDuration time.Duration
}

// New creates a new session Manager
func New(storage storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Manager {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Manager{
		storage:         storage,
		clock:           clk,
		random:          rnd,
		logger:          logger,
		sessionDuration: cfg.SessionDuration,
	}
}

// Set persists the account as a new session and returns it
func (m *Manager) Set(ctx context.Context, account model.Account) (*model.Session, error) {
	now := m.clock.Now()

	session := &model.Session{
		Token:     "sess_" + m.random.String(TokenLength, TokenAlphabet),
		Account:   account,
		CreatedAt: now,
		ExpiresAt: now.Add(m.sessionDuration),
	}

	if err := m.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get returns the session for a token. Absent, corrupt, and expired
// records all yield model.ErrSessionNotFound; corruption is logged but
// never surfaced to the caller.
func (m *Manager) Get(ctx context.Context, token string) (*model.Session, error) {
	session, err := m.storage.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrCorruptDocument) {
			m.logger.Warn("discarding corrupt session record", slog.String("error", err.Error()))
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	if m.clock.Now().After(session.ExpiresAt) {
		_ = m.storage.DeleteSession(ctx, token)
		return nil, model.ErrSessionNotFound
	}

	return session, nil
}

// Clear removes the session for a token; clearing a token that has no
// session is a no-op
func (m *Manager) Clear(ctx context.Context, token string) error {
	return m.storage.DeleteSession(ctx, token)
}
