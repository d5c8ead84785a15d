package storage

import (
	"context"

	"github.com/perspectra/portal/internal/model"
)

// Storage defines the interface for data persistence.
//
// Every document is stored whole under a stable key: sessions by token,
// ledgers, notes and preferences by normalized account email. Absent
// documents are reported with the matching model sentinel; unparseable
// stored data is reported as model.ErrCorruptDocument so callers can
// decide whether to fail open.
type Storage interface {
	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error

	// Ledger operations.
	// SaveAccountLedger enforces optimistic concurrency: the save fails
	// with model.ErrVersionConflict unless the ledger's Version matches
	// the stored document (or the document does not exist and Version is
	// zero). On success the stored Version is incremented.
	SaveAccountLedger(ctx context.Context, ledger *model.AccountLedger) error
	GetAccountLedger(ctx context.Context, email string) (*model.AccountLedger, error)

	// Notes operations (per-account free text)
	SaveNotes(ctx context.Context, email, notes string) error
	GetNotes(ctx context.Context, email string) (string, error)

	// Preference operations (per-account accessibility flags)
	SavePreferences(ctx context.Context, email string, prefs map[string]bool) error
	GetPreferences(ctx context.Context, email string) (map[string]bool, error)
}
