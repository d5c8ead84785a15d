package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS ledgers (
	email   TEXT PRIMARY KEY,
	data    TEXT NOT NULL,
	version INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS notes (
	email TEXT PRIMARY KEY,
	body  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS preferences (
	email TEXT PRIMARY KEY,
	data  TEXT NOT NULL
);
`

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens (or creates) the database at path and ensures the schema exists
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// modernc sqlite is single-writer; serialize access through one conn
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO sessions (token, data) VALUES (?, ?) ON CONFLICT(token) DO UPDATE SET data = excluded.data",
		session.Token, string(data))
	return err
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM sessions WHERE token = ?", token).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrCorruptDocument, err)
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	return err
}

// Ledger operations

func (s *Storage) SaveAccountLedger(ctx context.Context, ledger *model.AccountLedger) error {
	email := model.NormalizeEmail(ledger.Email)

	saved := *ledger
	saved.Email = email
	saved.Version = ledger.Version + 1

	data, err := json.Marshal(&saved)
	if err != nil {
		return err
	}

	if ledger.Version == 0 {
		res, err := s.db.ExecContext(ctx,
			"INSERT INTO ledgers (email, data, version) VALUES (?, ?, ?) ON CONFLICT(email) DO NOTHING",
			email, string(data), saved.Version)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			// A document already exists. A readable one means someone
			// saved first; an unreadable one is replaced by the fresh
			// ledger (fail open).
			if _, getErr := s.GetAccountLedger(ctx, email); !errors.Is(getErr, model.ErrCorruptDocument) {
				return model.ErrVersionConflict
			}
			if _, err := s.db.ExecContext(ctx,
				"UPDATE ledgers SET data = ?, version = ? WHERE email = ?",
				string(data), saved.Version, email); err != nil {
				return err
			}
		}
	} else {
		res, err := s.db.ExecContext(ctx,
			"UPDATE ledgers SET data = ?, version = ? WHERE email = ? AND version = ?",
			string(data), saved.Version, email, ledger.Version)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return model.ErrVersionConflict
		}
	}

	ledger.Version = saved.Version
	return nil
}

func (s *Storage) GetAccountLedger(ctx context.Context, email string) (*model.AccountLedger, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM ledgers WHERE email = ?", model.NormalizeEmail(email)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrLedgerNotFound
	}
	if err != nil {
		return nil, err
	}

	var ledger model.AccountLedger
	if err := json.Unmarshal([]byte(data), &ledger); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrCorruptDocument, err)
	}
	return &ledger, nil
}

// Notes operations

func (s *Storage) SaveNotes(ctx context.Context, email, notes string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (email, body) VALUES (?, ?) ON CONFLICT(email) DO UPDATE SET body = excluded.body",
		model.NormalizeEmail(email), notes)
	return err
}

func (s *Storage) GetNotes(ctx context.Context, email string) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM notes WHERE email = ?", model.NormalizeEmail(email)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", model.ErrNotesNotFound
	}
	if err != nil {
		return "", err
	}
	return body, nil
}

// Preference operations

func (s *Storage) SavePreferences(ctx context.Context, email string, prefs map[string]bool) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO preferences (email, data) VALUES (?, ?) ON CONFLICT(email) DO UPDATE SET data = excluded.data",
		model.NormalizeEmail(email), string(data))
	return err
}

func (s *Storage) GetPreferences(ctx context.Context, email string) (map[string]bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM preferences WHERE email = ?", model.NormalizeEmail(email)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPrefsNotFound
	}
	if err != nil {
		return nil, err
	}

	var prefs map[string]bool
	if err := json.Unmarshal([]byte(data), &prefs); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrCorruptDocument, err)
	}
	return prefs, nil
}
