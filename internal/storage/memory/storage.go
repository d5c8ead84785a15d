package memory

import (
	"context"
	"sync"

	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	sessions map[string]*model.Session
	ledgers  map[string]*model.AccountLedger
	notes    map[string]string
	prefs    map[string]map[string]bool
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions: make(map[string]*model.Session),
		ledgers:  make(map[string]*model.AccountLedger),
		notes:    make(map[string]string),
		prefs:    make(map[string]map[string]bool),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Ledger operations

func (s *Storage) SaveAccountLedger(ctx context.Context, ledger *model.AccountLedger) error {
	email := model.NormalizeEmail(ledger.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.ledgers[email]
	switch {
	case !exists:
		if ledger.Version != 0 {
			return model.ErrVersionConflict
		}
	case current.Version != ledger.Version:
		return model.ErrVersionConflict
	}

	saved := cloneLedger(ledger)
	saved.Email = email
	saved.Version = ledger.Version + 1
	s.ledgers[email] = saved
	ledger.Version = saved.Version
	return nil
}

func (s *Storage) GetAccountLedger(ctx context.Context, email string) (*model.AccountLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ledger, ok := s.ledgers[model.NormalizeEmail(email)]
	if !ok {
		return nil, model.ErrLedgerNotFound
	}
	return cloneLedger(ledger), nil
}

// Notes operations

func (s *Storage) SaveNotes(ctx context.Context, email, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[model.NormalizeEmail(email)] = notes
	return nil
}

func (s *Storage) GetNotes(ctx context.Context, email string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	notes, ok := s.notes[model.NormalizeEmail(email)]
	if !ok {
		return "", model.ErrNotesNotFound
	}
	return notes, nil
}

// Preference operations

func (s *Storage) SavePreferences(ctx context.Context, email string, prefs map[string]bool) error {
	copied := make(map[string]bool, len(prefs))
	for k, v := range prefs {
		copied[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[model.NormalizeEmail(email)] = copied
	return nil
}

func (s *Storage) GetPreferences(ctx context.Context, email string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefs, ok := s.prefs[model.NormalizeEmail(email)]
	if !ok {
		return nil, model.ErrPrefsNotFound
	}
	copied := make(map[string]bool, len(prefs))
	for k, v := range prefs {
		copied[k] = v
	}
	return copied, nil
}

// cloneLedger deep-copies a ledger so callers cannot mutate stored state
func cloneLedger(l *model.AccountLedger) *model.AccountLedger {
	out := &model.AccountLedger{
		Email:     l.Email,
		Scenarios: make(map[model.ScenarioID]*model.ProgressEntry, len(l.Scenarios)),
		Version:   l.Version,
	}
	for id, entry := range l.Scenarios {
		copied := *entry
		out.Scenarios[id] = &copied
	}
	return out
}
