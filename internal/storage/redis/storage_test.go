package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/perspectra/portal/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SessionTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	session := &model.Session{
		Token: "sess_abc123",
		Account: model.Account{
			ID:    "acct-1",
			Email: "liam.park@perspectra.example",
			Name:  "Liam Park",
			Role:  model.RoleEmployee,
		},
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	}

	err := s.storage.SaveSession(s.ctx, session)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "sess_abc123")
	s.Require().NoError(err)
	s.Equal(session.Account.Email, retrieved.Account.Email)
	s.Equal(model.RoleEmployee, retrieved.Account.Role)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestSessionTTLApplied() {
	session := &model.Session{Token: "sess_ttl"}
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetSession(s.ctx, "sess_ttl")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestGetSessionCorrupt() {
	s.Require().NoError(s.mini.Set(sessionKey("sess_bad"), "{not json"))

	_, err := s.storage.GetSession(s.ctx, "sess_bad")
	s.ErrorIs(err, model.ErrCorruptDocument)
}

func (s *StorageSuite) TestDeleteSession() {
	session := &model.Session{Token: "sess_abc123"}
	_ = s.storage.SaveSession(s.ctx, session)

	err := s.storage.DeleteSession(s.ctx, "sess_abc123")
	s.Require().NoError(err)

	_, err = s.storage.GetSession(s.ctx, "sess_abc123")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Ledger tests

func (s *StorageSuite) TestSaveAndGetAccountLedger() {
	ledger := &model.AccountLedger{
		Email: "liam.park@perspectra.example",
		Scenarios: map[model.ScenarioID]*model.ProgressEntry{
			"interruption": {Status: model.StatusInProgress, ProgressPct: 40},
		},
	}

	err := s.storage.SaveAccountLedger(s.ctx, ledger)
	s.Require().NoError(err)
	s.Equal(int64(1), ledger.Version)

	retrieved, err := s.storage.GetAccountLedger(s.ctx, "liam.park@perspectra.example")
	s.Require().NoError(err)
	s.Equal(int64(1), retrieved.Version)
	s.Equal(40, retrieved.Scenarios["interruption"].ProgressPct)
}

func (s *StorageSuite) TestGetAccountLedgerNotFound() {
	_, err := s.storage.GetAccountLedger(s.ctx, "nonexistent@perspectra.example")
	s.ErrorIs(err, model.ErrLedgerNotFound)
}

func (s *StorageSuite) TestSaveAccountLedgerStaleVersionRejected() {
	ledger := &model.AccountLedger{
		Email:     "liam.park@perspectra.example",
		Scenarios: map[model.ScenarioID]*model.ProgressEntry{},
	}
	s.Require().NoError(s.storage.SaveAccountLedger(s.ctx, ledger))

	theirs, err := s.storage.GetAccountLedger(s.ctx, "liam.park@perspectra.example")
	s.Require().NoError(err)
	s.Require().NoError(s.storage.SaveAccountLedger(s.ctx, theirs))

	stale := &model.AccountLedger{
		Email:     "liam.park@perspectra.example",
		Scenarios: map[model.ScenarioID]*model.ProgressEntry{},
		Version:   1,
	}
	err = s.storage.SaveAccountLedger(s.ctx, stale)
	s.ErrorIs(err, model.ErrVersionConflict)
}

func (s *StorageSuite) TestSaveAccountLedgerNonZeroVersionForMissingRejected() {
	ledger := &model.AccountLedger{
		Email:     "nobody@perspectra.example",
		Scenarios: map[model.ScenarioID]*model.ProgressEntry{},
		Version:   3,
	}
	err := s.storage.SaveAccountLedger(s.ctx, ledger)
	s.ErrorIs(err, model.ErrVersionConflict)
}

func (s *StorageSuite) TestGetAccountLedgerCorrupt() {
	s.Require().NoError(s.mini.Set(ledgerKey("liam.park@perspectra.example"), "{not json"))

	_, err := s.storage.GetAccountLedger(s.ctx, "liam.park@perspectra.example")
	s.ErrorIs(err, model.ErrCorruptDocument)
}

func (s *StorageSuite) TestFreshLedgerReplacesCorruptDocument() {
	s.Require().NoError(s.mini.Set(ledgerKey("liam.park@perspectra.example"), "{not json"))

	fresh := &model.AccountLedger{
		Email: "liam.park@perspectra.example",
		Scenarios: map[model.ScenarioID]*model.ProgressEntry{
			"interruption": {Status: model.StatusNotStarted},
		},
	}
	err := s.storage.SaveAccountLedger(s.ctx, fresh)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetAccountLedger(s.ctx, "liam.park@perspectra.example")
	s.Require().NoError(err)
	s.Equal(int64(1), retrieved.Version)
}

func (s *StorageSuite) TestStaleLedgerCannotReplaceCorruptDocument() {
	s.Require().NoError(s.mini.Set(ledgerKey("liam.park@perspectra.example"), "{not json"))

	stale := &model.AccountLedger{
		Email:     "liam.park@perspectra.example",
		Scenarios: map[model.ScenarioID]*model.ProgressEntry{},
		Version:   2,
	}
	err := s.storage.SaveAccountLedger(s.ctx, stale)
	s.ErrorIs(err, model.ErrCorruptDocument)
}

// Notes tests

func (s *StorageSuite) TestSaveAndGetNotes() {
	err := s.storage.SaveNotes(s.ctx, "liam.park@perspectra.example", "remember to follow up")
	s.Require().NoError(err)

	notes, err := s.storage.GetNotes(s.ctx, "Liam.Park@perspectra.example")
	s.Require().NoError(err)
	s.Equal("remember to follow up", notes)
}

func (s *StorageSuite) TestGetNotesNotFound() {
	_, err := s.storage.GetNotes(s.ctx, "nonexistent@perspectra.example")
	s.ErrorIs(err, model.ErrNotesNotFound)
}

// Preference tests

func (s *StorageSuite) TestSaveAndGetPreferences() {
	prefs := map[string]bool{"reduced_motion": true, "high_contrast": false}
	err := s.storage.SavePreferences(s.ctx, "liam.park@perspectra.example", prefs)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPreferences(s.ctx, "liam.park@perspectra.example")
	s.Require().NoError(err)
	s.Equal(prefs, retrieved)
}

func (s *StorageSuite) TestGetPreferencesNotFound() {
	_, err := s.storage.GetPreferences(s.ctx, "nonexistent@perspectra.example")
	s.ErrorIs(err, model.ErrPrefsNotFound)
}

func (s *StorageSuite) TestGetPreferencesCorrupt() {
	s.Require().NoError(s.mini.Set(prefsKey("liam.park@perspectra.example"), "{not json"))

	_, err := s.storage.GetPreferences(s.ctx, "liam.park@perspectra.example")
	s.ErrorIs(err, model.ErrCorruptDocument)
}
