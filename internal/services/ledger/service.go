package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/perspectra/portal/internal/dependencies/clock"
	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/storage"
)

// DefaultStartPct is the percentage reported when a scenario is started
// without an explicit value
const DefaultStartPct = 40

// saveRetries bounds the read-modify-write retry loop on version conflicts
const saveRetries = 3

// Service owns the per-account, per-scenario progress ledger.
//
// Every known scenario has exactly one entry per account once the
// account's ledger has been initialized; entries are updated, never
// deleted. All mutations go through UpdateScenarioProgress, which stamps
// LastUpdated and retries on concurrent-writer conflicts.
type Service struct {
	storage   storage.Storage
	scenarios []model.Scenario
	clock     clock.Clock
	logger    *slog.Logger
}

// New creates a new ledger Service over the given scenario catalog
func New(storage storage.Storage, scenarios []model.Scenario, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage:   storage,
		scenarios: scenarios,
		clock:     clk,
		logger:    logger,
	}
}

// EnsureAccountLedger creates the account's ledger if it does not exist,
// with every catalog scenario initialized to not_started at 0%. Ensuring
// an account that already has a ledger is a no-op. A corrupt stored
// ledger is treated as absent and replaced (fail open).
func (s *Service) EnsureAccountLedger(ctx context.Context, email string) (*model.AccountLedger, error) {
	existing, err := s.read(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	fresh := s.newLedger(email)
	if err := s.storage.SaveAccountLedger(ctx, fresh); err != nil {
		if errors.Is(err, model.ErrVersionConflict) {
			// Another caller initialized it first; theirs wins
			return s.storage.GetAccountLedger(ctx, email)
		}
		return nil, err
	}
	return fresh, nil
}

// GetProgress returns the account's full ledger, creating it first if needed
func (s *Service) GetProgress(ctx context.Context, email string) (*model.AccountLedger, error) {
	return s.EnsureAccountLedger(ctx, email)
}

// UpdateScenarioProgress merges a partial update into the entry for one
// scenario, creating a default entry first if the ledger lacks one, and
// always stamps LastUpdated. This is the single mutation primitive.
func (s *Service) UpdateScenarioProgress(ctx context.Context, email string, scenarioID model.ScenarioID, update model.ProgressUpdate) (*model.ProgressEntry, error) {
	if !s.knownScenario(scenarioID) {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownScenario, scenarioID)
	}

	var result *model.ProgressEntry
	for attempt := 0; ; attempt++ {
		ledger, err := s.EnsureAccountLedger(ctx, email)
		if err != nil {
			return nil, err
		}

		entry := ledger.Entry(scenarioID)
		if entry == nil {
			entry = &model.ProgressEntry{Status: model.StatusNotStarted}
			ledger.Scenarios[scenarioID] = entry
		}

		if update.Status != nil {
			entry.Status = *update.Status
		}
		if update.ProgressPct != nil {
			entry.ProgressPct = *update.ProgressPct
		}
		if update.SelectedChoice != nil {
			entry.SelectedChoice = *update.SelectedChoice
		}
		entry.LastUpdated = s.clock.Now()

		err = s.storage.SaveAccountLedger(ctx, ledger)
		if err == nil {
			result = entry
			break
		}
		if !errors.Is(err, model.ErrVersionConflict) || attempt >= saveRetries {
			return nil, err
		}
		s.logger.Debug("ledger save conflict, retrying",
			slog.String("email", model.NormalizeEmail(email)),
			slog.Int("attempt", attempt+1),
		)
	}

	return result, nil
}

// MarkInProgress sets a scenario to in_progress. The reported percentage
// never drops to zero once started, even if the caller passes 0, and
// never exceeds 100.
func (s *Service) MarkInProgress(ctx context.Context, email string, scenarioID model.ScenarioID, pct int) (*model.ProgressEntry, error) {
	if pct < 1 {
		pct = 1
	}
	if pct > 100 {
		pct = 100
	}
	status := model.StatusInProgress
	return s.UpdateScenarioProgress(ctx, email, scenarioID, model.ProgressUpdate{
		Status:      &status,
		ProgressPct: &pct,
	})
}

// MarkComplete sets a scenario to complete at 100%, regardless of prior state
func (s *Service) MarkComplete(ctx context.Context, email string, scenarioID model.ScenarioID) (*model.ProgressEntry, error) {
	status := model.StatusComplete
	pct := 100
	return s.UpdateScenarioProgress(ctx, email, scenarioID, model.ProgressUpdate{
		Status:      &status,
		ProgressPct: &pct,
	})
}

// SetSelectedChoice records the learner's chosen answer without touching
// status or percentage
func (s *Service) SetSelectedChoice(ctx context.Context, email string, scenarioID model.ScenarioID, choiceKey string) (*model.ProgressEntry, error) {
	return s.UpdateScenarioProgress(ctx, email, scenarioID, model.ProgressUpdate{
		SelectedChoice: &choiceKey,
	})
}

// read fetches the stored ledger, mapping not-found to nil and treating
// corruption as absent
func (s *Service) read(ctx context.Context, email string) (*model.AccountLedger, error) {
	ledger, err := s.storage.GetAccountLedger(ctx, email)
	switch {
	case err == nil:
		return ledger, nil
	case errors.Is(err, model.ErrLedgerNotFound):
		return nil, nil
	case errors.Is(err, model.ErrCorruptDocument):
		s.logger.Warn("discarding corrupt ledger",
			slog.String("email", model.NormalizeEmail(email)),
			slog.String("error", err.Error()),
		)
		return nil, nil
	default:
		return nil, err
	}
}

// newLedger builds a fresh ledger with one not_started entry per scenario
func (s *Service) newLedger(email string) *model.AccountLedger {
	now := s.clock.Now()
	scenarios := make(map[model.ScenarioID]*model.ProgressEntry, len(s.scenarios))
	for _, sc := range s.scenarios {
		scenarios[sc.ID] = &model.ProgressEntry{
			Status:      model.StatusNotStarted,
			ProgressPct: 0,
			LastUpdated: now,
		}
	}
	return &model.AccountLedger{
		Email:     model.NormalizeEmail(email),
		Scenarios: scenarios,
	}
}

func (s *Service) knownScenario(id model.ScenarioID) bool {
	for _, sc := range s.scenarios {
		if sc.ID == id {
			return true
		}
	}
	return false
}
