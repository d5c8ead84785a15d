package stats

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/storage"
)

// Service derives completion statistics from the progress ledger, the
// static roster and the scenario catalog. It never mutates the ledger:
// a roster member with no ledger at all simply counts as not started.
type Service struct {
	storage   storage.Storage
	roster    []model.RosterEntry
	scenarios []model.Scenario
	logger    *slog.Logger
}

// New creates a new stats Service over the given roster and catalog
func New(storage storage.Storage, roster []model.RosterEntry, scenarios []model.Scenario, logger *slog.Logger) *Service {
	return &Service{
		storage:   storage,
		roster:    roster,
		scenarios: scenarios,
		logger:    logger,
	}
}

// ComputeOrgStats classifies every rostered employee as completed-all,
// in-progress, or not-started and reports the org-wide completion rate
func (s *Service) ComputeOrgStats(ctx context.Context) (model.OrgStats, error) {
	stats := model.OrgStats{}

	for _, member := range s.roster {
		if member.Role != model.RoleEmployee {
			continue
		}
		stats.Enrolled++

		ledger, err := s.readLedger(ctx, member.Email)
		if err != nil {
			return model.OrgStats{}, err
		}

		switch s.classify(ledger) {
		case model.StatusComplete:
			stats.CompletedAll++
		case model.StatusInProgress:
			stats.InProgress++
		default:
			stats.NotStarted++
		}
	}

	stats.CompletionPct = roundPct(stats.CompletedAll, max(stats.Enrolled, 1))
	return stats, nil
}

// ComputeTeamStats reports one row per employee whose ManagerID matches.
// A manager with no reports gets an empty list, not an error.
func (s *Service) ComputeTeamStats(ctx context.Context, managerID string) ([]model.TeamRow, error) {
	rows := []model.TeamRow{}

	for _, member := range s.roster {
		if member.Role != model.RoleEmployee || member.ManagerID != managerID {
			continue
		}

		ledger, err := s.readLedger(ctx, member.Email)
		if err != nil {
			return nil, err
		}

		completed := 0
		for _, sc := range s.scenarios {
			if entry := ledger.Entry(sc.ID); entry != nil && entry.Status == model.StatusComplete {
				completed++
			}
		}

		row := model.TeamRow{
			User:  member.Name,
			Email: member.Email,
			Pct:   roundPct(completed, max(len(s.scenarios), 1)),
		}
		switch s.classify(ledger) {
		case model.StatusComplete:
			row.State = model.TeamStateCompleted
		case model.StatusInProgress:
			row.State = model.TeamStateInProgress
		default:
			row.State = model.TeamStateNotStarted
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// classify applies the three-way classification: complete iff every
// catalog scenario is complete, else in-progress if anything has started,
// else not-started. A nil ledger is not started.
func (s *Service) classify(ledger *model.AccountLedger) model.ProgressStatus {
	if ledger == nil {
		return model.StatusNotStarted
	}

	completedAll := true
	anyStarted := false
	for _, sc := range s.scenarios {
		entry := ledger.Entry(sc.ID)
		if entry == nil || entry.Status != model.StatusComplete {
			completedAll = false
		}
		if entry != nil && entry.Started() {
			anyStarted = true
		}
	}

	switch {
	case completedAll && len(s.scenarios) > 0:
		return model.StatusComplete
	case anyStarted:
		return model.StatusInProgress
	default:
		return model.StatusNotStarted
	}
}

// readLedger fetches a ledger, mapping absence and corruption to nil
func (s *Service) readLedger(ctx context.Context, email string) (*model.AccountLedger, error) {
	ledger, err := s.storage.GetAccountLedger(ctx, email)
	switch {
	case err == nil:
		return ledger, nil
	case errors.Is(err, model.ErrLedgerNotFound):
		return nil, nil
	case errors.Is(err, model.ErrCorruptDocument):
		s.logger.Warn("skipping corrupt ledger in aggregation",
			slog.String("email", model.NormalizeEmail(email)),
		)
		return nil, nil
	default:
		return nil, err
	}
}

func roundPct(part, whole int) int {
	return int(math.Round(100 * float64(part) / float64(whole)))
}
