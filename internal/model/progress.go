package model

import "time"

// ProgressStatus is the per-scenario completion state
type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusComplete   ProgressStatus = "complete"
)

// ProgressEntry records one account's state for one scenario.
// Entries are never deleted, only updated. StatusComplete implies
// ProgressPct == 100.
type ProgressEntry struct {
	Status         ProgressStatus `json:"status"`
	ProgressPct    int            `json:"progress_pct"`
	SelectedChoice string         `json:"selected_choice,omitempty"`
	LastUpdated    time.Time      `json:"last_updated"`
}

// Started reports whether the entry has moved past not_started
func (e *ProgressEntry) Started() bool {
	return e.Status == StatusInProgress || e.Status == StatusComplete
}

// AccountLedger is the full progress document for one account.
// Version is an optimistic-concurrency token: storage rejects a save
// whose Version does not match the stored document and bumps it on
// every successful save.
type AccountLedger struct {
	Email     string                        `json:"email"`
	Scenarios map[ScenarioID]*ProgressEntry `json:"scenarios"`
	Version   int64                         `json:"version"`
}

// Entry returns the progress entry for a scenario, or nil if the ledger
// has no entry for it
func (l *AccountLedger) Entry(id ScenarioID) *ProgressEntry {
	if l == nil || l.Scenarios == nil {
		return nil
	}
	return l.Scenarios[id]
}

// ProgressUpdate is a partial update merged into a progress entry.
// Nil fields are left untouched.
type ProgressUpdate struct {
	Status         *ProgressStatus
	ProgressPct    *int
	SelectedChoice *string
}
