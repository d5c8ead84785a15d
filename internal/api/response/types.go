package response

import (
	"sort"
	"time"

	"github.com/perspectra/portal/internal/model"
)

// Account represents an account in API responses
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountFromModel converts a model.Account to a response Account
func AccountFromModel(a model.Account) Account {
	return Account{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      string(a.Role),
		CreatedAt: a.CreatedAt,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Account      Account `json:"account"`
	SessionToken string  `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *model.Session) AuthResponse {
	return AuthResponse{
		Account:      AccountFromModel(s.Account),
		SessionToken: s.Token,
	}
}

// Scenario represents a catalog entry
type Scenario struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	DurationMins int      `json:"duration_mins"`
	Perspectives int      `json:"perspectives"`
	Choices      []string `json:"choices"`
}

// ScenarioFromModel converts model.Scenario
func ScenarioFromModel(s model.Scenario) Scenario {
	return Scenario{
		ID:           string(s.ID),
		Title:        s.Title,
		DurationMins: s.DurationMins,
		Perspectives: s.Perspectives,
		Choices:      s.Choices,
	}
}

// ScenarioList is the catalog response
type ScenarioList struct {
	Scenarios []Scenario `json:"scenarios"`
}

// ProgressEntry represents one scenario's progress
type ProgressEntry struct {
	ScenarioID     string    `json:"scenario_id"`
	Status         string    `json:"status"`
	ProgressPct    int       `json:"progress_pct"`
	SelectedChoice string    `json:"selected_choice,omitempty"`
	LastUpdated    time.Time `json:"last_updated"`
}

// ProgressEntryFromModel converts a ledger entry
func ProgressEntryFromModel(id model.ScenarioID, e *model.ProgressEntry) ProgressEntry {
	return ProgressEntry{
		ScenarioID:     string(id),
		Status:         string(e.Status),
		ProgressPct:    e.ProgressPct,
		SelectedChoice: e.SelectedChoice,
		LastUpdated:    e.LastUpdated,
	}
}

// Ledger is an account's full progress document
type Ledger struct {
	Email     string          `json:"email"`
	Scenarios []ProgressEntry `json:"scenarios"`
}

// LedgerFromModel converts model.AccountLedger, ordering entries by
// scenario ID for stable output
func LedgerFromModel(l *model.AccountLedger) Ledger {
	entries := make([]ProgressEntry, 0, len(l.Scenarios))
	for id, e := range l.Scenarios {
		entries = append(entries, ProgressEntryFromModel(id, e))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ScenarioID < entries[j].ScenarioID
	})
	return Ledger{
		Email:     l.Email,
		Scenarios: entries,
	}
}

// OrgStats is the organization completion aggregate
type OrgStats struct {
	Enrolled      int `json:"enrolled"`
	CompletedAll  int `json:"completed_all"`
	InProgress    int `json:"in_progress"`
	NotStarted    int `json:"not_started"`
	CompletionPct int `json:"completion_pct"`
}

// OrgStatsFromModel converts model.OrgStats
func OrgStatsFromModel(s model.OrgStats) OrgStats {
	return OrgStats(s)
}

// TeamRow is one direct report's summary
type TeamRow struct {
	User  string `json:"user"`
	Email string `json:"email"`
	Pct   int    `json:"pct"`
	State string `json:"state"`
}

// TeamStats is the manager dashboard response
type TeamStats struct {
	Team []TeamRow `json:"team"`
}

// TeamStatsFromModel converts the team rows
func TeamStatsFromModel(rows []model.TeamRow) TeamStats {
	team := make([]TeamRow, len(rows))
	for i, r := range rows {
		team[i] = TeamRow(r)
	}
	return TeamStats{Team: team}
}

// Notes is the per-account notes document
type Notes struct {
	Notes string `json:"notes"`
}

// Preferences is the per-account accessibility preference document
type Preferences struct {
	Preferences map[string]bool `json:"preferences"`
}
