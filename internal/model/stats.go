package model

// OrgStats is the organization-wide completion aggregate.
// Derived on demand from the ledger and roster; never persisted.
type OrgStats struct {
	Enrolled      int `json:"enrolled"`
	CompletedAll  int `json:"completed_all"`
	InProgress    int `json:"in_progress"`
	NotStarted    int `json:"not_started"`
	CompletionPct int `json:"completion_pct"`
}

// Team row display states
const (
	TeamStateNotStarted = "Not started"
	TeamStateInProgress = "In progress"
	TeamStateCompleted  = "Completed"
)

// TeamRow is one direct report's completion summary on a manager dashboard
type TeamRow struct {
	User  string `json:"user"`
	Email string `json:"email"`
	Pct   int    `json:"pct"`
	State string `json:"state"`
}
