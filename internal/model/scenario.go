package model

// ScenarioID identifies one fixed training exercise
type ScenarioID string

// Scenario is a static catalog entry; never created or mutated at runtime.
// Choices are the opaque keys of the scenario's mutually exclusive
// response options.
type Scenario struct {
	ID           ScenarioID `json:"id"`
	Title        string     `json:"title"`
	DurationMins int        `json:"duration_mins"`
	Perspectives int        `json:"perspectives"`
	Choices      []string   `json:"choices"`
}

// RosterEntry is a static org roster record used for role validation
// and team grouping
type RosterEntry struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	TeamID    string `json:"team_id,omitempty"`
	ManagerID string `json:"manager_id,omitempty"`
}
