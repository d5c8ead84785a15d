package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Account:
		o.printAccount(v)
	case AuthResult:
		o.printAuthResult(v)
	case ScenarioList:
		o.printScenarioList(v)
	case Ledger:
		o.printLedger(v)
	case ProgressEntry:
		o.printProgressEntry(v)
	case OrgStats:
		o.printOrgStats(v)
	case TeamStats:
		o.printTeamStats(v)
	case Notes:
		fmt.Println(v.Notes)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printAccount(a Account) {
	fmt.Printf("%s <%s> (%s)\n", a.Name, a.Email, a.Role)
}

func (o *Output) printAuthResult(r AuthResult) {
	o.printAccount(r.Account)
	fmt.Printf("Session token saved\n")
}

func (o *Output) printScenarioList(l ScenarioList) {
	for _, s := range l.Scenarios {
		fmt.Printf("%-14s %s (%d min, %d perspectives)\n", s.ID, s.Title, s.DurationMins, s.Perspectives)
	}
}

func (o *Output) printLedger(l Ledger) {
	for _, e := range l.Scenarios {
		choice := ""
		if e.SelectedChoice != "" {
			choice = fmt.Sprintf("  choice=%s", e.SelectedChoice)
		}
		fmt.Printf("%-14s %-12s %3d%%%s\n", e.ScenarioID, e.Status, e.ProgressPct, choice)
	}
}

func (o *Output) printProgressEntry(e ProgressEntry) {
	fmt.Printf("%s: %s %d%% (updated %s)\n",
		e.ScenarioID, e.Status, e.ProgressPct, e.LastUpdated.Format(time.RFC3339))
}

func (o *Output) printOrgStats(s OrgStats) {
	fmt.Printf("Enrolled:      %d\n", s.Enrolled)
	fmt.Printf("Completed all: %d\n", s.CompletedAll)
	fmt.Printf("In progress:   %d\n", s.InProgress)
	fmt.Printf("Not started:   %d\n", s.NotStarted)
	fmt.Printf("Completion:    %d%%\n", s.CompletionPct)
}

func (o *Output) printTeamStats(s TeamStats) {
	if len(s.Team) == 0 {
		fmt.Println("No direct reports")
		return
	}
	for _, row := range s.Team {
		fmt.Printf("%-20s %3d%%  %s\n", row.User, row.Pct, row.State)
	}
}

// Account response type (matches API)
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult combines account and token
type AuthResult struct {
	Account      Account `json:"account"`
	SessionToken string  `json:"session_token"`
}

// Scenario response type
type Scenario struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	DurationMins int      `json:"duration_mins"`
	Perspectives int      `json:"perspectives"`
	Choices      []string `json:"choices"`
}

// ScenarioList response type
type ScenarioList struct {
	Scenarios []Scenario `json:"scenarios"`
}

// ProgressEntry response type
type ProgressEntry struct {
	ScenarioID     string    `json:"scenario_id"`
	Status         string    `json:"status"`
	ProgressPct    int       `json:"progress_pct"`
	SelectedChoice string    `json:"selected_choice,omitempty"`
	LastUpdated    time.Time `json:"last_updated"`
}

// Ledger response type
type Ledger struct {
	Email     string          `json:"email"`
	Scenarios []ProgressEntry `json:"scenarios"`
}

// OrgStats response type
type OrgStats struct {
	Enrolled      int `json:"enrolled"`
	CompletedAll  int `json:"completed_all"`
	InProgress    int `json:"in_progress"`
	NotStarted    int `json:"not_started"`
	CompletionPct int `json:"completion_pct"`
}

// TeamRow response type
type TeamRow struct {
	User  string `json:"user"`
	Email string `json:"email"`
	Pct   int    `json:"pct"`
	State string `json:"state"`
}

// TeamStats response type
type TeamStats struct {
	Team []TeamRow `json:"team"`
}

// Notes response type
type Notes struct {
	Notes string `json:"notes"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}
