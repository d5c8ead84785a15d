package catalog

import "github.com/perspectra/portal/internal/model"

// scenarios is the fixed training catalog. Order matters for display.
var scenarios = []model.Scenario{
	{
		ID:           "interruption",
		Title:        "The Interrupted Meeting",
		DurationMins: 10,
		Perspectives: 3,
		Choices:      []string{"speak-up", "wait-and-check-in", "raise-with-manager"},
	},
	{
		ID:           "attribution",
		Title:        "Credit Where Credit Is Due",
		DurationMins: 12,
		Perspectives: 2,
		Choices:      []string{"credit-publicly", "let-it-pass", "discuss-privately"},
	},
	{
		ID:           "flexibility",
		Title:        "The Flexible Hours Request",
		DurationMins: 15,
		Perspectives: 3,
		Choices:      []string{"approve-trial", "decline-policy", "escalate-to-hr"},
	},
	{
		ID:           "onboarding",
		Title:        "First Week on the Team",
		DurationMins: 10,
		Perspectives: 2,
		Choices:      []string{"assign-buddy", "self-serve-docs", "weekly-checkins"},
	},
}

// Scenarios returns the full catalog in display order
func Scenarios() []model.Scenario {
	out := make([]model.Scenario, len(scenarios))
	copy(out, scenarios)
	return out
}

// ScenarioByID looks up a catalog entry
func ScenarioByID(id model.ScenarioID) (model.Scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return model.Scenario{}, false
}

// ScenarioCount returns the number of catalog scenarios
func ScenarioCount() int {
	return len(scenarios)
}
