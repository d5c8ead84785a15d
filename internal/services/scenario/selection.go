package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/services/ledger"
)

// Errors
var (
	ErrUnknownOption = errors.New("unknown choice option")
	ErrNoSelection   = errors.New("no option selected")
)

// Selection models the single-selection choice control on a scenario
// page: at most one of N mutually exclusive options is selected, and
// confirmation is only possible once something is. There is no
// user-facing way to clear a selection within a visit.
type Selection struct {
	scenarioID model.ScenarioID
	options    []string
	selected   string
}

// NewSelection builds the control for a scenario's options. If the
// account previously saved a choice that is still a known option, the
// control starts in that selected state.
func NewSelection(scenarioID model.ScenarioID, options []string, savedChoice string) *Selection {
	sel := &Selection{
		scenarioID: scenarioID,
		options:    options,
	}
	if savedChoice != "" && sel.knownOption(savedChoice) {
		sel.selected = savedChoice
	}
	return sel
}

// Select picks one option, deselecting any other
func (s *Selection) Select(option string) error {
	if !s.knownOption(option) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}
	s.selected = option
	return nil
}

// Selected returns the current choice, or empty if nothing is selected
func (s *Selection) Selected() string {
	return s.selected
}

// Confirmable reports whether the confirmation action is enabled
func (s *Selection) Confirmable() bool {
	return s.selected != ""
}

// Confirm persists the current choice for the account. Confirming with
// no selection is rejected; status and percentage are untouched.
func (s *Selection) Confirm(ctx context.Context, ledgers *ledger.Service, email string) (*model.ProgressEntry, error) {
	if !s.Confirmable() {
		return nil, ErrNoSelection
	}
	return ledgers.SetSelectedChoice(ctx, email, s.scenarioID, s.selected)
}

func (s *Selection) knownOption(option string) bool {
	for _, o := range s.options {
		if o == option {
			return true
		}
	}
	return false
}
