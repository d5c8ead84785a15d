package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/perspectra/portal/internal/catalog"
	"github.com/perspectra/portal/internal/dependencies/mocks"
	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/services/ledger"
	"github.com/perspectra/portal/internal/storage/memory"
	"github.com/perspectra/portal/internal/testutil"
)

var options = []string{"speak-up", "wait-and-check-in", "raise-with-manager"}

type SelectionSuite struct {
	suite.Suite
	ledgers *ledger.Service
	ctx     context.Context
}

func TestSelectionSuite(t *testing.T) {
	suite.Run(t, new(SelectionSuite))
}

func (s *SelectionSuite) SetupTest() {
	clk := mocks.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s.ledgers = ledger.New(memory.New(), catalog.Scenarios(), clk, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *SelectionSuite) TestStartsUnselected() {
	sel := NewSelection("interruption", options, "")

	s.Empty(sel.Selected())
	s.False(sel.Confirmable())
}

func (s *SelectionSuite) TestStartsWithSavedChoice() {
	sel := NewSelection("interruption", options, "speak-up")

	s.Equal("speak-up", sel.Selected())
	s.True(sel.Confirmable())
}

func (s *SelectionSuite) TestUnknownSavedChoiceIgnored() {
	sel := NewSelection("interruption", options, "stale-option")

	s.Empty(sel.Selected())
	s.False(sel.Confirmable())
}

func (s *SelectionSuite) TestSelect() {
	sel := NewSelection("interruption", options, "")

	s.Require().NoError(sel.Select("wait-and-check-in"))
	s.Equal("wait-and-check-in", sel.Selected())
	s.True(sel.Confirmable())
}

func (s *SelectionSuite) TestSelectReplacesPrevious() {
	sel := NewSelection("interruption", options, "speak-up")

	s.Require().NoError(sel.Select("raise-with-manager"))
	s.Equal("raise-with-manager", sel.Selected())
}

func (s *SelectionSuite) TestSelectUnknownOption() {
	sel := NewSelection("interruption", options, "")

	err := sel.Select("not-an-option")
	s.ErrorIs(err, ErrUnknownOption)
	s.Empty(sel.Selected())
}

func (s *SelectionSuite) TestSelectUnknownOptionKeepsPrevious() {
	sel := NewSelection("interruption", options, "speak-up")

	err := sel.Select("not-an-option")
	s.ErrorIs(err, ErrUnknownOption)
	s.Equal("speak-up", sel.Selected())
}

func (s *SelectionSuite) TestConfirmWithoutSelection() {
	sel := NewSelection("interruption", options, "")

	_, err := sel.Confirm(s.ctx, s.ledgers, "liam.park@perspectra.example")
	s.ErrorIs(err, ErrNoSelection)
}

func (s *SelectionSuite) TestConfirmPersistsChoice() {
	sel := NewSelection("interruption", options, "")
	s.Require().NoError(sel.Select("speak-up"))

	entry, err := sel.Confirm(s.ctx, s.ledgers, "liam.park@perspectra.example")
	s.Require().NoError(err)
	s.Equal("speak-up", entry.SelectedChoice)

	stored, err := s.ledgers.GetProgress(s.ctx, "liam.park@perspectra.example")
	s.Require().NoError(err)
	s.Equal("speak-up", stored.Entry("interruption").SelectedChoice)
}

func (s *SelectionSuite) TestConfirmLeavesProgressUntouched() {
	_, err := s.ledgers.MarkInProgress(s.ctx, "liam.park@perspectra.example", "interruption", 60)
	s.Require().NoError(err)

	sel := NewSelection("interruption", options, "")
	s.Require().NoError(sel.Select("speak-up"))

	entry, err := sel.Confirm(s.ctx, s.ledgers, "liam.park@perspectra.example")
	s.Require().NoError(err)
	s.Equal(model.StatusInProgress, entry.Status)
	s.Equal(60, entry.ProgressPct)
}
