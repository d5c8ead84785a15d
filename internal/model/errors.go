package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Ledger errors
	ErrLedgerNotFound  = errors.New("ledger not found")
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrVersionConflict = errors.New("ledger version conflict")

	// Notes / preferences errors
	ErrNotesNotFound = errors.New("notes not found")
	ErrPrefsNotFound = errors.New("preferences not found")

	// Roster errors
	ErrUnknownRosterMember = errors.New("not a roster member")

	// Storage errors
	ErrCorruptDocument = errors.New("corrupt stored document")
)
