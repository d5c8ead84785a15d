package redis

import (
	"fmt"

	"github.com/perspectra/portal/internal/model"
)

// Key prefix for all portal data
const keyPrefix = "perspectra"

// sessionKey returns the Redis key for a Session
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}

// ledgerKey returns the Redis key for an account's progress ledger
func ledgerKey(email string) string {
	return fmt.Sprintf("%s:ledger:%s", keyPrefix, model.NormalizeEmail(email))
}

// notesKey returns the Redis key for an account's free-text notes
func notesKey(email string) string {
	return fmt.Sprintf("%s:notes:%s", keyPrefix, model.NormalizeEmail(email))
}

// prefsKey returns the Redis key for an account's accessibility preferences
func prefsKey(email string) string {
	return fmt.Sprintf("%s:prefs:%s", keyPrefix, model.NormalizeEmail(email))
}
