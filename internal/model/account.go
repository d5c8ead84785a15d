package model

import (
	"strings"
	"time"
)

// Role governs dashboard routing and access gating
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleManager    Role = "manager"
	RoleHR         Role = "hr"
	RoleIndividual Role = "individual"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleHR, RoleIndividual:
		return true
	}
	return false
}

// TracksProgress reports whether accounts with this role own a progress ledger
func (r Role) TracksProgress() bool {
	return r == RoleEmployee || r == RoleIndividual
}

// Account is the identity record produced by the auth service after login
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is an authenticated account bound to a token
type Session struct {
	Token     string    `json:"token"`
	Account   Account   `json:"account"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NormalizeEmail lowercases an email for case-insensitive comparison.
// Emails are unique per account and every ledger/notes/prefs document
// is keyed by the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
