// Package domain defines the core user entity.
package domain

import (
	"errors"
	"time"
)

// User is the platform account entity. PasswordHash is only populated by
// credential-path lookups (GetByEmailWithPassword); every other read leaves
// it empty. CurrentSessionID mirrors the id of the user's single valid
// session, or is empty when none exists; per-request validation compares it
// against the session id embedded in the access token.
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	FirstName        string
	LastName         string
	IsActive         bool
	RoleIDs          []string
	CurrentSessionID string
	LastLoginAt      *time.Time
	LastLoginIP      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}
