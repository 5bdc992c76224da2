// Package domain defines the session entity.
package domain

import "time"

// DeviceInfo is advisory metadata about the client that opened the session.
// It never participates in validation.
type DeviceInfo struct {
	UserAgent string
	IP        string
	Browser   string
	OS        string
}

// Session is one logged-in device/browser instance and the unit of
// revocation. RefreshTokenHash is a salted one-way hash; the raw refresh
// token is never stored. IsValid flips to false on logout, re-login, or
// forced sign-out and never returns to true.
type Session struct {
	ID               string
	UserID           string
	RefreshTokenHash string
	Device           DeviceInfo
	IsValid          bool
	ExpiresAt        time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Expired reports whether the session is past its expiry at the given time.
// Expiry is evaluated on read; there is no stored expired state.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
