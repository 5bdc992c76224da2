// Package service implements the session store: creation under the
// single-active-session policy and hash-based refresh token validation.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/capstone-pvt/api/internal/security"
	"github.com/capstone-pvt/api/internal/session/domain"
	"github.com/capstone-pvt/api/internal/session/repository"
)

// Store manages session records. Because refresh tokens are stored only as
// salted one-way hashes, token lookups are comparison scans: bounded to one
// user's sessions on the hot path (ValidateRefreshToken) and falling back to
// an all-sessions scan only for logout-by-token, where the caller does not
// know the user.
type Store struct {
	repo repository.Repository
	now  func() time.Time
}

// NewStore returns a Store backed by the given repository.
func NewStore(repo repository.Repository) *Store {
	return &Store{repo: repo, now: time.Now}
}

// WithTimeFunc overrides the store's clock. Intended for tests.
func (s *Store) WithTimeFunc(now func() time.Time) *Store {
	s.now = now
	return s
}

// Create hashes the raw refresh token, invalidates every existing valid
// session for the user, inserts the new record, and returns its id. This is
// the sole place sessions are invalidated because of a new login.
//
// Invalidate-then-insert is two statements, not one atomic write: two
// near-simultaneous logins can each survive the other's invalidation for a
// moment. The user record's current_session_id, written by the caller after
// this returns, is what settles the winner; the login that completes last
// is the one whose access tokens keep validating.
func (s *Store) Create(ctx context.Context, userID, rawRefreshToken string, device domain.DeviceInfo, expiresAt time.Time) (string, error) {
	hash, err := security.HashRefreshToken(rawRefreshToken)
	if err != nil {
		return "", err
	}
	if err := s.repo.InvalidateAllByUser(ctx, userID); err != nil {
		return "", err
	}
	now := s.now().UTC()
	sess := &domain.Session{
		ID:               uuid.New().String(),
		UserID:           userID,
		RefreshTokenHash: hash,
		Device:           device,
		IsValid:          true,
		ExpiresAt:        expiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, sess); err != nil {
		return "", err
	}
	return sess.ID, nil
}

// ValidateRefreshToken reports whether the raw token matches one of the
// user's valid, unexpired sessions. Expiry is checked against the clock here,
// never trusted to the stored flag alone.
func (s *Store) ValidateRefreshToken(ctx context.Context, userID, rawRefreshToken string) (bool, error) {
	sessions, err := s.repo.ListValidByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	now := s.now()
	for _, sess := range sessions {
		if sess.Expired(now) {
			continue
		}
		if security.CompareRefreshToken(rawRefreshToken, sess.RefreshTokenHash) {
			return true, nil
		}
	}
	return false, nil
}

// InvalidateByToken invalidates the valid session whose hash matches the raw
// token. Used by logout, where the caller does not know which user issued the
// cookie. No match is a no-op, not an error.
func (s *Store) InvalidateByToken(ctx context.Context, rawRefreshToken string) error {
	sessions, err := s.repo.ListAllValid(ctx)
	if err != nil {
		return err
	}
	for _, sess := range sessions {
		if security.CompareRefreshToken(rawRefreshToken, sess.RefreshTokenHash) {
			return s.repo.Invalidate(ctx, sess.ID)
		}
	}
	return nil
}

// InvalidateAll marks every session for the user invalid ("sign out everywhere").
func (s *Store) InvalidateAll(ctx context.Context, userID string) error {
	return s.repo.InvalidateAllByUser(ctx, userID)
}
