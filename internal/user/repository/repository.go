// Package repository defines persistence for users.
package repository

import (
	"context"
	"time"

	"github.com/capstone-pvt/api/internal/user/domain"
)

// Repository defines persistence for users. Lookups return (nil, nil) when no
// row matches; errors are reserved for database failures.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByEmailWithPassword is the credential path: the returned user has
	// PasswordHash populated.
	GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time, ip string) error
	// UpdateCurrentSessionID sets the denormalized pointer to the user's
	// active session. Empty sessionID clears it.
	UpdateCurrentSessionID(ctx context.Context, id string, sessionID string) error
	AssignRoles(ctx context.Context, id string, roleIDs []string) error
}
