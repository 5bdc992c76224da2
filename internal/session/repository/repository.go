// Package repository defines persistence for sessions.
package repository

import (
	"context"

	"github.com/capstone-pvt/api/internal/session/domain"
)

// Repository defines persistence for sessions. Rows are only ever inserted
// and marked invalid here; hard deletion belongs to retention cleanup.
type Repository interface {
	Insert(ctx context.Context, s *domain.Session) error
	ListValidByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	ListAllValid(ctx context.Context) ([]*domain.Session, error)
	Invalidate(ctx context.Context, id string) error
	InvalidateAllByUser(ctx context.Context, userID string) error
}
