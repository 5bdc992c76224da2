// Package repository defines persistence for roles.
package repository

import (
	"context"

	"github.com/capstone-pvt/api/internal/role/domain"
)

// Repository defines persistence for roles. ListByIDs and ListByNames return
// roles with their Permissions expanded; lookups return (nil, nil) when no
// row matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Role, error)
	ListByNames(ctx context.Context, names []string) ([]*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Create(ctx context.Context, r *domain.Role) error
	Update(ctx context.Context, r *domain.Role) error
	Delete(ctx context.Context, id string) error
}
