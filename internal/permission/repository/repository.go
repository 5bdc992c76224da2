// Package repository defines persistence for permissions.
package repository

import (
	"context"

	"github.com/capstone-pvt/api/internal/permission/domain"
)

// Repository defines persistence for permissions.
type Repository interface {
	GetByName(ctx context.Context, name string) (*domain.Permission, error)
	List(ctx context.Context) ([]domain.Permission, error)
	Create(ctx context.Context, p *domain.Permission) error
}
