// Package repository defines persistence for audit logs.
package repository

import (
	"context"

	"github.com/capstone-pvt/api/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	ListRecent(ctx context.Context, limit int32) ([]*domain.AuditLog, error)
}
