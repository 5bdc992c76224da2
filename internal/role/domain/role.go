// Package domain defines the role entity.
package domain

import (
	"errors"
	"time"

	permissiondomain "github.com/capstone-pvt/api/internal/permission/domain"
)

// Role groups permissions under a name. Hierarchy orders roles by seniority:
// a lower value is more senior. Hierarchy gates role management only; it
// plays no part in permission resolution.
type Role struct {
	ID            string
	Name          string
	DisplayName   string
	Description   string
	Hierarchy     int
	IsSystemRole  bool
	PermissionIDs []string
	Permissions   []permissiondomain.Permission
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanManage reports whether this role outranks target, i.e. whether a holder
// of this role may create, alter, or delete the target role.
func (r *Role) CanManage(target *Role) bool {
	if target == nil {
		return false
	}
	return r.Hierarchy < target.Hierarchy
}

// Validate validates the role for persistence. Returns an error describing the first validation failure.
func (r *Role) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.DisplayName == "" {
		return errors.New("display name is required")
	}
	if r.Hierarchy < 1 {
		return errors.New("hierarchy must be a positive integer")
	}
	return nil
}
