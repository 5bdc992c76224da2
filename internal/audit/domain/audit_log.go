// Package domain defines the audit log entity.
package domain

import "time"

// Actions recorded by the auth core.
const (
	ActionLogin        = "login"
	ActionLoginFailure = "login_failure"
	ActionLogout       = "logout"
	ActionLogoutAll    = "logout_all"
	ActionTokenRefresh = "token_refresh"
	ActionRegister     = "user_register"
	ActionRoleCreate   = "role_create"
	ActionRoleUpdate   = "role_update"
	ActionRoleDelete   = "role_delete"
)

// AuditLog represents one audit event. UserID may be empty for events with no
// resolved account (e.g. a failed login for an unknown email).
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
