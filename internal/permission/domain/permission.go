// Package domain defines the permission entity and the platform's permission catalogue.
package domain

import "time"

// Permission is a named grant in resource.action form (e.g. "users.read").
type Permission struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Permission keys known to the platform. The seed command inserts these and
// the router's guard table references them.
const (
	UsersCreate = "users.create"
	UsersRead   = "users.read"
	UsersUpdate = "users.update"
	UsersDelete = "users.delete"

	RolesCreate = "roles.create"
	RolesRead   = "roles.read"
	RolesUpdate = "roles.update"
	RolesDelete = "roles.delete"

	PermissionsRead   = "permissions.read"
	PermissionsManage = "permissions.manage"

	PersonnelCreate = "personnel.create"
	PersonnelRead   = "personnel.read"
	PersonnelUpdate = "personnel.update"
	PersonnelDelete = "personnel.delete"

	AnalyticsView   = "analytics.view"
	AnalyticsExport = "analytics.export"

	SettingsView   = "settings.view"
	SettingsManage = "settings.manage"

	AuditRead = "audit.read"
)

// Catalogue returns every permission key the platform defines, with
// descriptions, in seed order.
func Catalogue() []Permission {
	keys := []struct{ name, desc string }{
		{UsersCreate, "Create user accounts"},
		{UsersRead, "View user accounts"},
		{UsersUpdate, "Update user accounts"},
		{UsersDelete, "Delete user accounts"},
		{RolesCreate, "Create roles"},
		{RolesRead, "View roles"},
		{RolesUpdate, "Update roles"},
		{RolesDelete, "Delete roles"},
		{PermissionsRead, "View permissions"},
		{PermissionsManage, "Manage permissions"},
		{PersonnelCreate, "Create personnel records"},
		{PersonnelRead, "View personnel records"},
		{PersonnelUpdate, "Update personnel records"},
		{PersonnelDelete, "Delete personnel records"},
		{AnalyticsView, "View analytics"},
		{AnalyticsExport, "Export analytics"},
		{SettingsView, "View settings"},
		{SettingsManage, "Manage settings"},
		{AuditRead, "View audit logs"},
	}
	out := make([]Permission, 0, len(keys))
	for _, k := range keys {
		out = append(out, Permission{Name: k.name, Description: k.desc})
	}
	return out
}
