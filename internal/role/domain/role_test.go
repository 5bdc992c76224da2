package domain

import "testing"

func TestRole_CanManage(t *testing.T) {
	superAdmin := &Role{Name: "super_admin", Hierarchy: 1}
	admin := &Role{Name: "admin", Hierarchy: 2}
	manager := &Role{Name: "manager", Hierarchy: 3}

	if !superAdmin.CanManage(admin) {
		t.Error("hierarchy 1 should manage hierarchy 2")
	}
	if !admin.CanManage(manager) {
		t.Error("hierarchy 2 should manage hierarchy 3")
	}
	if manager.CanManage(admin) {
		t.Error("hierarchy 3 should not manage hierarchy 2")
	}
	if admin.CanManage(admin) {
		t.Error("a role should not manage its own tier")
	}
	if admin.CanManage(nil) {
		t.Error("nil target should not be manageable")
	}
}

func TestRole_Validate(t *testing.T) {
	valid := &Role{Name: "hr", DisplayName: "HR", Hierarchy: 3}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid role: %v", err)
	}

	cases := []struct {
		name string
		role *Role
	}{
		{"missing name", &Role{DisplayName: "HR", Hierarchy: 3}},
		{"missing display name", &Role{Name: "hr", Hierarchy: 3}},
		{"zero hierarchy", &Role{Name: "hr", DisplayName: "HR"}},
		{"negative hierarchy", &Role{Name: "hr", DisplayName: "HR", Hierarchy: -1}},
	}
	for _, tc := range cases {
		if err := tc.role.Validate(); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
