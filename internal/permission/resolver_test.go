package permission

import (
	"reflect"
	"testing"

	permissiondomain "github.com/capstone-pvt/api/internal/permission/domain"
	roledomain "github.com/capstone-pvt/api/internal/role/domain"
)

func role(name string, perms ...string) *roledomain.Role {
	r := &roledomain.Role{Name: name}
	for _, p := range perms {
		r.Permissions = append(r.Permissions, permissiondomain.Permission{Name: p})
	}
	return r
}

func TestResolve_UnionDeduplicated(t *testing.T) {
	roles := []*roledomain.Role{
		role("hr", "users.read", "personnel.read"),
		role("manager", "personnel.read", "personnel.update"),
	}

	got := Resolve(roles)
	want := []string{"personnel.read", "personnel.update", "users.read"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
}

func TestResolve_OrderIndependent(t *testing.T) {
	a := role("a", "users.read", "roles.read")
	b := role("b", "roles.read", "audit.read")

	fwd := Resolve([]*roledomain.Role{a, b})
	rev := Resolve([]*roledomain.Role{b, a})
	if !reflect.DeepEqual(fwd, rev) {
		t.Errorf("Resolve order-dependent: %v vs %v", fwd, rev)
	}
}

func TestResolve_Empty(t *testing.T) {
	if got := Resolve(nil); len(got) != 0 {
		t.Errorf("Resolve(nil) = %v, want empty", got)
	}
	if got := Resolve([]*roledomain.Role{nil, role("empty")}); len(got) != 0 {
		t.Errorf("Resolve with nil and permission-less roles = %v, want empty", got)
	}
}

func TestNames(t *testing.T) {
	got := Names([]*roledomain.Role{role("hr"), nil, role("manager")})
	want := []string{"hr", "manager"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
}
