package permissions_test

import (
	"context"
	"net/http"
	"testing"

	"orzu/permissions"
	"orzu/shared/constant"
	"orzu/shared/failure"
)

func TestCan(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		capability permissions.Capability
		want       bool
	}{
		{name: "administrator can delete", role: constant.RoleAdministrator, capability: permissions.CapabilityDelete, want: true},
		{name: "administrator can change settings", role: constant.RoleAdministrator, capability: permissions.CapabilitySettings, want: true},
		{name: "manager cannot delete foreign bookings", role: constant.RoleManager, capability: permissions.CapabilityDelete, want: false},
		{name: "manager can delete own", role: constant.RoleManager, capability: permissions.CapabilityDeleteOwn, want: true},
		{name: "manager can view analytics", role: constant.RoleManager, capability: permissions.CapabilityAnalytics, want: true},
		{name: "operator can create", role: constant.RoleOperator, capability: permissions.CapabilityCreate, want: true},
		{name: "operator cannot delete", role: constant.RoleOperator, capability: permissions.CapabilityDelete, want: false},
		{name: "operator cannot view analytics", role: constant.RoleOperator, capability: permissions.CapabilityAnalytics, want: false},
		{name: "viewer can read", role: constant.RoleViewer, capability: permissions.CapabilityRead, want: true},
		{name: "viewer cannot create", role: constant.RoleViewer, capability: permissions.CapabilityCreate, want: false},
		{name: "unknown role holds nothing", role: "intruder", capability: permissions.CapabilityRead, want: false},
		{name: "empty role holds nothing", role: "", capability: permissions.CapabilityRead, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := permissions.Can(tt.role, tt.capability); got != tt.want {
				t.Errorf("expected Can(%q, %q) to be %v, got %v", tt.role, tt.capability, tt.want, got)
			}
		})
	}
}

func TestRequire(t *testing.T) {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserRole, constant.RoleViewer)

	if err := permissions.Require(ctx, permissions.CapabilityRead); err != nil {
		t.Errorf("expected viewer read to be allowed, got %v", err)
	}

	err := permissions.Require(ctx, permissions.CapabilityDelete)
	if err == nil {
		t.Fatal("expected viewer delete to be denied")
	}

	if failure.GetCode(err) != http.StatusForbidden {
		t.Errorf("expected forbidden code, got %d", failure.GetCode(err))
	}

	if err := permissions.Require(context.Background(), permissions.CapabilityRead); err == nil {
		t.Error("expected missing role to be denied")
	}
}

func TestRoles(t *testing.T) {
	roles := permissions.Roles(permissions.CapabilityAnalytics)

	want := []string{constant.RoleAdministrator, constant.RoleManager}
	if len(roles) != len(want) {
		t.Fatalf("expected %d roles, got %d", len(want), len(roles))
	}

	for i, role := range want {
		if roles[i] != role {
			t.Errorf("expected role %s at index %d, got %s", role, i, roles[i])
		}
	}
}

func TestGet(t *testing.T) {
	data := permissions.Get()
	if data == nil {
		t.Fatal("expected embedded permissions to load")
	}

	login := data.FindPermissions("/v1/auth/login", "POST")
	if !login.Skip {
		t.Error("expected login endpoint to skip auth")
	}

	deleteBooking := data.FindPermissions("/v1/bookings/{id}", "DELETE")
	if len(deleteBooking.Permissions) == 0 {
		t.Fatal("expected delete booking endpoint to restrict roles")
	}

	unknown := data.FindPermissions("/v1/nope", "GET")
	if unknown.Path != "" {
		t.Error("expected unknown endpoint to return empty permission")
	}
}
