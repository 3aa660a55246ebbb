package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithRoles(roles ...string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRolesKey, roles)
	req = req.WithContext(ctx)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestRequireRole_Allowed(t *testing.T) {
	c := contextWithRoles(RoleUser)
	if err := RequireRole(RoleUser)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireRole_AdminPassesAll(t *testing.T) {
	c := contextWithRoles(RoleAdmin)
	if err := RequireRole("auditor")(okHandler)(c); err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
	}{
		{"wrong role", []string{RoleUser}},
		{"no roles", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := contextWithRoles(tt.roles...)
			err := RequireRole(RoleAdmin)(okHandler)(c)
			if err == nil {
				t.Fatal("expected error")
			}
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected echo.HTTPError, got %T", err)
			}
			if httpErr.Code != http.StatusForbidden {
				t.Errorf("expected 403, got %d", httpErr.Code)
			}
		})
	}
}

func TestHasRole(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserRolesKey, []string{RoleUser})
	if !HasRole(ctx, RoleUser, RoleAdmin) {
		t.Error("expected user role to match")
	}
	if HasRole(ctx, RoleAdmin) {
		t.Error("did not expect user to hold admin")
	}
	if HasRole(context.Background(), RoleUser) {
		t.Error("did not expect anonymous caller to hold a role")
	}
}
