package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/app/system/authz"
)

func requestAs(u *auth.SessionUser) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	if u == nil {
		return req
	}
	return auth.WithTestUser(req, u)
}

func TestUserCtx_NoUser(t *testing.T) {
	role, name, id, ok := authz.UserCtx(requestAs(nil))
	if ok || role != "visitor" || name != "" || id != 0 {
		t.Errorf("unexpected: %q %q %d %v", role, name, id, ok)
	}
}

func TestUserCtx_InvalidIDFailsClosed(t *testing.T) {
	_, _, _, ok := authz.UserCtx(requestAs(&auth.SessionUser{ID: 0, Role: "ADMIN"}))
	if ok {
		t.Error("expected ok=false for a zero user id")
	}
}

func TestUserCtx_LowercasesRole(t *testing.T) {
	role, name, id, ok := authz.UserCtx(requestAs(&auth.SessionUser{ID: 3, Name: "Ann", Role: "ADMIN"}))
	if !ok || role != "admin" || name != "Ann" || id != 3 {
		t.Errorf("unexpected: %q %q %d %v", role, name, id, ok)
	}
}

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		user *auth.SessionUser
		want bool
	}{
		{"admin", &auth.SessionUser{ID: 1, Role: "ADMIN"}, true},
		{"user", &auth.SessionUser{ID: 1, Role: "USER"}, false},
		{"anonymous", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := authz.IsAdmin(requestAs(tc.user)); got != tc.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHasAnyRole(t *testing.T) {
	req := requestAs(&auth.SessionUser{ID: 1, Role: "USER"})
	if !authz.HasAnyRole(req, "admin", " user ") {
		t.Error("expected USER to match ' user '")
	}
	if authz.HasAnyRole(req, "admin") {
		t.Error("expected USER not to match admin")
	}
	if authz.HasAnyRole(requestAs(nil), "visitor") {
		t.Error("anonymous requests never match")
	}
}

func TestTokenAndIsSelf(t *testing.T) {
	req := requestAs(&auth.SessionUser{ID: 9, Role: "USER", Token: "tok"})
	if authz.Token(req) != "tok" {
		t.Error("expected token from session user")
	}
	if authz.Token(requestAs(nil)) != "" {
		t.Error("expected empty token when signed out")
	}
	if !authz.IsSelf(req, 9) || authz.IsSelf(req, 10) {
		t.Error("IsSelf mismatch")
	}
}
