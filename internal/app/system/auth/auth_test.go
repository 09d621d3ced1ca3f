package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func TestRequireSignedIn_NoUser_RedirectsToLogin(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("protected content"))
	}))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/login") {
		t.Errorf("expected redirect to /login, got %q", location)
	}
}

func TestRequireSignedIn_NoUser_API_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/data", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_NoUser_HTMX_ReturnsHXRedirect(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}

	hxRedirect := rec.Header().Get("HX-Redirect")
	if !strings.HasPrefix(hxRedirect, "/login") {
		t.Errorf("expected HX-Redirect to /login, got %q", hxRedirect)
	}
}

func TestRequireRole_NoUser_RedirectsToLogin(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/login") {
		t.Errorf("expected redirect to /login, got %q", location)
	}
}

func TestRequireRole_WrongRole_RedirectsToForbidden(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Create a request with a plain USER in context
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Accept", "text/html")

	// Inject a user with the USER role into context
	req = withTestUser(req, "USER")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	location := rec.Header().Get("Location")
	if location != "/forbidden" {
		t.Errorf("expected redirect to /forbidden, got %q", location)
	}
}

func TestRequireRole_WrongRole_API_Returns403(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/admin", nil)
	req.Header.Set("Accept", "application/json")
	req = withTestUser(req, "USER")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestRequireRole_CorrectRole_Proceeds(t *testing.T) {
	sm := newTestSessionManager(t)

	called := false
	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/admin", nil)
	req = withTestUser(req, "admin")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("admin", "host")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		role     string
		expected int
	}{
		{"admin", http.StatusOK},
		{"host", http.StatusOK},
		{"user", http.StatusSeeOther}, // redirect to forbidden
		{"", http.StatusSeeOther},
	}

	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/reports", nil)
			req.Header.Set("Accept", "text/html")
			req = withTestUser(req, tc.role)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.expected {
				t.Errorf("role %q: expected status %d, got %d", tc.role, tc.expected, rec.Code)
			}
		})
	}
}

func TestRequireRole_CaseInsensitive(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Test with uppercase role
	req := httptest.NewRequest("GET", "/admin", nil)
	req = withTestUser(req, "Admin")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d for uppercase role, got %d", http.StatusOK, rec.Code)
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	user, ok := auth.CurrentUser(req)

	if ok {
		t.Error("expected ok to be false when no user in context")
	}
	if user != nil {
		t.Error("expected user to be nil when no user in context")
	}
}

func TestCurrentUser_WithUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = withTestUser(req, "admin")

	user, ok := auth.CurrentUser(req)

	if !ok {
		t.Error("expected ok to be true when user in context")
	}
	if user == nil {
		t.Fatal("expected user to not be nil")
	}
	if user.Role != "admin" {
		t.Errorf("expected role 'admin', got %q", user.Role)
	}
}

// withTestUser injects a SessionUser into the request context for testing.
// This simulates what LoadSessionUser middleware does.
func withTestUser(r *http.Request, role string) *http.Request {
	user := &auth.SessionUser{
		ID:    42,
		Name:  "Test User",
		Email: "test@example.com",
		Role:  role,
		Token: "token",
	}
	return auth.WithTestUser(r, user)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  42,
		"exp": exp.Unix(),
	}).SignedString([]byte("not-our-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// signInCookie signs u in and returns the resulting cookie header.
func signInCookie(t *testing.T, sm *auth.SessionManager, u *auth.SessionUser) string {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	if err := sm.SignIn(rec, req, u); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookie := rec.Header().Get("Set-Cookie")
	if cookie == "" {
		t.Fatal("expected Set-Cookie after SignIn")
	}
	return strings.SplitN(cookie, ";", 2)[0]
}

func loadUser(sm *auth.SessionManager, cookie string) (*auth.SessionUser, bool, *httptest.ResponseRecorder) {
	var (
		got   *auth.SessionUser
		found bool
	)
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = auth.CurrentUser(r)
	}))
	req := httptest.NewRequest("GET", "/profile", nil)
	req.Header.Set("Cookie", cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return got, found, rec
}

func TestLoadSessionUser_RoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	cookie := signInCookie(t, sm, &auth.SessionUser{
		ID:          7,
		Name:        "Ann",
		Email:       "ann@example.com",
		Role:        "ADMIN",
		Token:       signedToken(t, exp),
		TokenExpiry: exp,
		SessionID:   "sid-1",
	})

	u, ok, _ := loadUser(sm, cookie)
	if !ok {
		t.Fatal("expected user in context")
	}
	if u.ID != 7 || u.Name != "Ann" || u.Role != "ADMIN" || u.SessionID != "sid-1" {
		t.Errorf("unexpected user: %+v", u)
	}
	if !u.TokenExpiry.Equal(exp) {
		t.Errorf("expiry: got %v, want %v", u.TokenExpiry, exp)
	}
	if !u.IsAdmin() {
		t.Error("expected IsAdmin")
	}
}

func TestLoadSessionUser_ExpiredTokenSignsOut(t *testing.T) {
	sm := newTestSessionManager(t)
	exp := time.Now().Add(-time.Minute)
	cookie := signInCookie(t, sm, &auth.SessionUser{
		ID:          7,
		Role:        "USER",
		Token:       signedToken(t, exp),
		TokenExpiry: exp,
	})

	_, ok, rec := loadUser(sm, cookie)
	if ok {
		t.Fatal("expected expired token to sign the user out")
	}
	if rec.Header().Get("Set-Cookie") == "" {
		t.Error("expected the cleared session to be written back")
	}
}

func TestLoadSessionUser_RevokedSession(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetSessionChecker(func(_ context.Context, sid string) bool { return sid != "revoked" })

	live := signInCookie(t, sm, &auth.SessionUser{ID: 1, Role: "USER", Token: "t", SessionID: "live"})
	if _, ok, _ := loadUser(sm, live); !ok {
		t.Error("expected live session to load")
	}

	dead := signInCookie(t, sm, &auth.SessionUser{ID: 1, Role: "USER", Token: "t", SessionID: "revoked"})
	if _, ok, _ := loadUser(sm, dead); ok {
		t.Error("expected revoked session to be dropped")
	}
}

func TestLoadSessionUser_GarbageCookieIsAnonymous(t *testing.T) {
	sm := newTestSessionManager(t)
	if _, ok, _ := loadUser(sm, "test-session=garbage"); ok {
		t.Error("expected anonymous request")
	}
}

func TestSignOut_ReturnsSessionID(t *testing.T) {
	sm := newTestSessionManager(t)
	cookie := signInCookie(t, sm, &auth.SessionUser{ID: 3, Role: "USER", Token: "t", SessionID: "abc"})

	req := httptest.NewRequest("POST", "/logout", nil)
	req.Header.Set("Cookie", cookie)
	rec := httptest.NewRecorder()
	sid, err := sm.SignOut(rec, req)
	if err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if sid != "abc" {
		t.Errorf("expected session id abc, got %q", sid)
	}

	after := strings.SplitN(rec.Header().Get("Set-Cookie"), ";", 2)[0]
	if _, ok, _ := loadUser(sm, after); ok {
		t.Error("expected no user after sign out")
	}
}

func TestToggleTheme(t *testing.T) {
	sm := newTestSessionManager(t)

	req := httptest.NewRequest("POST", "/theme", nil)
	if got := sm.Theme(req); got != auth.ThemeLight {
		t.Fatalf("default theme: got %q", got)
	}

	rec := httptest.NewRecorder()
	next, err := sm.ToggleTheme(rec, req)
	if err != nil || next != auth.ThemeDark {
		t.Fatalf("ToggleTheme: got %q, %v", next, err)
	}

	req2 := httptest.NewRequest("GET", "/", nil)
	req2.Header.Set("Cookie", strings.SplitN(rec.Header().Get("Set-Cookie"), ";", 2)[0])
	if got := sm.Theme(req2); got != auth.ThemeDark {
		t.Errorf("persisted theme: got %q", got)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	got, err := auth.TokenExpiry(signedToken(t, exp))
	if err != nil {
		t.Fatalf("TokenExpiry: %v", err)
	}
	if !got.Equal(exp) {
		t.Errorf("got %v, want %v", got, exp)
	}

	if _, err := auth.TokenExpiry("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestTokenValid(t *testing.T) {
	tests := []struct {
		name string
		u    *auth.SessionUser
		want bool
	}{
		{"nil", nil, false},
		{"no token", &auth.SessionUser{}, false},
		{"no expiry", &auth.SessionUser{Token: "t"}, true},
		{"future", &auth.SessionUser{Token: "t", TokenExpiry: time.Now().Add(time.Hour)}, true},
		{"past", &auth.SessionUser{Token: "t", TokenExpiry: time.Now().Add(-time.Hour)}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.u.TokenValid(); got != tc.want {
				t.Errorf("TokenValid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewSessionManager_RejectsEmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "n", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestFlashes_PopOnce(t *testing.T) {
	sm := newTestSessionManager(t)

	req := httptest.NewRequest("POST", "/admin/users/1/delete", nil)
	rec := httptest.NewRecorder()
	if err := sm.AddFlash(rec, req, auth.FlashError, "Delete failed"); err != nil {
		t.Fatalf("AddFlash: %v", err)
	}
	cookie := strings.SplitN(rec.Header().Get("Set-Cookie"), ";", 2)[0]

	req2 := httptest.NewRequest("GET", "/admin/users", nil)
	req2.Header.Set("Cookie", cookie)
	rec2 := httptest.NewRecorder()
	got := sm.Flashes(rec2, req2)
	if len(got) != 1 || got[0].Kind != auth.FlashError || got[0].Message != "Delete failed" {
		t.Fatalf("unexpected flashes: %+v", got)
	}

	req3 := httptest.NewRequest("GET", "/admin/users", nil)
	req3.Header.Set("Cookie", strings.SplitN(rec2.Header().Get("Set-Cookie"), ";", 2)[0])
	if again := sm.Flashes(httptest.NewRecorder(), req3); len(again) != 0 {
		t.Errorf("expected flashes to be consumed, got %+v", again)
	}
}
