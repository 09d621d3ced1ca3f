package login_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/staydesk/internal/app/apiclient"
	uierrors "github.com/dalemusser/staydesk/internal/app/features/errors"
	"github.com/dalemusser/staydesk/internal/app/features/login"
	"github.com/dalemusser/staydesk/internal/app/store/audit"
	"github.com/dalemusser/staydesk/internal/app/system/auditlog"
	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/app/system/ratelimit"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/staydesk/internal/testutil"
	"go.uber.org/zap"
)

type memSink struct{ events []audit.Event }

func (m *memSink) Log(_ context.Context, e audit.Event) error {
	m.events = append(m.events, e)
	return nil
}

func (m *memSink) types() []string {
	var out []string
	for _, e := range m.events {
		out = append(out, e.EventType)
	}
	return out
}

type fixture struct {
	api  *testutil.FakeAPI
	sm   *auth.SessionManager
	sink *memSink
	h    *login.Handler
}

func newFixture(t *testing.T, limiter *ratelimit.LoginLimiter) *fixture {
	t.Helper()
	logger := zap.NewNop()

	api := testutil.NewFakeAPI(t)
	api.Users = []models.User{
		{ID: 1, Name: "Admin", Email: "admin@test.com", Role: models.RoleAdmin},
		{ID: 2, Name: "Guest", Email: "guest@test.com", Role: models.RoleUser},
	}
	api.Passwords["admin@test.com"] = "secret1"
	api.Passwords["guest@test.com"] = "secret2"

	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	client := apiclient.New(api.URL(), "project-token", logger, apiclient.WithRetry(apiclient.RetryConfig{}))
	sink := &memSink{}
	audLog := auditlog.New(sink, logger, auditlog.Config{})

	h := login.NewHandler(client, sm, uierrors.NewErrorLogger(logger), audLog, nil, limiter, logger)
	return &fixture{api: api, sm: sm, sink: sink, h: h}
}

func loginForm(email, password, ret string) url.Values {
	return url.Values{"email": {email}, "password": {password}, "return": {ret}}
}

func TestHandleLoginPost_Admin_RedirectsToAdmin(t *testing.T) {
	f := newFixture(t, nil)

	rec := testutil.Serve(f.h.HandleLoginPost, testutil.NewFormRequest("POST", "/login", loginForm("admin@test.com", "secret1", "")))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/users" {
		t.Errorf("Location: got %q", loc)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "test-session=") {
		t.Error("expected session cookie")
	}
	if got := f.sink.types(); len(got) != 1 || got[0] != audit.EventLoginSuccess {
		t.Errorf("audit events: %v", got)
	}
}

func TestHandleLoginPost_HonoursSafeReturn(t *testing.T) {
	f := newFixture(t, nil)

	rec := testutil.Serve(f.h.HandleLoginPost, testutil.NewFormRequest("POST", "/login", loginForm("guest@test.com", "secret2", "/profile")))
	if loc := rec.Header().Get("Location"); loc != "/profile" {
		t.Errorf("Location: got %q, want /profile", loc)
	}

	rec = testutil.Serve(f.h.HandleLoginPost, testutil.NewFormRequest("POST", "/login", loginForm("guest@test.com", "secret2", "https://evil.example/")))
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("external return should fall back to /, got %q", loc)
	}
}

func TestHandleLoginPost_WrongPassword(t *testing.T) {
	f := newFixture(t, nil)

	rec := testutil.Serve(f.h.HandleLoginPost, testutil.NewFormRequest("POST", "/login", loginForm("guest@test.com", "nope", "")))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if got := f.sink.types(); len(got) != 1 || got[0] != audit.EventLoginFailed {
		t.Errorf("audit events: %v", got)
	}
}

func TestHandleLoginPost_Validation(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"missing email", "", "secret"},
		{"bad email", "not-an-email", "secret"},
		{"missing password", "guest@test.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Serve(f.h.HandleLoginPost, testutil.NewFormRequest("POST", "/login", loginForm(tt.email, tt.password, "")))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
	if n := f.api.CallCount("POST /auth/signin"); n != 0 {
		t.Errorf("invalid forms must not reach the API, got %d calls", n)
	}
}

func TestHandleLoginPost_UpstreamDown(t *testing.T) {
	f := newFixture(t, nil)
	f.api.Fail("POST", "/auth/signin", http.StatusServiceUnavailable)

	rec := testutil.Serve(f.h.HandleLoginPost, testutil.NewFormRequest("POST", "/login", loginForm("guest@test.com", "secret2", "")))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestHandleLoginPost_RateLimited(t *testing.T) {
	limiter := ratelimit.NewLoginLimiter(2)
	t.Cleanup(limiter.Close)
	f := newFixture(t, limiter)

	var last int
	for i := 0; i < 3; i++ {
		rec := testutil.Serve(f.h.HandleLoginPost, testutil.NewFormRequest("POST", "/login", loginForm("guest@test.com", "wrong", "")))
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("expected 429 after the limit, got %d", last)
	}
	types := f.sink.types()
	if types[len(types)-1] != audit.EventLoginFailedRateLimit {
		t.Errorf("expected rate-limit audit event, got %v", types)
	}
}

func TestServeLogin_SignedInRedirects(t *testing.T) {
	f := newFixture(t, nil)
	req := testutil.WithUser(testutil.NewRequest("GET", "/login"), testutil.RegularUser())

	rec := testutil.Serve(f.h.ServeLogin, req)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected 303, got %d", rec.Code)
	}
}

func registerForm(mut func(url.Values)) url.Values {
	v := url.Values{
		"name":      {"New Guest"},
		"email":     {"new@test.com"},
		"password":  {"abc123"},
		"dial_code": {"+84"},
		"phone":     {"0912345678"},
		"birthday":  {"1990-05-01"},
		"gender":    {"male"},
	}
	if mut != nil {
		mut(v)
	}
	return v
}

func TestHandleRegisterPost_Success(t *testing.T) {
	f := newFixture(t, nil)

	rec := testutil.Serve(f.h.HandleRegisterPost, testutil.NewFormRequest("POST", "/register", registerForm(nil)))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location: got %q", loc)
	}
	var created *models.User
	for i := range f.api.Users {
		if f.api.Users[i].Email == "new@test.com" {
			created = &f.api.Users[i]
		}
	}
	if created == nil {
		t.Fatal("user was not created upstream")
	}
	if !created.Gender || created.Role != models.RoleUser || created.Phone != "0912345678" {
		t.Errorf("unexpected upstream user: %+v", created)
	}
	if got := f.sink.types(); len(got) != 1 || got[0] != audit.EventRegistered {
		t.Errorf("audit events: %v", got)
	}
}

func TestHandleRegisterPost_Validation(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name string
		mut  func(url.Values)
	}{
		{"missing name", func(v url.Values) { v.Set("name", "") }},
		{"bad email", func(v url.Values) { v.Set("email", "nope") }},
		{"digits-only password", func(v url.Values) { v.Set("password", "123456") }},
		{"unknown dial code", func(v url.Values) { v.Set("dial_code", "+1") }},
		{"short phone", func(v url.Values) { v.Set("phone", "09123") }},
		{"phone without leading zero", func(v url.Values) { v.Set("phone", "9123456789") }},
		{"future birthday", func(v url.Values) { v.Set("birthday", time.Now().AddDate(1, 0, 0).Format("2006-01-02")) }},
		{"bad birthday", func(v url.Values) { v.Set("birthday", "01/05/1990") }},
		{"bad gender", func(v url.Values) { v.Set("gender", "robot") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Serve(f.h.HandleRegisterPost, testutil.NewFormRequest("POST", "/register", registerForm(tt.mut)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
	if n := f.api.CallCount("POST /auth/signup"); n != 0 {
		t.Errorf("invalid forms must not reach the API, got %d calls", n)
	}
}

func TestHandleRegisterPost_DuplicateEmail(t *testing.T) {
	f := newFixture(t, nil)

	rec := testutil.Serve(f.h.HandleRegisterPost, testutil.NewFormRequest("POST", "/register",
		registerForm(func(v url.Values) { v.Set("email", "guest@test.com") })))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if got := f.sink.types(); len(got) != 1 || got[0] != audit.EventRegisterFailed {
		t.Errorf("audit events: %v", got)
	}
}

func TestGenderFlag(t *testing.T) {
	if !login.GenderFlag("male") || login.GenderFlag("female") || login.GenderFlag("other") {
		t.Error("only male maps to true")
	}
	if login.GenderValue(true) != "male" || login.GenderValue(false) != "female" {
		t.Error("GenderValue mismatch")
	}
}

func TestRegisterRoutes_MiddlewareGuardsPostOnly(t *testing.T) {
	f := newFixture(t, nil)

	var hits int
	block := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	router := login.RegisterRoutes(f.h, block)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewFormRequest("POST", "/", url.Values{"email": {"new@test.com"}}))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("POST status: got %d, want %d", rec.Code, http.StatusTooManyRequests)
	}

	// The form page renders through the template engine, which is not
	// booted here; only whether the middleware ran matters.
	func() {
		defer func() { _ = recover() }()
		router.ServeHTTP(httptest.NewRecorder(), testutil.NewRequest("GET", "/"))
	}()
	if hits != 1 {
		t.Errorf("middleware ran %d times, want 1 (POST only)", hits)
	}
	if len(f.api.Users) != 2 {
		t.Errorf("a blocked sign-up must not reach the API, users: %d", len(f.api.Users))
	}
}
