package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	userNameKey  = "user_name"
	userEmailKey = "user_email"
	userRoleKey  = "user_role"
	avatarKey    = "user_avatar"
	tokenKey     = "api_token"
	expiryKey    = "api_token_exp"
	sessionIDKey = "session_id"
	themeKey     = "theme"
	flashKey     = "flash"
)

// Themes the UI understands.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we cache in the session & inject into r.Context().
// Token is the marketplace API token issued at sign-in.
type SessionUser struct {
	ID          int
	Name        string
	Email       string
	Role        string
	Avatar      string
	Token       string
	TokenExpiry time.Time
	SessionID   string
}

// IsAdmin reports whether the user carries the ADMIN role.
func (u *SessionUser) IsAdmin() bool {
	return u != nil && strings.EqualFold(u.Role, "admin")
}

// TokenValid reports whether the API token is present and not about to expire.
// A zero TokenExpiry means the token carried no exp claim.
func (u *SessionUser) TokenValid() bool {
	if u == nil {
		return false
	}
	return (&oauth2.Token{AccessToken: u.Token, Expiry: u.TokenExpiry}).Valid()
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects u into the request context the same way
// LoadSessionUser does. Handlers tests use it to skip cookie plumbing.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The marketplace API is the only party that verifies it; we only need to
// know when to stop presenting it.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("token exp: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionChecker reports whether a server-side session record is still
// active. It lets a sign-out on one device (or an admin revoke) end the
// cookie session everywhere.
type SessionChecker func(ctx context.Context, sessionID string) bool

// SessionManager owns the cookie store and the auth middleware.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	logger  *zap.Logger
	checker SessionChecker
}

// NewSessionManager builds the cookie store. In production (secure=true)
// cookies are Secure + SameSite=None; over http://localhost use secure=false.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide ≥32 random chars")
	}
	if name == "" {
		return nil, errors.New("session name is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, logger: logger}, nil
}

// SetSessionChecker installs the server-side session check used by
// LoadSessionUser. nil disables it.
func (sm *SessionManager) SetSessionChecker(c SessionChecker) { sm.checker = c }

// GetSession returns the cookie session. A cookie that fails to decode
// yields a fresh session and the decode error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// SignIn writes u into the session cookie. The theme preference survives.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := sm.GetSession(r)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Name
	sess.Values[userEmailKey] = u.Email
	sess.Values[userRoleKey] = u.Role
	sess.Values[avatarKey] = u.Avatar
	sess.Values[tokenKey] = u.Token
	sess.Values[sessionIDKey] = u.SessionID
	if u.TokenExpiry.IsZero() {
		delete(sess.Values, expiryKey)
	} else {
		sess.Values[expiryKey] = u.TokenExpiry.Unix()
	}
	return sess.Save(r, w)
}

// UpdateProfile refreshes the display fields after a profile edit.
func (sm *SessionManager) UpdateProfile(w http.ResponseWriter, r *http.Request, name, email, avatar string) error {
	sess, _ := sm.GetSession(r)
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return nil
	}
	sess.Values[userNameKey] = name
	sess.Values[userEmailKey] = email
	sess.Values[avatarKey] = avatar
	return sess.Save(r, w)
}

// SignOut drops the identity from the cookie and returns the server-side
// session id it carried, if any.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, _ := sm.GetSession(r)
	sid := getString(sess, sessionIDKey)
	clearIdentity(sess)
	return sid, sess.Save(r, w)
}

// Theme returns the stored theme, ThemeLight when unset.
func (sm *SessionManager) Theme(r *http.Request) string {
	sess, err := sm.GetSession(r)
	if err != nil {
		return ThemeLight
	}
	if getString(sess, themeKey) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// ToggleTheme flips the stored theme and returns the new value.
func (sm *SessionManager) ToggleTheme(w http.ResponseWriter, r *http.Request) (string, error) {
	next := ThemeDark
	if sm.Theme(r) == ThemeDark {
		next = ThemeLight
	}
	sess, _ := sm.GetSession(r)
	sess.Values[themeKey] = next
	return next, sess.Save(r, w)
}

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

// AddFlash queues a message for the next page view.
func (sm *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string) error {
	sess, _ := sm.GetSession(r)
	sess.AddFlash(kind+"|"+msg, flashKey)
	return sess.Save(r, w)
}

// Flashes pops the queued messages. Nothing is written when the queue is empty.
func (sm *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess, err := sm.GetSession(r)
	if err != nil {
		return nil
	}
	raw := sess.Flashes(flashKey)
	if len(raw) == 0 {
		return nil
	}
	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		kind, msg, found := strings.Cut(s, "|")
		if !found {
			kind, msg = FlashSuccess, s
		}
		out = append(out, Flash{Kind: kind, Message: msg})
	}
	if err := sess.Save(r, w); err != nil {
		sm.logger.Warn("failed to clear flashes", zap.Error(err))
	}
	return out
}

// LoadSessionUser injects the user into context if they are logged in.
// An expired API token or a revoked server-side session signs the user out.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			// Cookie signed with an old key or tampered with; treat as anonymous.
			if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
				sm.logger.Debug("session decode failed", zap.Error(err))
			} else {
				sm.logger.Warn("session load failed", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
			next.ServeHTTP(w, r)
			return
		}

		u := &SessionUser{
			ID:        getInt(sess, userIDKey),
			Name:      getString(sess, userNameKey),
			Email:     getString(sess, userEmailKey),
			Role:      getString(sess, userRoleKey),
			Avatar:    getString(sess, avatarKey),
			Token:     getString(sess, tokenKey),
			SessionID: getString(sess, sessionIDKey),
		}
		if exp, ok := sess.Values[expiryKey].(int64); ok {
			u.TokenExpiry = time.Unix(exp, 0)
		}

		reason := ""
		switch {
		case !u.TokenValid():
			reason = "token expired"
		case sm.checker != nil && u.SessionID != "" && !sm.checker(r.Context(), u.SessionID):
			reason = "session revoked"
		}
		if reason != "" {
			sm.logger.Info("signing out stale session",
				zap.Int("user_id", u.ID),
				zap.String("reason", reason))
			clearIdentity(sess)
			if err := sess.Save(r, w); err != nil {
				sm.logger.Warn("failed to clear stale session", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		denyUnauthenticated(w, r)
	})
}

// RequireRole ensures the user in context has one of the allowed roles
// (case-insensitive). Signed-out callers get 401 semantics, wrong roles 403.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				denyUnauthenticated(w, r)
				return
			}

			if _, has := set[strings.ToLower(strings.TrimSpace(u.Role))]; !has {
				sm.logger.Info("role check failed",
					zap.Int("user_id", u.ID),
					zap.String("role", u.Role),
					zap.String("path", r.URL.Path))
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(currentURI(r))

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func clearIdentity(s *sessions.Session) {
	for _, k := range []string{isAuthKey, userIDKey, userNameKey, userEmailKey, userRoleKey, avatarKey, tokenKey, expiryKey, sessionIDKey} {
		delete(s.Values, k)
	}
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func getInt(s *sessions.Session, key string) int {
	if v, ok := s.Values[key].(int); ok {
		return v
	}
	return 0
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
