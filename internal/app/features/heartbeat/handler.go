// internal/app/features/heartbeat/handler.go
package heartbeat

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler answers the periodic ping sent by open pages. The ping travels
// through LoadSessionUser, which bumps the session row's last_active_at,
// so a page left open is not swept as idle.
type Handler struct {
	Log *zap.Logger
	now func() time.Time
}

// NewHandler creates a new heartbeat handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger, now: time.Now}
}

// Status is the heartbeat response body.
type Status struct {
	UserID int `json:"user_id"`
	// TokenExpiresIn is the remaining lifetime of the marketplace API
	// token in seconds. Zero when the expiry is unknown.
	TokenExpiresIn int64 `json:"token_expires_in"`
}

// ServeHeartbeat handles POST /api/heartbeat.
// Signed-out callers never reach it: RequireSignedIn answers 401, or an
// HX-Redirect to the login page for htmx pings.
func (h *Handler) ServeHeartbeat(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	st := Status{UserID: u.ID}
	if !u.TokenExpiry.IsZero() {
		st.TokenExpiresIn = max(int64(u.TokenExpiry.Sub(h.now()).Seconds()), 0)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		h.Log.Warn("failed to write heartbeat", zap.Error(err))
	}
}
