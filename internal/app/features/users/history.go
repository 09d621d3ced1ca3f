// internal/app/features/users/history.go
package users

import (
	"context"

	"github.com/dalemusser/staydesk/internal/app/store/audit"
	"github.com/dalemusser/staydesk/internal/app/store/sessions"
	"go.uber.org/zap"
)

// historyLimit caps each history table on the user view.
const historyLimit = 10

// SessionHistory lists a user's sign-ins. *sessions.Store satisfies it.
type SessionHistory interface {
	GetByUser(ctx context.Context, userID int, limit int64) ([]sessions.Session, error)
}

// AuditHistory lists audit events about a user. *audit.Store satisfies it.
type AuditHistory interface {
	GetByUser(ctx context.Context, userID int, limit int64) ([]audit.Event, error)
}

// History is what staydesk itself recorded about a marketplace user.
type History struct {
	Sessions []sessions.Session
	Events   []audit.Event
	// Unavailable is set when a lookup failed; the view still renders.
	Unavailable bool
}

// LoadHistory fetches recent sessions and audit events for userID. Either
// source may be nil.
func (h *Handler) LoadHistory(ctx context.Context, userID int) History {
	var hist History
	if h.Sessions != nil {
		rows, err := h.Sessions.GetByUser(ctx, userID, historyLimit)
		if err != nil {
			h.Log.Warn("user session history failed", zap.Int("user_id", userID), zap.Error(err))
			hist.Unavailable = true
		}
		hist.Sessions = rows
	}
	if h.Audit != nil {
		events, err := h.Audit.GetByUser(ctx, userID, historyLimit)
		if err != nil {
			h.Log.Warn("user audit history failed", zap.Int("user_id", userID), zap.Error(err))
			hist.Unavailable = true
		}
		hist.Events = events
	}
	return hist
}
