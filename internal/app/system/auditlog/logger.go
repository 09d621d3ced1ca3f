// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/staydesk/internal/app/store/audit"
	"github.com/dalemusser/staydesk/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"  // MongoDB only
	DestLog = "log" // zap only
	DestOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls sign-in, sign-out, registration and profile events.
	Auth string
	// Admin controls back-office delete events.
	Admin string
}

// Sink persists events. *audit.Store satisfies it.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
type Logger struct {
	sink   Sink
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. sink may be nil when every category is
// "log" or "off".
func New(sink Sink, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{sink: sink, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != 0 {
		fields = append(fields, zap.Int("user_id", event.UserID))
	}
	if event.ActorID != 0 {
		fields = append(fields, zap.Int("actor_id", event.ActorID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an event according to its category's destination.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := DestAll
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == "" {
		setting = DestAll
	}
	if setting == DestOff {
		return
	}

	if setting == DestAll || setting == DestLog {
		l.logToZap(event)
	}
	if (setting == DestAll || setting == DestDB) && l.sink != nil {
		if err := l.sink.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func fromRequest(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID int, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.UserID = userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailed logs a rejected sign-in. reason is the API's message.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginFailed, false)
	e.FailureReason = reason
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

func (l *Logger) Logout(ctx context.Context, r *http.Request, userID int) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLogout, true)
	e.UserID = userID
	l.Log(ctx, e)
}

// SessionExpired logs a session dropped because its API token expired.
func (l *Logger) SessionExpired(ctx context.Context, r *http.Request, userID int) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventSessionExpired, true)
	e.UserID = userID
	l.Log(ctx, e)
}

func (l *Logger) Registered(ctx context.Context, r *http.Request, userID int, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventRegistered, true)
	e.UserID = userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

func (l *Logger) RegisterFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventRegisterFailed, false)
	e.FailureReason = reason
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

func (l *Logger) ProfileUpdated(ctx context.Context, r *http.Request, userID int, success bool, reason string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventProfileUpdated, success)
	e.UserID = userID
	e.FailureReason = reason
	l.Log(ctx, e)
}

// --- Admin Events ---

// Deleted logs an admin delete of a marketplace record. eventType is one
// of the audit.Event*Deleted constants; err is the API failure, if any.
func (l *Logger) Deleted(ctx context.Context, r *http.Request, actorID int, eventType string, targetID int, err error) {
	e := fromRequest(r, audit.CategoryAdmin, eventType, err == nil)
	e.ActorID = actorID
	e.Details = map[string]string{"target_id": strconv.Itoa(targetID)}
	if eventType == audit.EventUserDeleted {
		e.UserID = targetID
	}
	if err != nil {
		e.FailureReason = err.Error()
	}
	l.Log(ctx, e)
}
