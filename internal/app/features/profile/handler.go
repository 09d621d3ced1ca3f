// internal/app/features/profile/handler.go
package profile

import (
	"context"

	uierrors "github.com/dalemusser/staydesk/internal/app/features/errors"
	"github.com/dalemusser/staydesk/internal/app/system/auditlog"
	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultAvatar is shown when the account has no avatar.
const DefaultAvatar = "/static/img/avatar.svg"

// API is the slice of the marketplace client the profile pages need.
type API interface {
	GetUser(ctx context.Context, id int) (models.User, error)
	UpdateUser(ctx context.Context, id int, upd models.UserUpdate, token string) (models.User, error)
	BookingsByUser(ctx context.Context, userID int) ([]models.Booking, error)
	GetRoom(ctx context.Context, id int) (models.Room, error)
}

// Handler owns the signed-in user's profile pages.
type Handler struct {
	API        API
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(api API, sm *auth.SessionManager, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		API:        api,
		SessionMgr: sm,
		AuditLog:   audit,
		ErrLog:     errLog,
		Log:        logger,
	}
}
