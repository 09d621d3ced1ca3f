// internal/app/features/users/handler.go
package users

import (
	"context"

	uierrors "github.com/dalemusser/staydesk/internal/app/features/errors"
	"github.com/dalemusser/staydesk/internal/app/features/shared"
	"github.com/dalemusser/staydesk/internal/app/system/auditlog"
	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"go.uber.org/zap"
)

// listPath is where this feature is mounted.
const listPath = "/admin/users"

// API is the slice of the marketplace client the users admin needs.
type API interface {
	SearchUsers(ctx context.Context, pageIndex, pageSize int, keyword string) (models.Page[models.User], error)
	GetUser(ctx context.Context, id int) (models.User, error)
	DeleteUser(ctx context.Context, id int, token string) error
}

type Handler struct {
	API        API
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Deleter    *shared.Deleter
	Log        *zap.Logger

	// Optional local records shown on the user view.
	Sessions SessionHistory
	Audit    AuditHistory
}

func NewHandler(api API, sm *auth.SessionManager, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		API:        api,
		SessionMgr: sm,
		ErrLog:     errLog,
		Deleter:    &shared.Deleter{SessionMgr: sm, AuditLog: audit, Log: logger},
		Log:        logger,
	}
}
