// internal/app/features/rooms/handler.go
package rooms

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/staydesk/internal/app/features/errors"
	"github.com/dalemusser/staydesk/internal/app/features/shared"
	"github.com/dalemusser/staydesk/internal/app/store/audit"
	"github.com/dalemusser/staydesk/internal/app/system/auditlog"
	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"go.uber.org/zap"
)

const listPath = "/admin/rooms"

// API is the slice of the marketplace client the rooms admin needs.
type API interface {
	SearchRooms(ctx context.Context, pageIndex, pageSize int, keyword string) (models.Page[models.Room], error)
	GetRoom(ctx context.Context, id int) (models.Room, error)
	GetLocation(ctx context.Context, id int) (models.Location, error)
	DeleteRoom(ctx context.Context, id int, token string) error
}

type Handler struct {
	API        API
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Deleter    *shared.Deleter
	Log        *zap.Logger
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

// HandleDelete removes a room listing.
// POST /admin/rooms/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IDParam(r)
	if !ok {
		h.Deleter.Reject(w, r, "Invalid room id.", listPath)
		return
	}
	h.Deleter.Handle(w, r, id, audit.EventRoomDeleted, "room", listPath, h.API.DeleteRoom)
}
