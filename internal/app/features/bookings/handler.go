// internal/app/features/bookings/handler.go
package bookings

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

const listPath = "/admin/bookings"

// API is the slice of the marketplace client the bookings admin needs.
type API interface {
	ListBookings(ctx context.Context) ([]models.Booking, error)
	DeleteBooking(ctx context.Context, id int, token string) error
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

// HandleDelete cancels a booking.
// POST /admin/bookings/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IDParam(r)
	if !ok {
		h.Deleter.Reject(w, r, "Invalid booking id.", listPath)
		return
	}
	h.Deleter.Handle(w, r, id, audit.EventBookingDeleted, "booking", listPath, h.API.DeleteBooking)
}
