// internal/app/features/locations/handler.go
package locations

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/staydesk/internal/app/features/errors"
	"github.com/dalemusser/staydesk/internal/app/features/shared"
	"github.com/dalemusser/staydesk/internal/app/store/audit"
	"github.com/dalemusser/staydesk/internal/app/system/auditlog"
	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/app/system/paging"
	"github.com/dalemusser/staydesk/internal/app/system/timeouts"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const listPath = "/admin/locations"

// API is the slice of the marketplace client the locations admin needs.
type API interface {
	SearchLocations(ctx context.Context, pageIndex, pageSize int, keyword string) (models.Page[models.Location], error)
	DeleteLocation(ctx context.Context, id int, token string) error
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

// ServeList shows one page of locations. Changing the page size starts
// again from page 1.
// GET /admin/locations
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := shared.ListVM[models.Location]{
		BaseVM:   viewdata.NewBaseVM(r, "Locations", "/"),
		BasePath: listPath,
		Flashes:  h.SessionMgr.Flashes(w, r),
	}

	rows, pager, err := shared.Search(ctx, p, h.API.SearchLocations)
	if err != nil {
		h.Log.Warn("search locations failed", zap.Error(err))
		data.Error = "Locations could not be loaded: " + shared.FailureText(err) + "."
	}
	data.Rows, data.Pager = rows, pager

	if r.Header.Get("HX-Request") != "" && r.Header.Get("HX-Target") == "locations-table-wrap" {
		templates.RenderSnippet(w, "locations_table", data)
		return
	}
	templates.Render(w, r, "admin_locations", data)
}

// HandleDelete removes a location.
// POST /admin/locations/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IDParam(r)
	if !ok {
		h.Deleter.Reject(w, r, "Invalid location id.", listPath)
		return
	}
	h.Deleter.Handle(w, r, id, audit.EventLocationDeleted, "location", listPath, h.API.DeleteLocation)
}
